// Package apidispatch routes an inbound API Frame to the driver operation
// its Data variant names and produces the matching response Frame.
package apidispatch

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/zalogw/gateway/internal/chain"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/tracing"
	"github.com/zalogw/gateway/pkg/wire"
)

// Handle executes req against d and returns the response Frame. The
// response always carries ok=true and frame_type = req.FrameType + 100,
// even when the handler errors — a failed handler just yields an empty
// Data body, per the dispatcher's documented contract. The one exception
// is a request whose Data cannot be decoded at all, which also yields an
// empty response rather than panicking.
func Handle(ctx context.Context, d driver.Driver, req *wire.Frame) *wire.Frame {
	ctx, span := tracing.StartDispatchSpan(ctx, req.BotID, int32(req.FrameType))

	resp := &wire.Frame{
		BotID:     req.BotID,
		FrameType: wire.ResponseType(req.FrameType),
		Echo:      req.Echo,
		OK:        true,
	}

	data, err := dispatch(ctx, d, req)
	tracing.EndWithError(span, err)
	if err != nil {
		slog.Warn("apidispatch: handler error", "frame_type", req.FrameType, "error", err)
		return resp
	}
	resp.Data = data
	return resp
}

func dispatch(ctx context.Context, d driver.Driver, req *wire.Frame) ([]byte, error) {
	switch req.FrameType {
	case wire.FrameSendPrivateMsgReq:
		in, err := wire.DecodeSendPrivateMsgReq(req.Data)
		if err != nil {
			return nil, err
		}
		target := chain.Target{UserID: fmtID(in.UserID)}
		elements := chain.Decode(ctx, d, target, in.Message)
		receipt, err := d.SendFriendMessage(ctx, fmtID(in.UserID), elements)
		if err != nil {
			return nil, err
		}
		return (&wire.SendMsgResp{MessageID: encodeReceipt(*receipt)}).Encode(), nil

	case wire.FrameSendGroupMsgReq:
		in, err := wire.DecodeSendGroupMsgReq(req.Data)
		if err != nil {
			return nil, err
		}
		target := chain.Target{GroupID: fmtID(in.GroupID)}
		elements := chain.Decode(ctx, d, target, in.Message)
		receipt, err := d.SendGroupMessage(ctx, fmtID(in.GroupID), elements)
		if err != nil {
			return nil, err
		}
		return (&wire.SendMsgResp{MessageID: encodeReceipt(*receipt)}).Encode(), nil

	case wire.FrameDeleteMsgReq:
		in, err := wire.DecodeDeleteMsgReq(req.Data)
		if err != nil {
			return nil, err
		}
		rec, err := wire.DecodeMessageReceipt(in.MessageID)
		if err != nil {
			return nil, err
		}
		dr := toDriverReceipt(rec)
		if rec.GroupID == 0 {
			err = d.RecallFriendMessage(ctx, dr)
		} else {
			err = d.RecallGroupMessage(ctx, dr)
		}
		if err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSendLikeReq:
		in, err := wire.DecodeSendLikeReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.SendLike(ctx, fmtID(in.UserID), in.Times); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupKickReq:
		in, err := wire.DecodeSetGroupKickReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.GroupKick(ctx, fmtID(in.GroupID), fmtID(in.UserID), in.RejectAddRequest); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupBanReq:
		in, err := wire.DecodeSetGroupBanReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.GroupMute(ctx, fmtID(in.GroupID), fmtID(in.UserID), in.Duration); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupWholeBanReq:
		in, err := wire.DecodeSetGroupWholeBanReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.GroupMuteAll(ctx, fmtID(in.GroupID), in.Enable); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupAdminReq:
		in, err := wire.DecodeSetGroupAdminReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.GroupSetAdmin(ctx, fmtID(in.GroupID), fmtID(in.UserID), in.Enable); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupCardReq:
		in, err := wire.DecodeSetGroupCardReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.EditGroupMemberCard(ctx, fmtID(in.GroupID), fmtID(in.UserID), in.Card); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupNameReq:
		in, err := wire.DecodeSetGroupNameReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.UpdateGroupName(ctx, fmtID(in.GroupID), in.GroupName); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupLeaveReq:
		in, err := wire.DecodeSetGroupLeaveReq(req.Data)
		if err != nil {
			return nil, err
		}
		if err := d.GroupQuit(ctx, fmtID(in.GroupID)); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameSetGroupSpecialTitleReq:
		in, err := wire.DecodeSetGroupSpecialTitleReq(req.Data)
		if err != nil {
			return nil, err
		}
		// The user_id field, not group_id, is the member being retitled —
		// an API binding that swapped these here would retitle nothing,
		// since no member's uin equals the group's own id.
		if err := d.GroupEditSpecialTitle(ctx, fmtID(in.GroupID), fmtID(in.UserID), in.SpecialTitle); err != nil {
			return nil, err
		}
		return (&wire.Ack{}).Encode(), nil

	case wire.FrameGetLoginInfoReq:
		info, err := d.GetAccountInfo(ctx)
		if err != nil {
			return nil, err
		}
		return (&wire.GetLoginInfoResp{UserID: parseInt64(info.UIN), Nickname: info.Nickname}).Encode(), nil

	case wire.FrameGetStrangerInfoReq:
		in, err := wire.DecodeGetStrangerInfoReq(req.Data)
		if err != nil {
			return nil, err
		}
		f, err := d.GetStrangerInfo(ctx, fmtID(in.UserID))
		if err != nil {
			return nil, err
		}
		return (&wire.GetStrangerInfoResp{UserID: parseInt64(f.UIN), Nickname: f.Nickname}).Encode(), nil

	case wire.FrameGetFriendListReq:
		friends, err := d.GetFriendList(ctx)
		if err != nil {
			return nil, err
		}
		out := &wire.GetFriendListResp{}
		for _, f := range friends {
			out.Friends = append(out.Friends, wire.FriendInfo{UserID: parseInt64(f.UIN), Nickname: f.Nickname, Remark: f.Remark})
		}
		return out.Encode(), nil

	case wire.FrameGetGroupInfoReq:
		in, err := wire.DecodeGetGroupInfoReq(req.Data)
		if err != nil {
			return nil, err
		}
		g, err := d.GetGroupInfo(ctx, fmtID(in.GroupID))
		if err != nil {
			return nil, err
		}
		return (&wire.GetGroupInfoResp{GroupID: parseInt64(g.GroupID), GroupName: g.GroupName, MemberCount: int32(g.MemberCount)}).Encode(), nil

	case wire.FrameGetGroupListReq:
		groups, err := d.GetGroupList(ctx)
		if err != nil {
			return nil, err
		}
		out := &wire.GetGroupListResp{}
		for _, g := range groups {
			out.Groups = append(out.Groups, wire.GroupInfo{GroupID: parseInt64(g.GroupID), GroupName: g.GroupName})
		}
		return out.Encode(), nil

	case wire.FrameGetGroupMemberInfoReq:
		in, err := wire.DecodeGetGroupMemberInfoReq(req.Data)
		if err != nil {
			return nil, err
		}
		m, err := d.GetGroupMemberInfo(ctx, fmtID(in.GroupID), fmtID(in.UserID))
		if err != nil {
			return nil, err
		}
		return (&wire.GetGroupMemberInfoResp{Member: toWireMember(*m)}).Encode(), nil

	case wire.FrameGetGroupMemberListReq:
		in, err := wire.DecodeGetGroupMemberListReq(req.Data)
		if err != nil {
			return nil, err
		}
		members, err := d.GetGroupMemberList(ctx, fmtID(in.GroupID))
		if err != nil {
			return nil, err
		}
		out := &wire.GetGroupMemberListResp{}
		for _, m := range members {
			out.Members = append(out.Members, toWireMember(m))
		}
		return out.Encode(), nil

	default:
		// Unknown request variants (anything beyond the minimum viable
		// handler set) produce an ok=true, empty-data response.
		return nil, nil
	}
}

func toWireMember(m driver.GroupMemberInfo) wire.GroupMemberInfo {
	return wire.GroupMemberInfo{
		GroupID:  parseInt64(m.GroupID),
		UserID:   parseInt64(m.UIN),
		Nickname: m.Nickname,
		Card:     m.Card,
		Role:     m.Role,
	}
}

func toDriverReceipt(r *wire.MessageReceipt) driver.MessageReceipt {
	return driver.MessageReceipt{
		SenderID: fmtID(r.SenderID),
		Time:     r.Time,
		Seqs:     r.Seqs,
		Rands:    r.Rands,
		GroupID:  fmtID(r.GroupID),
	}
}

func encodeReceipt(r driver.MessageReceipt) []byte {
	rec := &wire.MessageReceipt{
		SenderID: parseInt64(r.SenderID),
		Time:     r.Time,
		Seqs:     r.Seqs,
		Rands:    r.Rands,
		GroupID:  parseInt64(r.GroupID),
	}
	return rec.Encode()
}

func fmtID(id int64) string { return strconv.FormatInt(id, 10) }

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
