package wire

import "google.golang.org/protobuf/encoding/protowire"

// This file defines the request-side Data variants for the minimum viable
// handler set. Each type's Encode/Decode pair is a small, self-contained
// sub-message built from the same append/consume primitives as Frame — the
// field numbers below are local to each struct, not global across the
// package.

// SendPrivateMsgReq requests delivery of a message chain to a single user.
type SendPrivateMsgReq struct {
	UserID  int64
	Message Chain
}

func (r *SendPrivateMsgReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.UserID)
	b = appendMessageField(b, 2, EncodeChain(r.Message))
	return b
}

func DecodeSendPrivateMsgReq(b []byte) (*SendPrivateMsgReq, error) {
	r := &SendPrivateMsgReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 2:
			raw, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			chain, err := DecodeChain(raw)
			r.Message = chain
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SendGroupMsgReq requests delivery of a message chain to a group.
type SendGroupMsgReq struct {
	GroupID int64
	Message Chain
}

func (r *SendGroupMsgReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendMessageField(b, 2, EncodeChain(r.Message))
	return b
}

func DecodeSendGroupMsgReq(b []byte) (*SendGroupMsgReq, error) {
	r := &SendGroupMsgReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			raw, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			chain, err := DecodeChain(raw)
			r.Message = chain
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// DeleteMsgReq requests recall/deletion of a previously sent message,
// identified by the opaque receipt it was sent with.
type DeleteMsgReq struct {
	MessageID []byte
}

func (r *DeleteMsgReq) Encode() []byte {
	return appendBytesField(nil, 1, r.MessageID)
}

func DecodeDeleteMsgReq(b []byte) (*DeleteMsgReq, error) {
	r := &DeleteMsgReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeBytes(rest)
		r.MessageID = v
		return n, err
	})
	return r, err
}

// SendLikeReq requests sending a "poke"/like to a user some number of times.
type SendLikeReq struct {
	UserID int64
	Times  int32
}

func (r *SendLikeReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.UserID)
	b = appendInt64Field(b, 2, int64(r.Times))
	return b
}

func DecodeSendLikeReq(b []byte) (*SendLikeReq, error) {
	r := &SendLikeReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.Times = int32(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupKickReq requests removal of a member from a group.
type SetGroupKickReq struct {
	GroupID          int64
	UserID           int64
	RejectAddRequest bool
}

func (r *SetGroupKickReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	b = appendBoolField(b, 3, r.RejectAddRequest)
	return b
}

func DecodeSetGroupKickReq(b []byte) (*SetGroupKickReq, error) {
	r := &SetGroupKickReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			r.RejectAddRequest = v != 0
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupBanReq requests muting a single member for duration seconds (0
// lifts the mute).
type SetGroupBanReq struct {
	GroupID  int64
	UserID   int64
	Duration int64
}

func (r *SetGroupBanReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	b = appendInt64Field(b, 3, r.Duration)
	return b
}

func DecodeSetGroupBanReq(b []byte) (*SetGroupBanReq, error) {
	r := &SetGroupBanReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			r.Duration = int64(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupWholeBanReq requests enabling/disabling whole-group mute.
type SetGroupWholeBanReq struct {
	GroupID int64
	Enable  bool
}

func (r *SetGroupWholeBanReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendBoolField(b, 2, r.Enable)
	return b
}

func DecodeSetGroupWholeBanReq(b []byte) (*SetGroupWholeBanReq, error) {
	r := &SetGroupWholeBanReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.Enable = v != 0
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupAdminReq requests promoting/demoting a member to/from admin.
type SetGroupAdminReq struct {
	GroupID int64
	UserID  int64
	Enable  bool
}

func (r *SetGroupAdminReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	b = appendBoolField(b, 3, r.Enable)
	return b
}

func DecodeSetGroupAdminReq(b []byte) (*SetGroupAdminReq, error) {
	r := &SetGroupAdminReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			r.Enable = v != 0
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupCardReq requests changing a member's group nickname (card).
type SetGroupCardReq struct {
	GroupID int64
	UserID  int64
	Card    string
}

func (r *SetGroupCardReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	b = appendStringField(b, 3, r.Card)
	return b
}

func DecodeSetGroupCardReq(b []byte) (*SetGroupCardReq, error) {
	r := &SetGroupCardReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			r.Card = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupNameReq requests renaming a group.
type SetGroupNameReq struct {
	GroupID   int64
	GroupName string
}

func (r *SetGroupNameReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendStringField(b, 2, r.GroupName)
	return b
}

func DecodeSetGroupNameReq(b []byte) (*SetGroupNameReq, error) {
	r := &SetGroupNameReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			r.GroupName = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// SetGroupLeaveReq requests the bot quit a group.
type SetGroupLeaveReq struct {
	GroupID int64
}

func (r *SetGroupLeaveReq) Encode() []byte {
	return appendInt64Field(nil, 1, r.GroupID)
}

func DecodeSetGroupLeaveReq(b []byte) (*SetGroupLeaveReq, error) {
	r := &SetGroupLeaveReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeVarint(rest)
		r.GroupID = int64(v)
		return n, err
	})
	return r, err
}

// SetGroupSpecialTitleReq requests assigning a member's special title. The
// handler (not this type) is responsible for resolving UserID correctly —
// see the dispatcher's fix for the swapped user_id/group_id argument bug.
type SetGroupSpecialTitleReq struct {
	GroupID      int64
	UserID       int64
	SpecialTitle string
}

func (r *SetGroupSpecialTitleReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	b = appendStringField(b, 3, r.SpecialTitle)
	return b
}

func DecodeSetGroupSpecialTitleReq(b []byte) (*SetGroupSpecialTitleReq, error) {
	r := &SetGroupSpecialTitleReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			r.SpecialTitle = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// GetStrangerInfoReq requests profile info for an arbitrary user id.
type GetStrangerInfoReq struct {
	UserID int64
}

func (r *GetStrangerInfoReq) Encode() []byte {
	return appendInt64Field(nil, 1, r.UserID)
}

func DecodeGetStrangerInfoReq(b []byte) (*GetStrangerInfoReq, error) {
	r := &GetStrangerInfoReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeVarint(rest)
		r.UserID = int64(v)
		return n, err
	})
	return r, err
}

// GetGroupInfoReq requests metadata about a single group.
type GetGroupInfoReq struct {
	GroupID int64
}

func (r *GetGroupInfoReq) Encode() []byte {
	return appendInt64Field(nil, 1, r.GroupID)
}

func DecodeGetGroupInfoReq(b []byte) (*GetGroupInfoReq, error) {
	r := &GetGroupInfoReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeVarint(rest)
		r.GroupID = int64(v)
		return n, err
	})
	return r, err
}

// GetGroupMemberInfoReq requests metadata about a single group member.
type GetGroupMemberInfoReq struct {
	GroupID int64
	UserID  int64
}

func (r *GetGroupMemberInfoReq) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendInt64Field(b, 2, r.UserID)
	return b
}

func DecodeGetGroupMemberInfoReq(b []byte) (*GetGroupMemberInfoReq, error) {
	r := &GetGroupMemberInfoReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// GetGroupMemberListReq requests the full member roster of a group.
type GetGroupMemberListReq struct {
	GroupID int64
}

func (r *GetGroupMemberListReq) Encode() []byte {
	return appendInt64Field(nil, 1, r.GroupID)
}

func DecodeGetGroupMemberListReq(b []byte) (*GetGroupMemberListReq, error) {
	r := &GetGroupMemberListReq{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeVarint(rest)
		r.GroupID = int64(v)
		return n, err
	})
	return r, err
}

// GetLoginInfoReq and GetFriendListReq and GetGroupListReq carry no
// parameters; the dispatcher acts on their frame type alone and never
// decodes them. The named types give every request frame type a matching
// Go type.
type GetLoginInfoReq struct{}

func (r *GetLoginInfoReq) Encode() []byte { return nil }

func DecodeGetLoginInfoReq(b []byte) (*GetLoginInfoReq, error) { return &GetLoginInfoReq{}, nil }

type GetFriendListReq struct{}

func (r *GetFriendListReq) Encode() []byte { return nil }

func DecodeGetFriendListReq(b []byte) (*GetFriendListReq, error) { return &GetFriendListReq{}, nil }

type GetGroupListReq struct{}

func (r *GetGroupListReq) Encode() []byte { return nil }

func DecodeGetGroupListReq(b []byte) (*GetGroupListReq, error) { return &GetGroupListReq{}, nil }
