package wire

// FrameType discriminates a Frame's payload. Request types are below 100;
// a response's frame_type is always its request's frame_type + 100; event
// types occupy their own range (11-39) disjoint from requests (41-99), per
// the example in the plugin protocol's frame-type table. These exact
// integers are this repo's concrete instantiation of that table — any
// plugin written against this gateway must match them, not invent its own.
type FrameType int32

const (
	FrameUnknown FrameType = 0

	// Event range.
	FramePrivateMessageEvent     FrameType = 11
	FrameGroupMessageEvent       FrameType = 12
	FrameGroupUploadNoticeEvent  FrameType = 13
	FrameGroupAdminNoticeEvent   FrameType = 14
	FrameGroupDecreaseNoticeEvent FrameType = 15
	FrameGroupIncreaseNoticeEvent FrameType = 16
	FrameGroupBanNoticeEvent     FrameType = 17
	FrameFriendAddNoticeEvent    FrameType = 18
	FrameGroupRecallNoticeEvent  FrameType = 19
	FrameFriendRecallNoticeEvent FrameType = 20
	FrameFriendRequestEvent      FrameType = 21
	FrameGroupRequestEvent       FrameType = 22

	// Request range (< 100). Response frame_type = request + 100.
	FrameSendPrivateMsgReq      FrameType = 41
	FrameSendGroupMsgReq        FrameType = 42
	FrameDeleteMsgReq           FrameType = 43
	FrameSendLikeReq            FrameType = 44
	FrameSetGroupKickReq        FrameType = 45
	FrameSetGroupBanReq         FrameType = 46
	FrameSetGroupWholeBanReq    FrameType = 47
	FrameSetGroupAdminReq       FrameType = 48
	FrameSetGroupCardReq        FrameType = 49
	FrameSetGroupNameReq        FrameType = 50
	FrameSetGroupLeaveReq       FrameType = 51
	FrameSetGroupSpecialTitleReq FrameType = 52
	FrameGetLoginInfoReq        FrameType = 53
	FrameGetStrangerInfoReq     FrameType = 54
	FrameGetFriendListReq       FrameType = 55
	FrameGetGroupInfoReq        FrameType = 56
	FrameGetGroupListReq        FrameType = 57
	FrameGetGroupMemberInfoReq  FrameType = 58
	FrameGetGroupMemberListReq  FrameType = 59
)

// responseOffset is added to a request's frame_type to get its response's.
const responseOffset FrameType = 100

// ResponseType returns the frame_type a response to a request of type req
// must carry.
func ResponseType(req FrameType) FrameType { return req + responseOffset }

// IsEvent reports whether ft falls in the event range.
func (ft FrameType) IsEvent() bool { return ft >= 11 && ft < 40 }

// IsRequest reports whether ft falls in the (sub-100) request range.
func (ft FrameType) IsRequest() bool { return ft >= 40 && ft < 100 }

// IsResponse reports whether ft is a request type shifted by responseOffset.
func (ft FrameType) IsResponse() bool { return ft >= 140 }
