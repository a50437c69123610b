package wire

import "google.golang.org/protobuf/encoding/protowire"

// PrivateMessageEvent reports an incoming direct message. RawMessage is an
// XML-ish rendering of Message, letting a plugin that doesn't want to walk
// the chain structure just read the flat text instead.
type PrivateMessageEvent struct {
	UserID     int64
	Time       int64
	Message    Chain
	MessageID  []byte
	RawMessage string
}

func (e *PrivateMessageEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.UserID)
	b = appendInt64Field(b, 2, e.Time)
	b = appendMessageField(b, 3, EncodeChain(e.Message))
	b = appendBytesField(b, 4, e.MessageID)
	b = appendStringField(b, 5, e.RawMessage)
	return b
}

func DecodePrivateMessageEvent(b []byte) (*PrivateMessageEvent, error) {
	e := &PrivateMessageEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.Time = int64(v)
			return n, err
		case 3:
			raw, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			chain, err := DecodeChain(raw)
			e.Message = chain
			return n, err
		case 4:
			v, n, err := consumeBytes(rest)
			e.MessageID = v
			return n, err
		case 5:
			v, n, err := consumeString(rest)
			e.RawMessage = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupMessageEvent reports an incoming group message. SenderRole is the
// sending member's standing in the group ("member", "admin", or "owner");
// RawMessage is an XML-ish rendering of Message for plugins that don't
// want to walk the chain structure.
type GroupMessageEvent struct {
	GroupID    int64
	UserID     int64
	Time       int64
	Message    Chain
	MessageID  []byte
	Anonymous  bool
	RawMessage string
	SenderRole string
}

func (e *GroupMessageEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendInt64Field(b, 3, e.Time)
	b = appendMessageField(b, 4, EncodeChain(e.Message))
	b = appendBytesField(b, 5, e.MessageID)
	b = appendBoolField(b, 6, e.Anonymous)
	b = appendStringField(b, 7, e.RawMessage)
	b = appendStringField(b, 8, e.SenderRole)
	return b
}

func DecodeGroupMessageEvent(b []byte) (*GroupMessageEvent, error) {
	e := &GroupMessageEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.Time = int64(v)
			return n, err
		case 4:
			raw, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			chain, err := DecodeChain(raw)
			e.Message = chain
			return n, err
		case 5:
			v, n, err := consumeBytes(rest)
			e.MessageID = v
			return n, err
		case 6:
			v, n, err := consumeVarint(rest)
			e.Anonymous = v != 0
			return n, err
		case 7:
			v, n, err := consumeString(rest)
			e.RawMessage = v
			return n, err
		case 8:
			v, n, err := consumeString(rest)
			e.SenderRole = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupUploadNoticeEvent reports a file upload into a group.
type GroupUploadNoticeEvent struct {
	GroupID  int64
	UserID   int64
	FileName string
	FileSize int64
}

func (e *GroupUploadNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendStringField(b, 3, e.FileName)
	b = appendInt64Field(b, 4, e.FileSize)
	return b
}

func DecodeGroupUploadNoticeEvent(b []byte) (*GroupUploadNoticeEvent, error) {
	e := &GroupUploadNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			e.FileName = v
			return n, err
		case 4:
			v, n, err := consumeVarint(rest)
			e.FileSize = int64(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupAdminNoticeEvent reports a member's admin status changing.
type GroupAdminNoticeEvent struct {
	GroupID  int64
	UserID   int64
	SetAdmin bool
}

func (e *GroupAdminNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendBoolField(b, 3, e.SetAdmin)
	return b
}

func DecodeGroupAdminNoticeEvent(b []byte) (*GroupAdminNoticeEvent, error) {
	e := &GroupAdminNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.SetAdmin = v != 0
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupDecreaseNoticeEvent reports a member leaving or being removed.
// SubType is one of "leave", "kick", "kick_me".
type GroupDecreaseNoticeEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
	SubType    string
}

func (e *GroupDecreaseNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendInt64Field(b, 3, e.OperatorID)
	b = appendStringField(b, 4, e.SubType)
	return b
}

func DecodeGroupDecreaseNoticeEvent(b []byte) (*GroupDecreaseNoticeEvent, error) {
	e := &GroupDecreaseNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.OperatorID = int64(v)
			return n, err
		case 4:
			v, n, err := consumeString(rest)
			e.SubType = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupIncreaseNoticeEvent reports a new member joining. SubType is one of
// "approve", "invite".
type GroupIncreaseNoticeEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
	SubType    string
}

func (e *GroupIncreaseNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendInt64Field(b, 3, e.OperatorID)
	b = appendStringField(b, 4, e.SubType)
	return b
}

func DecodeGroupIncreaseNoticeEvent(b []byte) (*GroupIncreaseNoticeEvent, error) {
	e := &GroupIncreaseNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.OperatorID = int64(v)
			return n, err
		case 4:
			v, n, err := consumeString(rest)
			e.SubType = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupBanNoticeEvent reports a mute being applied or lifted. SubType is
// one of "ban", "lift_ban".
type GroupBanNoticeEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
	Duration   int64
	SubType    string
}

func (e *GroupBanNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendInt64Field(b, 3, e.OperatorID)
	b = appendInt64Field(b, 4, e.Duration)
	b = appendStringField(b, 5, e.SubType)
	return b
}

func DecodeGroupBanNoticeEvent(b []byte) (*GroupBanNoticeEvent, error) {
	e := &GroupBanNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.OperatorID = int64(v)
			return n, err
		case 4:
			v, n, err := consumeVarint(rest)
			e.Duration = int64(v)
			return n, err
		case 5:
			v, n, err := consumeString(rest)
			e.SubType = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// FriendAddNoticeEvent reports a new friend relationship being established.
type FriendAddNoticeEvent struct {
	UserID int64
}

func (e *FriendAddNoticeEvent) Encode() []byte {
	return appendInt64Field(nil, 1, e.UserID)
}

func DecodeFriendAddNoticeEvent(b []byte) (*FriendAddNoticeEvent, error) {
	e := &FriendAddNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		v, n, err := consumeVarint(rest)
		e.UserID = int64(v)
		return n, err
	})
	return e, err
}

// GroupRecallNoticeEvent reports a message in a group being recalled.
type GroupRecallNoticeEvent struct {
	GroupID    int64
	UserID     int64
	OperatorID int64
	MessageID  []byte
}

func (e *GroupRecallNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendInt64Field(b, 3, e.OperatorID)
	b = appendBytesField(b, 4, e.MessageID)
	return b
}

func DecodeGroupRecallNoticeEvent(b []byte) (*GroupRecallNoticeEvent, error) {
	e := &GroupRecallNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			e.OperatorID = int64(v)
			return n, err
		case 4:
			v, n, err := consumeBytes(rest)
			e.MessageID = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// FriendRecallNoticeEvent reports a direct message being recalled.
type FriendRecallNoticeEvent struct {
	UserID    int64
	MessageID []byte
}

func (e *FriendRecallNoticeEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.UserID)
	b = appendBytesField(b, 2, e.MessageID)
	return b
}

func DecodeFriendRecallNoticeEvent(b []byte) (*FriendRecallNoticeEvent, error) {
	e := &FriendRecallNoticeEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(rest)
			e.MessageID = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// FriendRequestEvent reports an incoming friend request. Flag is the
// opaque token a plugin echoes back when approving/rejecting — this
// gateway does not yet expose an approval handler, so Flag is informational
// until one is added.
type FriendRequestEvent struct {
	UserID  int64
	Comment string
	Flag    string
}

func (e *FriendRequestEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.UserID)
	b = appendStringField(b, 2, e.Comment)
	b = appendStringField(b, 3, e.Flag)
	return b
}

func DecodeFriendRequestEvent(b []byte) (*FriendRequestEvent, error) {
	e := &FriendRequestEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			e.Comment = v
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			e.Flag = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}

// GroupRequestEvent reports a request to join a group, or the bot itself
// being invited. SubType is one of "add" (user asking to join), "invite"
// (bot invited by someone already in the group).
type GroupRequestEvent struct {
	GroupID int64
	UserID  int64
	Comment string
	Flag    string
	SubType string
}

func (e *GroupRequestEvent) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, e.GroupID)
	b = appendInt64Field(b, 2, e.UserID)
	b = appendStringField(b, 3, e.Comment)
	b = appendStringField(b, 4, e.Flag)
	b = appendStringField(b, 5, e.SubType)
	return b
}

func DecodeGroupRequestEvent(b []byte) (*GroupRequestEvent, error) {
	e := &GroupRequestEvent{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			e.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			e.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			e.Comment = v
			return n, err
		case 4:
			v, n, err := consumeString(rest)
			e.Flag = v
			return n, err
		case 5:
			v, n, err := consumeString(rest)
			e.SubType = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return e, err
}
