package wire

import "google.golang.org/protobuf/encoding/protowire"

// SendMsgResp is the shared response shape for SendPrivateMsg and
// SendGroupMsg: the receipt a caller must hold onto to later recall or
// delete the message.
type SendMsgResp struct {
	MessageID []byte
}

func (r *SendMsgResp) Encode() []byte {
	return appendBytesField(nil, 1, r.MessageID)
}

func DecodeSendMsgResp(b []byte) (*SendMsgResp, error) {
	r := &SendMsgResp{}
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

// Ack is the empty response body shared by every mutating handler that
// reports success purely through the Frame's ok flag (DeleteMsg, SendLike,
// the group-admin family, SetGroupLeave).
type Ack struct{}

func (r *Ack) Encode() []byte { return nil }

func DecodeAck(b []byte) (*Ack, error) { return &Ack{}, nil }

// GetLoginInfoResp reports the bot account's own profile.
type GetLoginInfoResp struct {
	UserID   int64
	Nickname string
}

func (r *GetLoginInfoResp) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.UserID)
	b = appendStringField(b, 2, r.Nickname)
	return b
}

func DecodeGetLoginInfoResp(b []byte) (*GetLoginInfoResp, error) {
	r := &GetLoginInfoResp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			r.Nickname = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// GetStrangerInfoResp reports a profile for an arbitrary user id.
type GetStrangerInfoResp struct {
	UserID   int64
	Nickname string
	Sex      int32
}

func (r *GetStrangerInfoResp) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.UserID)
	b = appendStringField(b, 2, r.Nickname)
	b = appendInt64Field(b, 3, int64(r.Sex))
	return b
}

func DecodeGetStrangerInfoResp(b []byte) (*GetStrangerInfoResp, error) {
	r := &GetStrangerInfoResp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			r.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			r.Nickname = v
			return n, err
		case 3:
			v, n, err := consumeVarint(rest)
			r.Sex = int32(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// FriendInfo is one entry of a GetFriendListResp.
type FriendInfo struct {
	UserID   int64
	Nickname string
	Remark   string
}

func (f *FriendInfo) encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, f.UserID)
	b = appendStringField(b, 2, f.Nickname)
	b = appendStringField(b, 3, f.Remark)
	return b
}

func decodeFriendInfo(b []byte) (*FriendInfo, error) {
	f := &FriendInfo{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			f.UserID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			f.Nickname = v
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			f.Remark = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return f, err
}

// GetFriendListResp is the bot's full friend roster.
type GetFriendListResp struct {
	Friends []FriendInfo
}

func (r *GetFriendListResp) Encode() []byte {
	var b []byte
	for i := range r.Friends {
		b = appendMessageField(b, 1, r.Friends[i].encode())
	}
	return b
}

func DecodeGetFriendListResp(b []byte) (*GetFriendListResp, error) {
	r := &GetFriendListResp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		raw, n, err := consumeBytes(rest)
		if err != nil {
			return n, err
		}
		f, err := decodeFriendInfo(raw)
		if err != nil {
			return n, err
		}
		r.Friends = append(r.Friends, *f)
		return n, nil
	})
	return r, err
}

// GetGroupInfoResp reports metadata about a single group.
type GetGroupInfoResp struct {
	GroupID     int64
	GroupName   string
	MemberCount int32
}

func (r *GetGroupInfoResp) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, r.GroupID)
	b = appendStringField(b, 2, r.GroupName)
	b = appendInt64Field(b, 3, int64(r.MemberCount))
	return b
}

func DecodeGetGroupInfoResp(b []byte) (*GetGroupInfoResp, error) {
	r := &GetGroupInfoResp{}
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
		case 3:
			v, n, err := consumeVarint(rest)
			r.MemberCount = int32(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return r, err
}

// GroupInfo is one entry of a GetGroupListResp.
type GroupInfo struct {
	GroupID   int64
	GroupName string
}

func (g *GroupInfo) encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, g.GroupID)
	b = appendStringField(b, 2, g.GroupName)
	return b
}

func decodeGroupInfo(b []byte) (*GroupInfo, error) {
	g := &GroupInfo{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			g.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeString(rest)
			g.GroupName = v
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return g, err
}

// GetGroupListResp is the bot's full group membership list.
type GetGroupListResp struct {
	Groups []GroupInfo
}

func (r *GetGroupListResp) Encode() []byte {
	var b []byte
	for i := range r.Groups {
		b = appendMessageField(b, 1, r.Groups[i].encode())
	}
	return b
}

func DecodeGetGroupListResp(b []byte) (*GetGroupListResp, error) {
	r := &GetGroupListResp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		raw, n, err := consumeBytes(rest)
		if err != nil {
			return n, err
		}
		g, err := decodeGroupInfo(raw)
		if err != nil {
			return n, err
		}
		r.Groups = append(r.Groups, *g)
		return n, nil
	})
	return r, err
}

// GroupMemberInfo describes one member of a group roster.
type GroupMemberInfo struct {
	GroupID  int64
	UserID   int64
	Nickname string
	Card     string
	Role     int32 // 0 member, 1 admin, 2 owner
}

func (m *GroupMemberInfo) encode() []byte {
	var b []byte
	b = appendInt64Field(b, 1, m.GroupID)
	b = appendInt64Field(b, 2, m.UserID)
	b = appendStringField(b, 3, m.Nickname)
	b = appendStringField(b, 4, m.Card)
	b = appendInt64Field(b, 5, int64(m.Role))
	return b
}

func decodeGroupMemberInfo(b []byte) (*GroupMemberInfo, error) {
	m := &GroupMemberInfo{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(rest)
			m.GroupID = int64(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(rest)
			m.UserID = int64(v)
			return n, err
		case 3:
			v, n, err := consumeString(rest)
			m.Nickname = v
			return n, err
		case 4:
			v, n, err := consumeString(rest)
			m.Card = v
			return n, err
		case 5:
			v, n, err := consumeVarint(rest)
			m.Role = int32(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	return m, err
}

// GetGroupMemberInfoResp reports metadata about a single group member.
type GetGroupMemberInfoResp struct {
	Member GroupMemberInfo
}

func (r *GetGroupMemberInfoResp) Encode() []byte {
	return r.Member.encode()
}

func DecodeGetGroupMemberInfoResp(b []byte) (*GetGroupMemberInfoResp, error) {
	m, err := decodeGroupMemberInfo(b)
	if err != nil {
		return nil, err
	}
	return &GetGroupMemberInfoResp{Member: *m}, nil
}

// GetGroupMemberListResp is a group's full member roster.
type GetGroupMemberListResp struct {
	Members []GroupMemberInfo
}

func (r *GetGroupMemberListResp) Encode() []byte {
	var b []byte
	for i := range r.Members {
		b = appendMessageField(b, 1, r.Members[i].encode())
	}
	return b
}

func DecodeGetGroupMemberListResp(b []byte) (*GetGroupMemberListResp, error) {
	r := &GetGroupMemberListResp{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		raw, n, err := consumeBytes(rest)
		if err != nil {
			return n, err
		}
		m, err := decodeGroupMemberInfo(raw)
		if err != nil {
			return n, err
		}
		r.Members = append(r.Members, *m)
		return n, nil
	})
	return r, err
}
