// Package driver defines the account-protocol contract every concrete IM
// backend implements. The gateway's bot/session layer talks only to this
// interface; zalodriver is the one concrete implementation in this repo,
// but nothing above this package knows that.
package driver

import (
	"context"
	"io"
)

// NetworkStatus reports a Driver's current connection state.
type NetworkStatus int

const (
	StatusOffline NetworkStatus = iota
	StatusConnecting
	StatusOnline
)

func (s NetworkStatus) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusConnecting:
		return "connecting"
	case StatusOnline:
		return "online"
	default:
		return "unknown"
	}
}

// LoginStateKind discriminates a LoginState returned mid-flow by any of
// the interactive login methods.
type LoginStateKind int

const (
	LoginStateSuccess LoginStateKind = iota
	LoginStateNeedCaptcha
	LoginStateNeedDeviceLockApproval
	LoginStateNeedSMSCode
	LoginStateAccountFrozen
	LoginStateTooManySMSRequests
	LoginStateInvalidCredentials
	LoginStateUnknown
)

// LoginState is returned by every step of an interactive login. Token must
// be threaded into the next call; CaptchaImage is only populated for
// LoginStateNeedCaptcha.
type LoginState struct {
	Kind         LoginStateKind
	Token        string
	CaptchaImage []byte
}

// ReconnectCredential is the sum type a Driver hands the session manager
// for later silent reconnection, and accepts back via Reconnect.
type ReconnectCredential struct {
	// Exactly one of Password or Token is populated.
	Password *PasswordCredential
	Token    []byte
}

type PasswordCredential struct {
	UIN      string
	Password string
}

// AccountInfo is a Driver's own identity as reported by the backend.
type AccountInfo struct {
	UIN      string
	Nickname string
	Avatar   string
}

// FriendInfo and GroupInfo/GroupMemberInfo mirror the shapes the wire
// package's response variants expose — the driver speaks these plain Go
// structs, and the API dispatcher is responsible for translating them to
// wire bytes.
type FriendInfo struct {
	UIN      string
	Nickname string
	Remark   string
}

type GroupInfo struct {
	GroupID     string
	GroupName   string
	MemberCount int
}

type GroupMemberInfo struct {
	GroupID  string
	UIN      string
	Nickname string
	Card     string
	Role     int32 // 0 member, 1 admin, 2 owner
}

// MessageReceipt is the opaque identifier a Driver returns from a send and
// accepts back for recall/delete.
type MessageReceipt struct {
	SenderID string
	Time     int64
	Seqs     []int64
	Rands    []int64
	GroupID  string
}

// Event is the sum type a Driver's event stream emits. Exactly one field
// is non-nil per Event value.
type Event struct {
	PrivateMessage *PrivateMessageEvent
	GroupMessage   *GroupMessageEvent
	GroupUpload    *GroupUploadEvent
	GroupAdminSet  *GroupAdminEvent
	GroupDecrease  *GroupMembershipEvent
	GroupIncrease  *GroupMembershipEvent
	GroupBan       *GroupBanEvent
	FriendAdd      *FriendAddEvent
	GroupRecall    *GroupRecallEvent
	FriendRecall   *FriendRecallEvent
	FriendRequest  *FriendRequestEvent
	GroupRequest   *GroupRequestEvent
}

// Element is the native, pre-wire representation of one piece of a
// message: plain text, an @-mention, a face/sticker, or an already
// uploaded image/video reference. A driver's inbound events carry these
// directly; an outbound send also takes a list of these, letting a
// plugin's at/face/image/video chain elements survive the round trip
// instead of collapsing to flat text.
type Element struct {
	Type string // "text", "at", "face", "image", "video"
	Text string // text
	QQ   string // at: target uin, "all" for everyone
	ID   string // face: icon id
	URI  string // image/video: source (outbound) or hosted URL (inbound)
}

type PrivateMessageEvent struct {
	UserID   string
	Time     int64
	Elements []Element
	Receipt  MessageReceipt
}

type GroupMessageEvent struct {
	GroupID   string
	UserID    string
	Time      int64
	Elements  []Element
	Receipt   MessageReceipt
	Anonymous bool
}

type GroupUploadEvent struct {
	GroupID  string
	UserID   string
	FileName string
	FileSize int64
}

type GroupAdminEvent struct {
	GroupID  string
	UserID   string
	SetAdmin bool
}

type GroupMembershipEvent struct {
	GroupID    string
	UserID     string
	OperatorID string
	SubType    string
}

type GroupBanEvent struct {
	GroupID    string
	UserID     string
	OperatorID string
	Duration   int64
	SubType    string
}

type FriendAddEvent struct {
	UserID string
}

type GroupRecallEvent struct {
	GroupID    string
	UserID     string
	OperatorID string
	MessageID  []byte
}

type FriendRecallEvent struct {
	UserID    string
	MessageID []byte
}

type FriendRequestEvent struct {
	UserID  string
	Comment string
	Flag    string
}

type GroupRequestEvent struct {
	GroupID string
	UserID  string
	Comment string
	Flag    string
	SubType string
}

// Driver is the contract a concrete IM backend implements. Every method
// that talks to the network takes a context and returns an error; nothing
// panics across this boundary.
type Driver interface {
	// UIN is the account identifier this driver was constructed for.
	UIN() string

	// --- Login ---

	FetchQRCode(ctx context.Context) (qrPNG []byte, token string, err error)
	QueryQRCodeResult(ctx context.Context, token string) (*LoginState, error)
	PasswordLogin(ctx context.Context, username, password string) (*LoginState, error)
	SubmitCaptcha(ctx context.Context, token, answer string) (*LoginState, error)
	DeviceLockLogin(ctx context.Context, token string) (*LoginState, error)
	RequestSMSCode(ctx context.Context, token string) (*LoginState, error)
	SubmitSMSCode(ctx context.Context, token, code string) (*LoginState, error)

	// Reconnect resumes a session from a previously issued credential
	// without interactive login.
	Reconnect(ctx context.Context, cred ReconnectCredential) error

	// GenToken serializes the current session for later Reconnect.
	GenToken(ctx context.Context) ([]byte, error)

	// --- Info ---

	GetAccountInfo(ctx context.Context) (*AccountInfo, error)
	GetFriendList(ctx context.Context) ([]FriendInfo, error)
	GetStrangerInfo(ctx context.Context, uin string) (*FriendInfo, error)
	GetGroupInfo(ctx context.Context, groupID string) (*GroupInfo, error)
	GetGroupList(ctx context.Context) ([]GroupInfo, error)
	GetGroupMemberInfo(ctx context.Context, groupID, uin string) (*GroupMemberInfo, error)
	GetGroupMemberList(ctx context.Context, groupID string) ([]GroupMemberInfo, error)
	GetGroupAdminList(ctx context.Context, groupID string) ([]string, error)

	// --- Messaging ---

	SendFriendMessage(ctx context.Context, uin string, elements []Element) (*MessageReceipt, error)
	SendGroupMessage(ctx context.Context, groupID string, elements []Element) (*MessageReceipt, error)
	RecallFriendMessage(ctx context.Context, receipt MessageReceipt) error
	RecallGroupMessage(ctx context.Context, receipt MessageReceipt) error
	SendLike(ctx context.Context, uin string, times int32) error

	// --- Group administration ---

	GroupKick(ctx context.Context, groupID, uin string, rejectAddRequest bool) error
	GroupMute(ctx context.Context, groupID, uin string, durationSeconds int64) error
	GroupMuteAll(ctx context.Context, groupID string, enable bool) error
	GroupSetAdmin(ctx context.Context, groupID, uin string, enable bool) error
	EditGroupMemberCard(ctx context.Context, groupID, uin, card string) error
	UpdateGroupName(ctx context.Context, groupID, name string) error
	GroupQuit(ctx context.Context, groupID string) error
	// GroupEditSpecialTitle assigns uin's special title in groupID. uin
	// must be the actual member, never the group id itself.
	GroupEditSpecialTitle(ctx context.Context, groupID, uin, title string) error

	// --- Uploads ---

	UploadGroupImage(ctx context.Context, groupID string, r io.Reader) (url string, err error)
	UploadFriendImage(ctx context.Context, uin string, r io.Reader) (url string, err error)
	UploadGroupShortVideo(ctx context.Context, groupID string, r io.Reader) (url string, err error)

	// --- Lifecycle ---

	Start(ctx context.Context) error
	Stop() error
	Status() NetworkStatus
	// Events returns the channel events are delivered on. Valid after a
	// successful Start; closed when the driver stops for good.
	Events() <-chan Event
}
