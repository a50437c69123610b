package apidispatch

import (
	"context"
	"io"
	"testing"

	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/pkg/wire"
)

// fakeDriver records the arguments of the one or two methods a given test
// cares about; every other method returns a zero value and is never
// asserted on.
type fakeDriver struct {
	uin string

	specialTitleGroupID string
	specialTitleUserID  string
	specialTitleTitle   string

	sendFriendUIN  string
	sendFriendText string
}

func (d *fakeDriver) UIN() string { return d.uin }

func (d *fakeDriver) FetchQRCode(ctx context.Context) ([]byte, string, error) { return nil, "", nil }
func (d *fakeDriver) QueryQRCodeResult(ctx context.Context, token string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) PasswordLogin(ctx context.Context, u, p string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) SubmitCaptcha(ctx context.Context, token, answer string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) DeviceLockLogin(ctx context.Context, token string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) RequestSMSCode(ctx context.Context, token string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) SubmitSMSCode(ctx context.Context, token, code string) (*driver.LoginState, error) {
	return nil, nil
}
func (d *fakeDriver) Reconnect(ctx context.Context, cred driver.ReconnectCredential) error { return nil }
func (d *fakeDriver) GenToken(ctx context.Context) ([]byte, error)                         { return nil, nil }

func (d *fakeDriver) GetAccountInfo(ctx context.Context) (*driver.AccountInfo, error) {
	return &driver.AccountInfo{UIN: d.uin, Nickname: "fake"}, nil
}
func (d *fakeDriver) GetFriendList(ctx context.Context) ([]driver.FriendInfo, error) { return nil, nil }
func (d *fakeDriver) GetStrangerInfo(ctx context.Context, uin string) (*driver.FriendInfo, error) {
	return &driver.FriendInfo{UIN: uin}, nil
}
func (d *fakeDriver) GetGroupInfo(ctx context.Context, groupID string) (*driver.GroupInfo, error) {
	return &driver.GroupInfo{GroupID: groupID}, nil
}
func (d *fakeDriver) GetGroupList(ctx context.Context) ([]driver.GroupInfo, error) { return nil, nil }
func (d *fakeDriver) GetGroupMemberInfo(ctx context.Context, groupID, uin string) (*driver.GroupMemberInfo, error) {
	return &driver.GroupMemberInfo{GroupID: groupID, UIN: uin}, nil
}
func (d *fakeDriver) GetGroupMemberList(ctx context.Context, groupID string) ([]driver.GroupMemberInfo, error) {
	return nil, nil
}
func (d *fakeDriver) GetGroupAdminList(ctx context.Context, groupID string) ([]string, error) {
	return nil, nil
}

func (d *fakeDriver) SendFriendMessage(ctx context.Context, uin string, elements []driver.Element) (*driver.MessageReceipt, error) {
	d.sendFriendUIN = uin
	for _, e := range elements {
		if e.Type == "text" {
			d.sendFriendText += e.Text
		}
	}
	return &driver.MessageReceipt{SenderID: uin, Time: 42}, nil
}
func (d *fakeDriver) SendGroupMessage(ctx context.Context, groupID string, elements []driver.Element) (*driver.MessageReceipt, error) {
	return &driver.MessageReceipt{GroupID: groupID}, nil
}
func (d *fakeDriver) RecallFriendMessage(ctx context.Context, receipt driver.MessageReceipt) error { return nil }
func (d *fakeDriver) RecallGroupMessage(ctx context.Context, receipt driver.MessageReceipt) error   { return nil }
func (d *fakeDriver) SendLike(ctx context.Context, uin string, times int32) error                  { return nil }

func (d *fakeDriver) GroupKick(ctx context.Context, groupID, uin string, reject bool) error    { return nil }
func (d *fakeDriver) GroupMute(ctx context.Context, groupID, uin string, duration int64) error  { return nil }
func (d *fakeDriver) GroupMuteAll(ctx context.Context, groupID string, enable bool) error       { return nil }
func (d *fakeDriver) GroupSetAdmin(ctx context.Context, groupID, uin string, enable bool) error { return nil }
func (d *fakeDriver) EditGroupMemberCard(ctx context.Context, groupID, uin, card string) error  { return nil }
func (d *fakeDriver) UpdateGroupName(ctx context.Context, groupID, name string) error           { return nil }
func (d *fakeDriver) GroupQuit(ctx context.Context, groupID string) error                       { return nil }
func (d *fakeDriver) GroupEditSpecialTitle(ctx context.Context, groupID, uin, title string) error {
	d.specialTitleGroupID = groupID
	d.specialTitleUserID = uin
	d.specialTitleTitle = title
	return nil
}

func (d *fakeDriver) UploadGroupImage(ctx context.Context, groupID string, r io.Reader) (string, error) {
	return "", nil
}
func (d *fakeDriver) UploadFriendImage(ctx context.Context, uin string, r io.Reader) (string, error) {
	return "", nil
}
func (d *fakeDriver) UploadGroupShortVideo(ctx context.Context, groupID string, r io.Reader) (string, error) {
	return "", nil
}

func (d *fakeDriver) Start(ctx context.Context) error  { return nil }
func (d *fakeDriver) Stop() error                      { return nil }
func (d *fakeDriver) Status() driver.NetworkStatus     { return driver.StatusOnline }
func (d *fakeDriver) Events() <-chan driver.Event      { return nil }

func TestHandle_SetGroupSpecialTitle_UsesUserIDNotGroupID(t *testing.T) {
	d := &fakeDriver{uin: "1"}
	req := &wire.Frame{
		BotID:     1,
		FrameType: wire.FrameSetGroupSpecialTitleReq,
		Echo:      "echo-1",
		Data: (&wire.SetGroupSpecialTitleReq{
			GroupID:      1001,
			UserID:       2002,
			SpecialTitle: "group veteran",
		}).Encode(),
	}

	resp := Handle(context.Background(), d, req)

	if !resp.OK {
		t.Fatalf("response not ok")
	}
	if resp.Echo != "echo-1" {
		t.Errorf("Echo = %q, want %q", resp.Echo, "echo-1")
	}
	if d.specialTitleGroupID != "1001" || d.specialTitleUserID != "2002" {
		t.Fatalf("GroupEditSpecialTitle called with group=%q user=%q, want group=1001 user=2002 (the swapped-argument bug must stay fixed)",
			d.specialTitleGroupID, d.specialTitleUserID)
	}
	if d.specialTitleTitle != "group veteran" {
		t.Errorf("title = %q, want %q", d.specialTitleTitle, "group veteran")
	}
}

func TestHandle_SendPrivateMsg_RoundTrips(t *testing.T) {
	d := &fakeDriver{uin: "1"}
	req := &wire.Frame{
		BotID:     1,
		FrameType: wire.FrameSendPrivateMsgReq,
		Echo:      "echo-2",
		Data: (&wire.SendPrivateMsgReq{
			UserID: 555,
			Message: wire.Chain{
				{Type: "text", Data: map[string]string{"text": "hi there"}},
			},
		}).Encode(),
	}

	resp := Handle(context.Background(), d, req)

	if !resp.OK {
		t.Fatalf("response not ok")
	}
	if resp.FrameType != wire.ResponseType(wire.FrameSendPrivateMsgReq) {
		t.Errorf("FrameType = %d, want %d", resp.FrameType, wire.ResponseType(wire.FrameSendPrivateMsgReq))
	}
	if d.sendFriendUIN != "555" {
		t.Errorf("SendFriendMessage uin = %q, want %q", d.sendFriendUIN, "555")
	}
	if d.sendFriendText != "hi there" {
		t.Errorf("SendFriendMessage text = %q, want %q", d.sendFriendText, "hi there")
	}
	if len(resp.Data) == 0 {
		t.Error("expected a non-empty SendMsgResp body")
	}
}

func TestHandle_DecodeFailure_YieldsEmptyOKResponse(t *testing.T) {
	d := &fakeDriver{uin: "1"}
	req := &wire.Frame{
		BotID:     1,
		FrameType: wire.FrameSendPrivateMsgReq,
		Echo:      "echo-3",
		Data:      []byte{0xff, 0xff, 0xff}, // not a valid encoded message
	}

	resp := Handle(context.Background(), d, req)

	if !resp.OK {
		t.Error("response should still be ok=true per the dispatcher's documented contract")
	}
	if len(resp.Data) != 0 {
		t.Error("expected empty data on a decode failure")
	}
}
