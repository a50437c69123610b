package session

import (
	"context"
	"io"
	"testing"

	"github.com/zalogw/gateway/internal/bot"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/gwerr"
	"github.com/zalogw/gateway/internal/registry"
)

// fakeDriver is a scriptable driver.Driver: queryResults is consumed one
// entry per QueryQRCodeResult call, loginResults one entry per
// PasswordLogin/SubmitCaptcha/RequestSMSCode/SubmitSMSCode call.
type fakeDriver struct {
	uin          string
	queryResults []driver.LoginState
	queryCalls   int
	loginResults []driver.LoginState
	loginCalls   int
}

func (d *fakeDriver) UIN() string { return d.uin }

func (d *fakeDriver) FetchQRCode(ctx context.Context) ([]byte, string, error) {
	return []byte("png-bytes"), "", nil
}
func (d *fakeDriver) QueryQRCodeResult(ctx context.Context, token string) (*driver.LoginState, error) {
	s := d.queryResults[d.queryCalls]
	d.queryCalls++
	return &s, nil
}
func (d *fakeDriver) nextLogin() *driver.LoginState {
	s := d.loginResults[d.loginCalls]
	d.loginCalls++
	return &s
}
func (d *fakeDriver) PasswordLogin(ctx context.Context, u, p string) (*driver.LoginState, error) {
	return d.nextLogin(), nil
}
func (d *fakeDriver) SubmitCaptcha(ctx context.Context, token, answer string) (*driver.LoginState, error) {
	return d.nextLogin(), nil
}
func (d *fakeDriver) DeviceLockLogin(ctx context.Context, token string) (*driver.LoginState, error) {
	return &driver.LoginState{Kind: driver.LoginStateSuccess}, nil
}
func (d *fakeDriver) RequestSMSCode(ctx context.Context, token string) (*driver.LoginState, error) {
	return d.nextLogin(), nil
}
func (d *fakeDriver) SubmitSMSCode(ctx context.Context, token, code string) (*driver.LoginState, error) {
	return d.nextLogin(), nil
}
func (d *fakeDriver) Reconnect(ctx context.Context, cred driver.ReconnectCredential) error { return nil }
func (d *fakeDriver) GenToken(ctx context.Context) ([]byte, error)                         { return []byte("token"), nil }

func (d *fakeDriver) GetAccountInfo(ctx context.Context) (*driver.AccountInfo, error) { return nil, nil }
func (d *fakeDriver) GetFriendList(ctx context.Context) ([]driver.FriendInfo, error)  { return nil, nil }
func (d *fakeDriver) GetStrangerInfo(ctx context.Context, uin string) (*driver.FriendInfo, error) {
	return nil, nil
}
func (d *fakeDriver) GetGroupInfo(ctx context.Context, groupID string) (*driver.GroupInfo, error) {
	return nil, nil
}
func (d *fakeDriver) GetGroupList(ctx context.Context) ([]driver.GroupInfo, error) { return nil, nil }
func (d *fakeDriver) GetGroupMemberInfo(ctx context.Context, groupID, uin string) (*driver.GroupMemberInfo, error) {
	return nil, nil
}
func (d *fakeDriver) GetGroupMemberList(ctx context.Context, groupID string) ([]driver.GroupMemberInfo, error) {
	return nil, nil
}
func (d *fakeDriver) GetGroupAdminList(ctx context.Context, groupID string) ([]string, error) {
	return nil, nil
}

func (d *fakeDriver) SendFriendMessage(ctx context.Context, uin string, elements []driver.Element) (*driver.MessageReceipt, error) {
	return nil, nil
}
func (d *fakeDriver) SendGroupMessage(ctx context.Context, groupID string, elements []driver.Element) (*driver.MessageReceipt, error) {
	return nil, nil
}
func (d *fakeDriver) RecallFriendMessage(ctx context.Context, receipt driver.MessageReceipt) error { return nil }
func (d *fakeDriver) RecallGroupMessage(ctx context.Context, receipt driver.MessageReceipt) error   { return nil }
func (d *fakeDriver) SendLike(ctx context.Context, uin string, times int32) error                  { return nil }

func (d *fakeDriver) GroupKick(ctx context.Context, groupID, uin string, reject bool) error     { return nil }
func (d *fakeDriver) GroupMute(ctx context.Context, groupID, uin string, duration int64) error   { return nil }
func (d *fakeDriver) GroupMuteAll(ctx context.Context, groupID string, enable bool) error        { return nil }
func (d *fakeDriver) GroupSetAdmin(ctx context.Context, groupID, uin string, enable bool) error  { return nil }
func (d *fakeDriver) EditGroupMemberCard(ctx context.Context, groupID, uin, card string) error   { return nil }
func (d *fakeDriver) UpdateGroupName(ctx context.Context, groupID, name string) error            { return nil }
func (d *fakeDriver) GroupQuit(ctx context.Context, groupID string) error                        { return nil }
func (d *fakeDriver) GroupEditSpecialTitle(ctx context.Context, groupID, uin, title string) error { return nil }

func (d *fakeDriver) UploadGroupImage(ctx context.Context, groupID string, r io.Reader) (string, error) {
	return "", nil
}
func (d *fakeDriver) UploadFriendImage(ctx context.Context, uin string, r io.Reader) (string, error) {
	return "", nil
}
func (d *fakeDriver) UploadGroupShortVideo(ctx context.Context, groupID string, r io.Reader) (string, error) {
	return "", nil
}

func (d *fakeDriver) Start(ctx context.Context) error { return nil }
func (d *fakeDriver) Stop() error                     { return nil }
// Status reports Offline so watchReconnect's background goroutine resolves
// on its first Reconnect attempt instead of sleeping reconnectInterval.
func (d *fakeDriver) Status() driver.NetworkStatus { return driver.StatusOffline }
func (d *fakeDriver) Events() <-chan driver.Event  { return nil }

func noPlugins(uin string) ([]bot.PluginSpec, error) { return nil, nil }

func newTestManager(d *fakeDriver) *Manager {
	return NewManager(registry.New(), func(Protocol) (driver.Driver, error) { return d, nil }, noPlugins)
}

func TestQRFlow_WaitThenConfirmPromotes(t *testing.T) {
	d := &fakeDriver{
		uin: "111",
		queryResults: []driver.LoginState{
			{Kind: driver.LoginStateUnknown},
			{Kind: driver.LoginStateSuccess},
		},
	}
	m := newTestManager(d)

	sig, png, err := m.CreateQR(context.Background(), ZaloPersonal)
	if err != nil {
		t.Fatalf("CreateQR: %v", err)
	}
	if string(png) != "png-bytes" {
		t.Errorf("unexpected QR image bytes: %q", png)
	}

	state, err := m.QueryQR(context.Background(), sig)
	if err != nil {
		t.Fatalf("QueryQR (1st poll): %v", err)
	}
	if state != QRWaitingForScan {
		t.Errorf("1st poll state = %q, want %q", state, QRWaitingForScan)
	}

	state, err = m.QueryQR(context.Background(), sig)
	if err != nil {
		t.Fatalf("QueryQR (2nd poll): %v", err)
	}
	if state != QRConfirmed {
		t.Errorf("2nd poll state = %q, want %q", state, QRConfirmed)
	}

	if m.reg.Get("111") == nil {
		t.Error("successful QR login did not promote a bot into the registry")
	}
}

func TestQRFlow_UnknownSigIsClientNotFound(t *testing.T) {
	m := newTestManager(&fakeDriver{uin: "1"})
	_, err := m.QueryQR(context.Background(), "no-such-sig")
	if gwerr.KindOf(err) != gwerr.ClientNotFound {
		t.Errorf("KindOf(err) = %v, want ClientNotFound", gwerr.KindOf(err))
	}
}

func TestLogin_ImmediateSuccessPromotes(t *testing.T) {
	d := &fakeDriver{
		uin:          "222",
		loginResults: []driver.LoginState{{Kind: driver.LoginStateSuccess}},
	}
	m := newTestManager(d)

	state, err := m.Login(context.Background(), ZaloPersonal, "222", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if state.Kind != driver.LoginStateSuccess {
		t.Errorf("state.Kind = %v, want Success", state.Kind)
	}
	if m.reg.Get("222") == nil {
		t.Error("immediate-success login did not promote a bot")
	}
}

func TestLogin_CaptchaThenTicketPromotes(t *testing.T) {
	d := &fakeDriver{
		uin: "333",
		loginResults: []driver.LoginState{
			{Kind: driver.LoginStateNeedCaptcha, Token: "captcha-token"},
			{Kind: driver.LoginStateSuccess},
		},
	}
	m := newTestManager(d)

	state, err := m.Login(context.Background(), ZaloPersonal, "333", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if state.Kind != driver.LoginStateNeedCaptcha {
		t.Fatalf("state.Kind = %v, want NeedCaptcha", state.Kind)
	}
	if m.reg.Get("333") != nil {
		t.Fatal("bot promoted before captcha was submitted")
	}

	state, err = m.SubmitTicket(context.Background(), ZaloPersonal, "333", "answer")
	if err != nil {
		t.Fatalf("SubmitTicket: %v", err)
	}
	if state.Kind != driver.LoginStateSuccess {
		t.Errorf("state.Kind after ticket = %v, want Success", state.Kind)
	}
	if m.reg.Get("333") == nil {
		t.Error("bot was not promoted after a successful captcha submission")
	}
}

func TestSubmitTicket_NoPendingFlowIsClientNotFound(t *testing.T) {
	m := newTestManager(&fakeDriver{uin: "1"})
	_, err := m.SubmitTicket(context.Background(), ZaloPersonal, "no-such-uin", "x")
	if gwerr.KindOf(err) != gwerr.ClientNotFound {
		t.Errorf("KindOf(err) = %v, want ClientNotFound", gwerr.KindOf(err))
	}
}
