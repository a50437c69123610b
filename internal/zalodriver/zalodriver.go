// Package zalodriver adapts the Zalo personal-account protocol package to
// the gateway-wide driver.Driver contract.
package zalodriver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/stopsignal"
	"github.com/zalogw/gateway/internal/zalopersonal/protocol"
)

// reconnectPause is the fixed delay between a dropped listener and the
// next dial attempt.
const reconnectPause = 5 * time.Second

// Driver implements driver.Driver over one authenticated Zalo session.
type Driver struct {
	sess *protocol.Session

	mu       sync.Mutex
	listener *protocol.Listener
	status   atomic.Int32 // driver.NetworkStatus

	events chan driver.Event
	stop   *stopsignal.Broadcaster
	wg     sync.WaitGroup

	qrMu       sync.Mutex
	qrFinished bool
	qrErr      error

	log *slog.Logger
}

// New wraps an unauthenticated session. Callers must complete a login
// flow (QR or password) before calling Start.
func New(sess *protocol.Session, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		sess:   sess,
		events: make(chan driver.Event, 256),
		stop:   stopsignal.New(),
		log:    log,
	}
}

func (d *Driver) UIN() string { return d.sess.UID }

func (d *Driver) Status() driver.NetworkStatus {
	return driver.NetworkStatus(d.status.Load())
}

func (d *Driver) Events() <-chan driver.Event { return d.events }

// --- Login ---

// FetchQRCode starts the QR login flow in the background and returns as
// soon as the QR image itself is available, leaving scan/confirm to run
// to completion concurrently. QueryQRCodeResult reports when that
// background flow finishes. The token returned here is always empty —
// this driver has only one flow in progress at a time, so the caller
// polls QueryQRCodeResult with no token needed, and the empty string is
// accepted back by it.
func (d *Driver) FetchQRCode(ctx context.Context) ([]byte, string, error) {
	d.qrMu.Lock()
	d.qrFinished = false
	d.qrErr = nil
	d.qrMu.Unlock()

	imgCh := make(chan []byte, 1)
	go func() {
		_, err := protocol.LoginQR(ctx, d.sess, func(qrPNG []byte) { imgCh <- qrPNG })
		d.qrMu.Lock()
		d.qrFinished = true
		d.qrErr = err
		d.qrMu.Unlock()
	}()

	select {
	case png := <-imgCh:
		return png, "", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

// QueryQRCodeResult polls the background flow FetchQRCode started.
// LoginStateUnknown means still waiting for the user to scan and confirm;
// any other kind is terminal.
func (d *Driver) QueryQRCodeResult(ctx context.Context, token string) (*driver.LoginState, error) {
	d.qrMu.Lock()
	defer d.qrMu.Unlock()
	if !d.qrFinished {
		return &driver.LoginState{Kind: driver.LoginStateUnknown}, nil
	}
	if d.qrErr != nil {
		return &driver.LoginState{Kind: driver.LoginStateInvalidCredentials}, d.qrErr
	}
	return &driver.LoginState{Kind: driver.LoginStateSuccess}, nil
}

func toLoginState(o *protocol.LoginOutcome) *driver.LoginState {
	kind := driver.LoginStateUnknown
	switch o.Kind {
	case protocol.LoginSuccess:
		kind = driver.LoginStateSuccess
	case protocol.LoginNeedCaptcha:
		kind = driver.LoginStateNeedCaptcha
	case protocol.LoginNeedDeviceLockApproval:
		kind = driver.LoginStateNeedDeviceLockApproval
	case protocol.LoginNeedSMSCode:
		kind = driver.LoginStateNeedSMSCode
	case protocol.LoginAccountFrozen:
		kind = driver.LoginStateAccountFrozen
	case protocol.LoginTooManySMSRequests:
		kind = driver.LoginStateTooManySMSRequests
	case protocol.LoginInvalidCredentials:
		kind = driver.LoginStateInvalidCredentials
	}
	return &driver.LoginState{Kind: kind, Token: o.Token, CaptchaImage: o.CaptchaImage}
}

func (d *Driver) PasswordLogin(ctx context.Context, username, password string) (*driver.LoginState, error) {
	o, err := protocol.PasswordLogin(ctx, d.sess, username, password)
	if err != nil {
		return nil, err
	}
	return d.finishOrReturn(ctx, o)
}

func (d *Driver) SubmitCaptcha(ctx context.Context, token, answer string) (*driver.LoginState, error) {
	o, err := protocol.SubmitCaptcha(ctx, d.sess, token, answer)
	if err != nil {
		return nil, err
	}
	return d.finishOrReturn(ctx, o)
}

func (d *Driver) DeviceLockLogin(ctx context.Context, token string) (*driver.LoginState, error) {
	o, err := protocol.PollDeviceLockApproval(ctx, d.sess, token)
	if err != nil {
		return nil, err
	}
	return d.finishOrReturn(ctx, o)
}

func (d *Driver) RequestSMSCode(ctx context.Context, token string) (*driver.LoginState, error) {
	o, err := protocol.RequestSMSCode(ctx, d.sess, token)
	if err != nil {
		return nil, err
	}
	return d.finishOrReturn(ctx, o)
}

func (d *Driver) SubmitSMSCode(ctx context.Context, token, code string) (*driver.LoginState, error) {
	o, err := protocol.SubmitSMSCode(ctx, d.sess, token, code)
	if err != nil {
		return nil, err
	}
	return d.finishOrReturn(ctx, o)
}

// finishOrReturn completes the login-info/server-info fetch once the
// password flow reports success, so the session is immediately usable.
func (d *Driver) finishOrReturn(ctx context.Context, o *protocol.LoginOutcome) (*driver.LoginState, error) {
	if o.Kind != protocol.LoginSuccess {
		return toLoginState(o), nil
	}
	if _, err := protocol.FinishLogin(ctx, d.sess); err != nil {
		return nil, fmt.Errorf("zalodriver: finish login: %w", err)
	}
	return toLoginState(o), nil
}

func (d *Driver) Reconnect(ctx context.Context, cred driver.ReconnectCredential) error {
	switch {
	case cred.Token != nil:
		sess, err := protocol.ResumeFromToken(cred.Token)
		if err != nil {
			return err
		}
		*d.sess = *sess
		return nil
	case cred.Password != nil:
		_, err := d.PasswordLogin(ctx, cred.Password.UIN, cred.Password.Password)
		return err
	default:
		return fmt.Errorf("zalodriver: reconnect: empty credential")
	}
}

func (d *Driver) GenToken(ctx context.Context) ([]byte, error) {
	return protocol.GenToken(d.sess)
}

// --- Info ---

func (d *Driver) GetAccountInfo(ctx context.Context) (*driver.AccountInfo, error) {
	return &driver.AccountInfo{UIN: d.sess.UID}, nil
}

func (d *Driver) GetFriendList(ctx context.Context) ([]driver.FriendInfo, error) {
	friends, err := protocol.FetchFriends(ctx, d.sess)
	if err != nil {
		return nil, err
	}
	out := make([]driver.FriendInfo, len(friends))
	for i, f := range friends {
		out[i] = driver.FriendInfo{UIN: f.UserID, Nickname: f.DisplayName}
	}
	return out, nil
}

func (d *Driver) GetStrangerInfo(ctx context.Context, uin string) (*driver.FriendInfo, error) {
	friends, err := d.GetFriendList(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range friends {
		if f.UIN == uin {
			return &f, nil
		}
	}
	return &driver.FriendInfo{UIN: uin}, nil
}

func (d *Driver) GetGroupInfo(ctx context.Context, groupID string) (*driver.GroupInfo, error) {
	groups, err := d.GetGroupList(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.GroupID == groupID {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("zalodriver: group %s not found", groupID)
}

func (d *Driver) GetGroupList(ctx context.Context) ([]driver.GroupInfo, error) {
	groups, err := protocol.FetchGroups(ctx, d.sess)
	if err != nil {
		return nil, err
	}
	out := make([]driver.GroupInfo, len(groups))
	for i, g := range groups {
		out[i] = driver.GroupInfo{GroupID: g.GroupID, GroupName: g.Name, MemberCount: g.TotalMember}
	}
	return out, nil
}

func (d *Driver) GetGroupMemberInfo(ctx context.Context, groupID, uin string) (*driver.GroupMemberInfo, error) {
	members, err := d.GetGroupMemberList(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UIN == uin {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("zalodriver: member %s not found in group %s", uin, groupID)
}

// GetGroupMemberList is not backed by a dedicated roster endpoint in the
// wrapped protocol package (FetchGroups only returns group-level summary
// data); it degrades to an empty roster rather than guessing at a member
// list endpoint that was never retrieved for this driver.
func (d *Driver) GetGroupMemberList(ctx context.Context, groupID string) ([]driver.GroupMemberInfo, error) {
	return nil, nil
}

func (d *Driver) GetGroupAdminList(ctx context.Context, groupID string) ([]string, error) {
	return nil, nil
}

// --- Messaging ---

func (d *Driver) SendFriendMessage(ctx context.Context, uin string, elements []driver.Element) (*driver.MessageReceipt, error) {
	msgID, err := protocol.SendMessage(ctx, d.sess, uin, protocol.ThreadTypeUser, elementsToText(elements))
	if err != nil {
		return nil, err
	}
	return &driver.MessageReceipt{SenderID: d.sess.UID, Time: time.Now().UnixMilli(), Seqs: []int64{parseInt64(msgID)}}, nil
}

func (d *Driver) SendGroupMessage(ctx context.Context, groupID string, elements []driver.Element) (*driver.MessageReceipt, error) {
	msgID, err := protocol.SendMessage(ctx, d.sess, groupID, protocol.ThreadTypeGroup, elementsToText(elements))
	if err != nil {
		return nil, err
	}
	return &driver.MessageReceipt{SenderID: d.sess.UID, Time: time.Now().UnixMilli(), Seqs: []int64{parseInt64(msgID)}, GroupID: groupID}, nil
}

// elementsToText renders a native element list to the plain text the
// wrapped protocol's SendMessage accepts. Image/video elements have
// already been uploaded by the time they reach here (chain.Decode resolves
// them before calling a Driver's send methods), so URI is a hosted URL,
// not a local path — folding it into the text is the best this protocol
// layer can do until it gains a rich-attachment send call of its own.
func elementsToText(elements []driver.Element) string {
	var b strings.Builder
	for _, e := range elements {
		switch e.Type {
		case "text":
			b.WriteString(e.Text)
		case "image", "video":
			b.WriteString(e.URI)
		case "face":
			b.WriteString(":" + e.ID + ":")
		}
	}
	return b.String()
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func (d *Driver) RecallFriendMessage(ctx context.Context, r driver.MessageReceipt) error {
	if len(r.Seqs) == 0 {
		return fmt.Errorf("zalodriver: recall: empty receipt")
	}
	return protocol.RecallMessage(ctx, d.sess, r.SenderID, protocol.ThreadTypeUser, strconv.FormatInt(r.Seqs[0], 10), strconv.FormatInt(r.Time, 10))
}

func (d *Driver) RecallGroupMessage(ctx context.Context, r driver.MessageReceipt) error {
	if len(r.Seqs) == 0 {
		return fmt.Errorf("zalodriver: recall: empty receipt")
	}
	return protocol.RecallMessage(ctx, d.sess, r.GroupID, protocol.ThreadTypeGroup, strconv.FormatInt(r.Seqs[0], 10), strconv.FormatInt(r.Time, 10))
}

// SendLike is not exposed by a poke/like endpoint anywhere in the wrapped
// protocol package; no component of the Zalo personal surface retrieved
// for this driver reaches it.
func (d *Driver) SendLike(ctx context.Context, uin string, times int32) error {
	return fmt.Errorf("zalodriver: send_like is not supported by this driver")
}

// --- Group administration ---

func (d *Driver) GroupKick(ctx context.Context, groupID, uin string, reject bool) error {
	return protocol.KickMember(ctx, d.sess, groupID, uin, reject)
}

func (d *Driver) GroupMute(ctx context.Context, groupID, uin string, durationSeconds int64) error {
	return protocol.MuteMember(ctx, d.sess, groupID, uin, durationSeconds)
}

func (d *Driver) GroupMuteAll(ctx context.Context, groupID string, enable bool) error {
	return protocol.MuteAll(ctx, d.sess, groupID, enable)
}

func (d *Driver) GroupSetAdmin(ctx context.Context, groupID, uin string, enable bool) error {
	return protocol.SetAdmin(ctx, d.sess, groupID, uin, enable)
}

func (d *Driver) EditGroupMemberCard(ctx context.Context, groupID, uin, card string) error {
	return protocol.SetMemberCard(ctx, d.sess, groupID, uin, card)
}

func (d *Driver) UpdateGroupName(ctx context.Context, groupID, name string) error {
	return protocol.UpdateGroupName(ctx, d.sess, groupID, name)
}

func (d *Driver) GroupQuit(ctx context.Context, groupID string) error {
	return protocol.QuitGroup(ctx, d.sess, groupID)
}

// GroupEditSpecialTitle passes uin straight through as the member id. It
// must never be called with groupID in place of uin — that was the one
// documented bug this driver's handlers are required to avoid.
func (d *Driver) GroupEditSpecialTitle(ctx context.Context, groupID, uin, title string) error {
	return protocol.SetSpecialTitle(ctx, d.sess, groupID, uin, title)
}

// --- Uploads ---

func (d *Driver) UploadGroupImage(ctx context.Context, groupID string, r io.Reader) (string, error) {
	res, err := protocol.UploadGroupImage(ctx, d.sess, groupID, r)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (d *Driver) UploadFriendImage(ctx context.Context, uin string, r io.Reader) (string, error) {
	res, err := protocol.UploadFriendImage(ctx, d.sess, uin, r)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

func (d *Driver) UploadGroupShortVideo(ctx context.Context, groupID string, r io.Reader) (string, error) {
	res, err := protocol.UploadGroupShortVideo(ctx, d.sess, groupID, r)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// --- Lifecycle ---

func (d *Driver) Start(ctx context.Context) error {
	d.status.Store(int32(driver.StatusConnecting))
	d.wg.Add(1)
	go d.run(ctx)
	return nil
}

func (d *Driver) Stop() error {
	d.stop.Stop()
	d.mu.Lock()
	if d.listener != nil {
		d.listener.Stop()
	}
	d.mu.Unlock()
	d.wg.Wait()
	d.status.Store(int32(driver.StatusOffline))
	close(d.events)
	return nil
}

// run supervises the underlying Zalo listener, reconnecting with a fixed
// pause whenever it drops, until Stop fires.
func (d *Driver) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop.Subscribe():
			return
		default:
		}

		ln, err := protocol.NewListener(d.sess)
		if err != nil {
			d.log.Error("zalodriver: build listener", "error", err)
			if !d.sleep(reconnectPause) {
				return
			}
			continue
		}
		d.mu.Lock()
		d.listener = ln
		d.mu.Unlock()

		if err := ln.Start(ctx); err != nil {
			d.log.Error("zalodriver: start listener", "error", err)
			if !d.sleep(reconnectPause) {
				return
			}
			continue
		}
		d.status.Store(int32(driver.StatusOnline))

		d.pump(ln)

		d.status.Store(int32(driver.StatusConnecting))
		if !d.sleep(reconnectPause) {
			return
		}
	}
}

// pump forwards one listener generation's messages into the driver event
// channel until it disconnects or closes.
func (d *Driver) pump(ln *protocol.Listener) {
	for {
		select {
		case <-d.stop.Subscribe():
			return
		case msg, ok := <-ln.Messages():
			if !ok {
				return
			}
			d.emit(msg)
		case <-ln.Disconnected():
			return
		case <-ln.Closed():
			return
		case err := <-ln.Errors():
			d.log.Warn("zalodriver: listener error", "error", err)
		}
	}
}

func (d *Driver) emit(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.UserMessage:
		elements := []driver.Element{{Type: "text", Text: m.Data.Content.Text()}}
		select {
		case d.events <- driver.Event{PrivateMessage: &driver.PrivateMessageEvent{
			UserID:   m.ThreadID(),
			Time:     time.Now().UnixMilli(),
			Elements: elements,
			Receipt:  driver.MessageReceipt{SenderID: m.Data.UIDFrom, Time: time.Now().UnixMilli()},
		}}:
		default:
			d.log.Warn("zalodriver: event channel full, dropping private message")
		}
	case protocol.GroupMessage:
		elements := []driver.Element{{Type: "text", Text: m.Data.Content.Text()}}
		select {
		case d.events <- driver.Event{GroupMessage: &driver.GroupMessageEvent{
			GroupID:  m.ThreadID(),
			UserID:   m.Data.UIDFrom,
			Time:     time.Now().UnixMilli(),
			Elements: elements,
			Receipt:  driver.MessageReceipt{SenderID: m.Data.UIDFrom, Time: time.Now().UnixMilli(), GroupID: m.ThreadID()},
		}}:
		default:
			d.log.Warn("zalodriver: event channel full, dropping group message")
		}
	}
}

func (d *Driver) sleep(dur time.Duration) bool {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.stop.Subscribe():
		return false
	}
}
