// Package session runs the two login state machines (QR and password)
// that precede a Bot's existence, and promotes a successfully
// authenticated driver into the bot registry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/zalogw/gateway/internal/bot"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/gwerr"
	"github.com/zalogw/gateway/internal/registry"
)

// Protocol names one supported IM backend. Only "zalo_personal" is wired
// today; the PendingLogin key carries it anyway so a second backend can
// join the table without a key-shape change.
type Protocol string

const ZaloPersonal Protocol = "zalo_personal"

// PluginLoader resolves a uin's configured plugins from disk at
// promotion time.
type PluginLoader func(uin string) ([]bot.PluginSpec, error)

// Factory constructs a fresh, unauthenticated driver.Driver ready for a
// login flow.
type Factory func(protocol Protocol) (driver.Driver, error)

const (
	reconnectInterval    = 10 * time.Second
	reconnectMaxAttempts = 10
)

// QRState is one of the terminal or in-progress states QueryQR returns.
type QRState string

const (
	QRImageFetch          QRState = "image_fetch"
	QRWaitingForScan       QRState = "waiting_for_scan"
	QRWaitingForConfirm    QRState = "waiting_for_confirm"
	QRTimeout              QRState = "timeout"
	QRConfirmed            QRState = "confirmed"
	QRCanceled             QRState = "canceled"
)

type pendingKey struct {
	uin      string
	protocol Protocol
}

type pendingLogin struct {
	driver driver.Driver
	cancel context.CancelFunc
	token  string // the most recent LoginState.Token, for a password flow's next step
}

// Manager runs both login state machines over a shared PendingLogin
// table and promotes successful logins into reg.
type Manager struct {
	reg     *registry.Registry
	factory Factory
	plugins PluginLoader

	mu      sync.Mutex
	pending map[pendingKey]*pendingLogin
	// bySig maps a QR flow's signature back to its pendingKey, so QueryQR
	// can be called with just the sig. A QR flow's pendingKey carries the
	// sig itself in its uin field, since the uin is unknown until login
	// completes.
	bySig map[string]pendingKey
}

func NewManager(reg *registry.Registry, factory Factory, plugins PluginLoader) *Manager {
	return &Manager{
		reg:     reg,
		factory: factory,
		plugins: plugins,
		pending: make(map[pendingKey]*pendingLogin),
		bySig:   make(map[string]pendingKey),
	}
}

// CreateQR starts a QR login flow for protocol p, returning its
// signature (an opaque handle for Query) and the QR image bytes.
func (m *Manager) CreateQR(ctx context.Context, p Protocol) (sig string, qrPNG []byte, err error) {
	d, err := m.factory(p)
	if err != nil {
		return "", nil, gwerr.New(gwerr.DriverError, err)
	}

	flowCtx, cancel := context.WithCancel(context.Background())
	png, _, err := d.FetchQRCode(flowCtx)
	if err != nil {
		cancel()
		return "", nil, gwerr.New(gwerr.DriverError, err)
	}

	sig = randomSig()
	key := pendingKey{uin: sig, protocol: p}
	m.mu.Lock()
	m.pending[key] = &pendingLogin{driver: d, cancel: cancel}
	m.bySig[sig] = key
	m.mu.Unlock()

	return sig, png, nil
}

// QueryQR polls a QR flow previously started by CreateQR.
func (m *Manager) QueryQR(ctx context.Context, sig string) (QRState, error) {
	m.mu.Lock()
	key, ok := m.bySig[sig]
	var pl *pendingLogin
	if ok {
		pl = m.pending[key]
	}
	m.mu.Unlock()
	if !ok || pl == nil {
		return "", gwerr.New(gwerr.ClientNotFound, nil)
	}

	state, err := pl.driver.QueryQRCodeResult(ctx, sig)
	if err != nil {
		m.dropPending(key, sig)
		return QRTimeout, gwerr.New(gwerr.DriverError, err)
	}

	switch state.Kind {
	case driver.LoginStateUnknown:
		return QRWaitingForScan, nil
	case driver.LoginStateNeedDeviceLockApproval:
		next, err := pl.driver.DeviceLockLogin(ctx, state.Token)
		if err != nil {
			m.dropPending(key, sig)
			return QRTimeout, gwerr.New(gwerr.DriverError, err)
		}
		if next.Kind == driver.LoginStateSuccess {
			m.dropPending(key, sig)
			token, err := pl.driver.GenToken(ctx)
			if err != nil {
				return QRTimeout, gwerr.New(gwerr.DriverError, err)
			}
			if err := m.promote(ctx, pl.driver, driver.ReconnectCredential{Token: token}); err != nil {
				return QRTimeout, err
			}
			return QRConfirmed, nil
		}
		return QRWaitingForConfirm, nil
	case driver.LoginStateSuccess:
		m.dropPending(key, sig)
		token, err := pl.driver.GenToken(ctx)
		if err != nil {
			return QRTimeout, gwerr.New(gwerr.DriverError, err)
		}
		if err := m.promote(ctx, pl.driver, driver.ReconnectCredential{Token: token}); err != nil {
			return QRTimeout, err
		}
		return QRConfirmed, nil
	default:
		m.dropPending(key, sig)
		return QRTimeout, nil
	}
}

// Login attempts a password login. On DeviceLockLogin it chains into the
// device-lock wait automatically; on Success it promotes immediately;
// otherwise it stores a PendingLogin keyed by (uin, protocol) for the
// caller to drive via SubmitTicket/RequestSMS/SubmitSMS.
func (m *Manager) Login(ctx context.Context, p Protocol, uin, password string) (*driver.LoginState, error) {
	d, err := m.factory(p)
	if err != nil {
		return nil, gwerr.New(gwerr.DriverError, err)
	}

	state, err := d.PasswordLogin(ctx, uin, password)
	if err != nil {
		return nil, gwerr.New(gwerr.DriverError, err)
	}

	return m.advancePassword(ctx, p, uin, d, state)
}

func (m *Manager) SubmitTicket(ctx context.Context, p Protocol, uin, ticket string) (*driver.LoginState, error) {
	d, token, err := m.takePending(p, uin)
	if err != nil {
		return nil, err
	}
	state, err := d.SubmitCaptcha(ctx, token, ticket)
	if err != nil {
		return nil, gwerr.New(gwerr.DriverError, err)
	}
	return m.advancePassword(ctx, p, uin, d, state)
}

func (m *Manager) RequestSMS(ctx context.Context, p Protocol, uin string) (*driver.LoginState, error) {
	d, token, err := m.takePending(p, uin)
	if err != nil {
		return nil, err
	}
	state, err := d.RequestSMSCode(ctx, token)
	if err != nil {
		return nil, gwerr.New(gwerr.DriverError, err)
	}
	return m.advancePassword(ctx, p, uin, d, state)
}

func (m *Manager) SubmitSMS(ctx context.Context, p Protocol, uin, code string) (*driver.LoginState, error) {
	d, token, err := m.takePending(p, uin)
	if err != nil {
		return nil, err
	}
	state, err := d.SubmitSMSCode(ctx, token, code)
	if err != nil {
		return nil, gwerr.New(gwerr.DriverError, err)
	}
	return m.advancePassword(ctx, p, uin, d, state)
}

// takePending looks up and restores the driver + token for a password
// flow step, without removing the table entry (overwritten by the
// caller's next advancePassword call).
func (m *Manager) takePending(p Protocol, uin string) (driver.Driver, string, error) {
	m.mu.Lock()
	pl, ok := m.pending[pendingKey{uin: uin, protocol: p}]
	m.mu.Unlock()
	if !ok {
		return nil, "", gwerr.New(gwerr.ClientNotFound, nil)
	}
	return pl.driver, pl.token, nil
}

// advancePassword applies the DeviceLockLogin chaining rule uniformly
// across Login/SubmitTicket/RequestSMS/SubmitSMS: on DeviceLockLogin it
// immediately polls device-lock approval; on Success it promotes; on
// anything else it stores/overwrites the PendingLogin for the next step.
func (m *Manager) advancePassword(ctx context.Context, p Protocol, uin string, d driver.Driver, state *driver.LoginState) (*driver.LoginState, error) {
	if state.Kind == driver.LoginStateNeedDeviceLockApproval {
		next, err := d.DeviceLockLogin(ctx, state.Token)
		if err != nil {
			return nil, gwerr.New(gwerr.DriverError, err)
		}
		state = next
	}

	key := pendingKey{uin: uin, protocol: p}
	if state.Kind == driver.LoginStateSuccess {
		m.mu.Lock()
		if prior, ok := m.pending[key]; ok {
			prior.cancel()
			delete(m.pending, key)
		}
		m.mu.Unlock()

		var cred driver.ReconnectCredential
		cred.Password = &driver.PasswordCredential{UIN: uin}
		if err := m.promote(ctx, d, cred); err != nil {
			return nil, err
		}
		return state, nil
	}

	_, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if prior, ok := m.pending[key]; ok {
		prior.cancel()
	}
	m.pending[key] = &pendingLogin{driver: d, cancel: cancel, token: state.Token}
	m.mu.Unlock()

	return state, nil
}

func (m *Manager) dropPending(key pendingKey, sig string) {
	m.mu.Lock()
	if pl, ok := m.pending[key]; ok {
		pl.cancel()
		delete(m.pending, key)
	}
	delete(m.bySig, sig)
	m.mu.Unlock()
}

// promote runs the promotion sequence: load plugins, build a Bot, install
// it into the registry (stopping any prior Bot for the same uin), start
// its plugin supervisors and event loop, and spawn the auto-reconnect
// watcher.
func (m *Manager) promote(ctx context.Context, d driver.Driver, cred driver.ReconnectCredential) error {
	if err := d.Start(ctx); err != nil {
		return gwerr.New(gwerr.DriverError, err)
	}

	plugins, err := m.plugins(d.UIN())
	if err != nil {
		slog.Warn("session: loading plugins failed, starting with none", "uin", d.UIN(), "error", err)
		plugins = nil
	}

	b := bot.New(d, plugins)
	m.reg.Insert(b)
	b.StartPlugins(ctx)
	b.StartEventLoop(ctx)

	go m.watchReconnect(d, cred)
	return nil
}

// watchReconnect waits for the driver's connection to end, then retries
// Reconnect up to reconnectMaxAttempts times, reconnectInterval apart.
func (m *Manager) watchReconnect(d driver.Driver, cred driver.ReconnectCredential) {
	for attempt := 0; attempt < reconnectMaxAttempts; attempt++ {
		if d.Status() != driver.StatusOffline {
			time.Sleep(reconnectInterval)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), reconnectInterval)
		err := d.Reconnect(ctx, cred)
		cancel()
		if err == nil {
			return
		}
		slog.Warn("session: auto-reconnect attempt failed", "uin", d.UIN(), "attempt", attempt, "error", err)
		time.Sleep(reconnectInterval)
	}
}

func randomSig() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
