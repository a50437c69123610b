// Package pluginconn supervises one outbound WebSocket connection per
// bot×plugin pair, reconnecting on any non-stop exit.
package pluginconn

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zalogw/gateway/internal/apidispatch"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/stopsignal"
	"github.com/zalogw/gateway/pkg/wire"
)

const (
	reconnectPause  = 5 * time.Second
	pingInterval    = 5 * time.Second
	defaultPort     = "8081"
	broadcastBuffer = 128
)

// Connection supervises a single plugin endpoint for a single bot. Dial
// target selection is round-robin over URLs; Run blocks until stop is
// signaled, reconnecting with a fixed pause on every other exit path.
type Connection struct {
	name   string
	uin    string
	urls   []string
	urlIdx int
	driver driver.Driver

	stop    *stopsignal.Broadcaster
	outbox  chan []byte
}

// New constructs a supervised connection for plugin name against urls,
// dispatching inbound API frames against d.
func New(name, uin string, urls []string, d driver.Driver) *Connection {
	return &Connection{
		name:   name,
		uin:    uin,
		urls:   urls,
		driver: d,
		stop:   stopsignal.New(),
		outbox: make(chan []byte, broadcastBuffer),
	}
}

// Send enqueues data for the next write. Drops silently on a full
// channel — outbound delivery is best-effort, and the alternative would
// block the bot's event loop on a slow plugin.
func (c *Connection) Send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		slog.Warn("pluginconn: outbound buffer full, dropping frame", "plugin", c.name, "uin", c.uin)
	}
}

// Stop signals the supervisor to exit without reconnecting.
func (c *Connection) Stop() { c.stop.Stop() }

// Run supervises the connection until Stop is called. Intended to run in
// its own goroutine, one per plugin per bot.
func (c *Connection) Run(ctx context.Context) {
	for {
		if c.stop.Fired() {
			return
		}
		if err := c.connectAndServe(ctx); err != nil {
			slog.Warn("pluginconn: connection cycle ended", "plugin", c.name, "uin", c.uin, "error", err)
		}
		if c.stop.Fired() {
			return
		}
		select {
		case <-time.After(reconnectPause):
		case <-c.stop.Subscribe():
			return
		}
	}
}

func (c *Connection) nextURL() (string, error) {
	if len(c.urls) == 0 {
		return "", fmt.Errorf("pluginconn: no urls configured for plugin %q", c.name)
	}
	u := c.urls[c.urlIdx%len(c.urls)]
	c.urlIdx++
	return withDefaultPort(u)
}

func withDefaultPort(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("pluginconn: parse url %q: %w", raw, err)
	}
	if u.Port() == "" {
		u.Host = u.Hostname() + ":" + defaultPort
	}
	return u.String(), nil
}

func (c *Connection) connectAndServe(ctx context.Context) error {
	target, err := c.nextURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("x-self-id", c.uin)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		return fmt.Errorf("pluginconn: dial %s: %w", target, err)
	}
	defer conn.Close()

	slog.Info("pluginconn: connected", "plugin", c.name, "uin", c.uin, "url", target)

	return c.serve(ctx, conn)
}

func (c *Connection) serve(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	inbound := make(chan []byte)
	inboundErr := make(chan error, 1)
	go func() {
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				inboundErr <- err
				return
			}
			if typ == websocket.BinaryMessage {
				inbound <- data
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return err
			}

		case data := <-c.outbox:
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return err
			}

		case data := <-inbound:
			go c.handleFrame(ctx, conn, data)

		case err := <-inboundErr:
			return err

		case <-c.stop.Subscribe():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

// handleFrame decodes an inbound binary message as a request Frame,
// dispatches it against the driver, and writes the response back. Runs
// detached — handler concurrency is unbounded per connection, backpressure
// is left to the driver's own rate limiting.
func (c *Connection) handleFrame(ctx context.Context, conn *websocket.Conn, data []byte) {
	req, err := wire.DecodeFrame(data)
	if err != nil {
		slog.Warn("pluginconn: decode inbound frame failed", "plugin", c.name, "error", err)
		return
	}
	resp := apidispatch.Handle(ctx, c.driver, req)
	c.Send(resp.Encode())
}
