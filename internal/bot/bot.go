// Package bot ties one account's driver, its set of plugin connections,
// and its event fan-out loop together into a single supervised unit.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/internal/event"
	"github.com/zalogw/gateway/internal/pluginconn"
	"github.com/zalogw/gateway/internal/stopsignal"
	"github.com/zalogw/gateway/internal/tracing"
)

// PluginSpec names one configured plugin endpoint.
type PluginSpec struct {
	Name string
	URLs []string
}

// Bot owns one driver.Driver and fans its events out to every configured
// plugin connection, in the order plugins were configured.
type Bot struct {
	UIN     string
	driver  driver.Driver
	conns   []*pluginconn.Connection
	translator *event.Translator
	stop    *stopsignal.Broadcaster
	eventSeq atomic.Uint64
}

// New constructs a Bot for d with one PluginConnection per entry in
// plugins (names deduplicated by the caller — pluginstore is responsible
// for that before it reaches here).
func New(d driver.Driver, plugins []PluginSpec) *Bot {
	uin := d.UIN()
	b := &Bot{
		UIN:        uin,
		driver:     d,
		translator: event.NewTranslator(parseInt64(uin)),
		stop:       stopsignal.New(),
	}
	for _, p := range plugins {
		b.conns = append(b.conns, pluginconn.New(p.Name, uin, p.URLs, d))
	}
	return b
}

// StartPlugins spawns one supervisor goroutine per configured plugin
// connection.
func (b *Bot) StartPlugins(ctx context.Context) {
	for _, c := range b.conns {
		go c.Run(ctx)
	}
}

// StartEventLoop spawns the single goroutine that drains the driver's
// event channel and fans each event out to every plugin connection, in
// the order plugins were configured, preserving the driver's own
// per-channel event ordering.
func (b *Bot) StartEventLoop(ctx context.Context) {
	go func() {
		events := b.driver.Events()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				b.handleEvent(ctx, ev)
			case <-b.stop.Subscribe():
				return
			}
		}
	}()
}

func (b *Bot) handleEvent(ctx context.Context, ev driver.Event) {
	spanCtx, span := tracing.StartEventSpan(ctx, b.UIN, 0)
	defer span.End()

	frame, ok := b.translator.Translate(spanCtx, b.driver, ev)
	if !ok {
		return
	}
	frame.Echo = strconv.FormatUint(b.eventSeq.Add(1), 10)
	data := frame.Encode()
	for _, c := range b.conns {
		c.Send(data)
	}
}

// Stop shuts the bot down: stops every plugin connection, tells the
// driver to disconnect, and fires the bot's own stop signal. Idempotent.
func (b *Bot) Stop() {
	if b.stop.Fired() {
		return
	}
	b.stop.Stop()
	for _, c := range b.conns {
		c.Stop()
	}
	if err := b.driver.Stop(); err != nil {
		slog.Warn("bot: driver stop failed", "uin", b.UIN, "error", err)
	}
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
