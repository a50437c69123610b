// Package registry holds the process-wide set of live bots, keyed by uin.
package registry

import (
	"sync"

	"github.com/zalogw/gateway/internal/bot"
)

// Registry is a concurrent uin → *bot.Bot map. Inserting over an existing
// uin stops and drops the prior Bot first — this is what lets a uin be
// re-added after deletion without a process restart, since nothing here
// remembers that the uin was ever deleted.
type Registry struct {
	mu   sync.Mutex
	bots map[string]*bot.Bot
}

func New() *Registry {
	return &Registry{bots: make(map[string]*bot.Bot)}
}

// Insert installs b under b.UIN, stopping and replacing any prior bot for
// that uin.
func (r *Registry) Insert(b *bot.Bot) {
	r.mu.Lock()
	prior := r.bots[b.UIN]
	r.bots[b.UIN] = b
	r.mu.Unlock()

	if prior != nil {
		prior.Stop()
	}
}

// Get returns the bot for uin, or nil if none is registered.
func (r *Registry) Get(uin string) *bot.Bot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bots[uin]
}

// Remove deletes and stops the bot for uin, if any. Reports whether a bot
// was found.
func (r *Registry) Remove(uin string) bool {
	r.mu.Lock()
	b, ok := r.bots[uin]
	if ok {
		delete(r.bots, uin)
	}
	r.mu.Unlock()

	if ok {
		b.Stop()
	}
	return ok
}

// BotInfo is a point-in-time snapshot of one registered bot.
type BotInfo struct {
	UIN string `json:"uin"`
}

// List snapshots the registry's current membership.
func (r *Registry) List() []BotInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]BotInfo, 0, len(r.bots))
	for uin := range r.bots {
		out = append(out, BotInfo{UIN: uin})
	}
	return out
}
