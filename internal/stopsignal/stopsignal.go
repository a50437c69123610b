// Package stopsignal provides a multi-subscriber broadcast-once stop signal.
// It generalizes the sync.Once-guarded stop channel idiom (see
// Channel.Stop() in the Zalo personal channel this gateway's plugin
// connection and bot supervisors are grounded on) to the case where more
// than one goroutine needs to select on the same stop event.
package stopsignal

import "sync"

// Broadcaster is a stop signal with any number of subscribers. Firing it
// closes every channel handed out by Subscribe, waking every select
// immediately. Firing is idempotent.
type Broadcaster struct {
	mu     sync.Mutex
	fired  bool
	ch     chan struct{}
}

// New returns a ready Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{ch: make(chan struct{})}
}

// Subscribe returns a channel that is closed when Stop is called. All
// subscribers share the same underlying channel — closing wakes everyone.
func (b *Broadcaster) Subscribe() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch
}

// Stop fires the broadcast. Safe to call multiple times or concurrently;
// only the first call has effect.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fired {
		return
	}
	b.fired = true
	close(b.ch)
}

// Fired reports whether Stop has already been called.
func (b *Broadcaster) Fired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fired
}
