package pluginconn

import "testing"

func TestNextURL_RoundRobinsAndAddsDefaultPort(t *testing.T) {
	c := New("echo", "1", []string{"ws://a", "ws://b:9000"}, nil)

	first, err := c.nextURL()
	if err != nil {
		t.Fatalf("nextURL: %v", err)
	}
	if first != "ws://a:8081" {
		t.Errorf("first = %q, want %q", first, "ws://a:8081")
	}

	second, err := c.nextURL()
	if err != nil {
		t.Fatalf("nextURL: %v", err)
	}
	if second != "ws://b:9000" {
		t.Errorf("second = %q, want %q (explicit port must not be overwritten)", second, "ws://b:9000")
	}

	third, err := c.nextURL()
	if err != nil {
		t.Fatalf("nextURL: %v", err)
	}
	if third != first {
		t.Errorf("third = %q, want wraparound to %q", third, first)
	}
}

func TestNextURL_NoURLsIsError(t *testing.T) {
	c := New("echo", "1", nil, nil)
	if _, err := c.nextURL(); err == nil {
		t.Error("expected an error for a plugin with no configured urls")
	}
}

func TestWithDefaultPort_LeavesExplicitPortAlone(t *testing.T) {
	got, err := withDefaultPort("ws://host:1234/path")
	if err != nil {
		t.Fatalf("withDefaultPort: %v", err)
	}
	if got != "ws://host:1234/path" {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestSend_DropsSilentlyWhenOutboxFull(t *testing.T) {
	c := New("echo", "1", []string{"ws://a"}, nil)
	for i := 0; i < broadcastBuffer; i++ {
		c.Send([]byte("x"))
	}
	// One more Send past capacity must not block.
	done := make(chan struct{})
	go func() {
		c.Send([]byte("overflow"))
		close(done)
	}()
	<-done
	if len(c.outbox) != broadcastBuffer {
		t.Errorf("outbox len = %d, want %d (overflow frame should have been dropped)", len(c.outbox), broadcastBuffer)
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	c := New("echo", "1", []string{"ws://a"}, nil)
	c.Stop()
	c.Stop()
	if !c.stop.Fired() {
		t.Error("stop signal did not fire")
	}
}
