package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeConn struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeConn) Enqueue(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestHub_PublishReachesJoinedMembers(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Close()

	a, b, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	h.Join(a, "r1")
	h.Join(b, "r1")
	h.Join(other, "r2")

	h.Publish(context.Background(), "r1", "transcript:new", map[string]string{"text": "hi"})

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("room members got %d/%d events, want 1/1", a.count(), b.count())
	}
	if other.count() != 0 {
		t.Fatalf("other room got %d events, want 0", other.count())
	}
}

func TestHub_PublisherReceivesOwnEventWhenJoined(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Close()

	pub := &fakeConn{}
	h.Join(pub, "r1")
	h.Publish(context.Background(), "r1", "alert:new", nil)

	if pub.count() != 1 {
		t.Fatalf("publisher got %d events, want 1", pub.count())
	}
}

func TestHub_PublishEmptyRoomDoesNotBlock(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Close()

	finished := make(chan struct{})
	go func() {
		h.Publish(context.Background(), "empty", "transcript:new", nil)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("publish to empty room blocked")
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	defer h.Close()

	c := &fakeConn{}
	h.Join(c, "r1")
	h.Leave(c)
	h.Publish(context.Background(), "r1", "transcript:new", nil)

	if c.count() != 0 {
		t.Fatalf("left member got %d events, want 0", c.count())
	}
}
