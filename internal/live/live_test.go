package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carbonintel/market-scout/internal/provider"
)

type fakeConn struct {
	mu     sync.Mutex
	got    []any
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.got = append(f.got, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestBroadcastPrunesOnlyFailedSubscriber(t *testing.T) {
	reg := NewRegistry()
	good1 := &fakeConn{}
	bad := &fakeConn{fail: true}
	good2 := &fakeConn{}
	reg.Add(good1)
	reg.Add(bad)
	reg.Add(good2)

	reg.Broadcast(provider.Item{Title: "update"})

	if len(good1.got) != 1 || len(good2.got) != 1 {
		t.Fatalf("healthy subscribers should receive the update: %d, %d", len(good1.got), len(good2.got))
	}
	if reg.Len() != 2 {
		t.Fatalf("registry has %d subscribers, want 2 after pruning", reg.Len())
	}
	if !bad.closed {
		t.Fatalf("failed subscriber connection should be closed")
	}

	// Second broadcast still reaches the survivors.
	reg.Broadcast(provider.Item{Title: "again"})
	if len(good1.got) != 2 || len(good2.got) != 2 {
		t.Fatalf("survivors should keep receiving: %d, %d", len(good1.got), len(good2.got))
	}
}

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{}
	reg.Add(c)
	if reg.Len() != 1 {
		t.Fatalf("Len = %d after Add, want 1", reg.Len())
	}
	reg.Remove(c)
	if reg.Len() != 0 {
		t.Fatalf("Len = %d after Remove, want 0", reg.Len())
	}
	// Removing twice is harmless.
	reg.Remove(c)
}

type fakeSource struct {
	mu     sync.Mutex
	topics []string
}

func (f *fakeSource) LatestLive(_ context.Context, topic string) (provider.Item, bool) {
	f.mu.Lock()
	f.topics = append(f.topics, topic)
	f.mu.Unlock()
	if topic == "dry" {
		return provider.Item{}, false
	}
	return provider.Item{Title: "latest " + topic, Topic: topic}, true
}

func TestBroadcasterPassSkipsDryTopics(t *testing.T) {
	reg := NewRegistry()
	sub := &fakeConn{}
	reg.Add(sub)

	src := &fakeSource{}
	b := NewBroadcaster([]string{"PFAS", "dry", "EDLC"}, time.Hour, src, reg)
	b.Pass(context.Background())

	if len(src.topics) != 3 {
		t.Fatalf("pass should visit every topic, visited %d", len(src.topics))
	}
	if len(sub.got) != 2 {
		t.Fatalf("subscriber received %d pushes, want 2 (dry topic skipped)", len(sub.got))
	}
}

func TestBroadcasterStartStop(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster([]string{"PFAS"}, time.Hour, &fakeSource{}, reg)

	b.Start()
	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcaster did not stop in time")
	}
}
