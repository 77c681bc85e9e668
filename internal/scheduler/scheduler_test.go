package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/carbonintel/market-scout/internal/provider"
)

type fakeRefresher struct {
	mu       sync.Mutex
	topics   []string
	inserted map[string]int
}

func (f *fakeRefresher) Refresh(_ context.Context, topic string, limit int) ([]provider.Item, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	n := f.inserted[topic]
	items := make([]provider.Item, n)
	return items, n
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Notify(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
}

func TestRunOnceVisitsEveryTopicAndNotifies(t *testing.T) {
	ref := &fakeRefresher{inserted: map[string]int{"PFAS": 2, "EDLC": 0}}
	not := &fakeNotifier{}

	s, err := New("@daily", []string{"PFAS", "EDLC"}, ref, not)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.RunOnce()

	if len(ref.topics) != 2 {
		t.Fatalf("refreshed %d topics, want 2", len(ref.topics))
	}
	if len(not.msgs) != 1 {
		t.Fatalf("got %d notifications, want 1 (only topics with new rows)", len(not.msgs))
	}
	if !strings.Contains(not.msgs[0], "PFAS") {
		t.Fatalf("notification should name the topic: %q", not.msgs[0])
	}
}

func TestRunOnceWithoutNewRowsStaysQuiet(t *testing.T) {
	ref := &fakeRefresher{inserted: map[string]int{}}
	not := &fakeNotifier{}

	s, err := New("@daily", []string{"PFAS"}, ref, not)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.RunOnce()
	if len(not.msgs) != 0 {
		t.Fatalf("no new rows should mean no notifications, got %v", not.msgs)
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", nil, &fakeRefresher{inserted: map[string]int{}}, nil); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
