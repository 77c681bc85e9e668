package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carbonintel/market-scout/internal/provider"
)

// Refresher is the fetch, enrich, persist path of the aggregation service.
type Refresher interface {
	Refresh(ctx context.Context, topic string, limit int) ([]provider.Item, int)
}

// Notifier receives a message per refresh pass that inserted new rows.
type Notifier interface {
	Notify(text string)
}

// Scheduler runs the full-topic-list refresh on a cron spec, independent
// of the broadcaster's ten-minute push loop.
type Scheduler struct {
	cron     *cron.Cron
	topics   []string
	service  Refresher
	notifier Notifier
}

func New(spec string, topics []string, service Refresher, notifier Notifier) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		topics:   topics,
		service:  service,
		notifier: notifier,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// Delay the first pass so it never contends with the first page load.
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce is the manual-trigger entry used by cmd/collect.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start refresh job...")

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		totalNew   int
		newByTopic = make(map[string]int)
	)

	for _, t := range s.topics {
		topic := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, inserted := s.service.Refresh(context.Background(), topic, provider.DefaultLimit)
			if len(items) == 0 {
				log.Printf("refresh %q got 0 items", topic)
				return
			}
			if inserted == 0 {
				return
			}
			mu.Lock()
			totalNew += inserted
			newByTopic[topic] = inserted
			mu.Unlock()
		}()
	}
	wg.Wait()

	if totalNew > 0 && s.notifier != nil {
		for topic, n := range newByTopic {
			s.notifier.Notify(fmt.Sprintf("New updates: %d fresh items for %s", n, topic))
		}
	}
	log.Printf("refresh job done, %d new items", totalNew)
}
