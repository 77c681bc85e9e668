package live

import (
	"context"
	"log"
	"time"

	"github.com/carbonintel/market-scout/internal/provider"
)

// Source yields the freshest live item for a topic, bypassing the cache
// gate. Implemented by scout.Service.
type Source interface {
	LatestLive(ctx context.Context, topic string) (provider.Item, bool)
}

// Broadcaster loops over a fixed topic list, live-fetching one item per
// topic and fanning it out to every subscriber, then sleeps for the
// configured interval. Explicitly supervised: Start launches the loop,
// Stop requests shutdown and waits for the in-flight pass to finish.
type Broadcaster struct {
	topics   []string
	interval time.Duration
	source   Source
	registry *Registry

	stop chan struct{}
	done chan struct{}
}

func NewBroadcaster(topics []string, interval time.Duration, source Source, registry *Registry) *Broadcaster {
	return &Broadcaster{
		topics:   topics,
		interval: interval,
		source:   source,
		registry: registry,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (b *Broadcaster) Start() {
	go b.run()
}

// Stop signals shutdown and blocks until the loop exits. In-flight fetches
// finish their pass; nothing is retried.
func (b *Broadcaster) Stop() {
	close(b.stop)
	<-b.done
}

func (b *Broadcaster) run() {
	defer close(b.done)
	log.Printf("live: broadcaster started, %d topics every %s", len(b.topics), b.interval)

	for {
		b.Pass(context.Background())

		select {
		case <-time.After(b.interval):
		case <-b.stop:
			log.Println("live: broadcaster stopped")
			return
		}
	}
}

// Pass runs one sweep over all topics. A topic with no live item is
// skipped; a fetch failure on one topic never aborts the rest.
func (b *Broadcaster) Pass(ctx context.Context) {
	for _, topic := range b.topics {
		it, ok := b.source.LatestLive(ctx, topic)
		if !ok {
			continue
		}
		b.registry.Broadcast(it)
	}
}
