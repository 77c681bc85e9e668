package live

import (
	"log"
	"sync"
)

// Conn is the slice of a websocket connection the registry needs. The
// concrete type is gorilla's *websocket.Conn.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry owns the set of live push connections. It is handed by
// reference to both the accept handler and the broadcaster; mutation is
// safe against concurrent broadcast iteration.
type Registry struct {
	mu    sync.Mutex
	conns map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[Conn]struct{})}
}

func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = struct{}{}
}

func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast sends v to every subscriber. A failed send prunes only that
// subscriber; the rest still get the update. Writes happen outside the
// lock on a snapshot, so Add/Remove never block behind slow clients.
func (r *Registry) Broadcast(v any) {
	r.mu.Lock()
	snapshot := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		snapshot = append(snapshot, c)
	}
	r.mu.Unlock()

	for _, c := range snapshot {
		if err := c.WriteJSON(v); err != nil {
			log.Printf("live: dropping subscriber: %v", err)
			r.Remove(c)
			_ = c.Close()
		}
	}
}
