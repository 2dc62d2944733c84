package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const keepAlivePeriod = 30 * time.Second

var ErrRegistryClosed = errors.New("notification registry closed")

// Conn is one live subscriber connection.
type Conn interface {
	Send(message []byte) error
	Ping() error
	Close() error
}

// Registry tracks live connections per subscriber key ("restaurant:1", "customer:7").
// Lifecycle: NewRegistry, Run, Close.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]map[Conn]struct{}
	closed bool
	period time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]map[Conn]struct{}),
		period: keepAlivePeriod,
	}
}

func (r *Registry) Add(key string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	set, ok := r.conns[key]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[key] = set
	}
	set[conn] = struct{}{}
	return nil
}

func (r *Registry) Remove(key string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(key, conn)
}

func (r *Registry) removeLocked(key string, conn Conn) {
	set, ok := r.conns[key]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.conns, key)
	}
}

// Count returns the number of live connections for key.
func (r *Registry) Count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[key])
}

// Broadcast sends message to every connection under key and returns how many
// received it. Connections that fail are closed and dropped.
func (r *Registry) Broadcast(key string, message []byte) int {
	targets := r.snapshot(key)

	delivered := 0
	var dead []Conn
	for _, conn := range targets {
		if err := conn.Send(message); err != nil {
			dead = append(dead, conn)
			continue
		}
		delivered++
	}
	r.prune(key, dead)
	return delivered
}

func (r *Registry) snapshot(key string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns[key]))
	for conn := range r.conns[key] {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) prune(key string, dead []Conn) {
	if len(dead) == 0 {
		return
	}
	r.mu.Lock()
	for _, conn := range dead {
		r.removeLocked(key, conn)
	}
	r.mu.Unlock()

	for _, conn := range dead {
		conn.Close()
	}
	slog.Debug("[order-svc] pruned dead connections", "subscriber", key, "count", len(dead))
}

// Run pings every connection on a fixed period until ctx is done, then closes the registry.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.keepAlive()
		}
	}
}

func (r *Registry) keepAlive() {
	r.mu.RLock()
	keys := make([]string, 0, len(r.conns))
	for key := range r.conns {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	for _, key := range keys {
		var dead []Conn
		for _, conn := range r.snapshot(key) {
			if err := conn.Ping(); err != nil {
				dead = append(dead, conn)
			}
		}
		r.prune(key, dead)
	}
}

// Close drops and closes every connection. Later Adds fail with ErrRegistryClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	conns := r.conns
	r.conns = make(map[string]map[Conn]struct{})
	r.mu.Unlock()

	for _, set := range conns {
		for conn := range set {
			conn.Close()
		}
	}
}
