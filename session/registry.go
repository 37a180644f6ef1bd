package session

import (
	"sync"
	"time"

	"github.com/jrsteele09/swiftchat-web/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Factory builds the controller for a browser context seen for the first time
type Factory func(browserID string) *Controller

type registryEntry struct {
	controller *Controller
	lastAccess time.Time
}

// Registry maps browser context IDs to controllers. Idle controllers are
// dropped by a background loop and rebuilt from storage on the next request.
type Registry struct {
	factory Factory
	ttl     time.Duration
	onEvict func(browserID string)
	metrics metrics.Recorder

	mu      sync.RWMutex
	entries map[string]*registryEntry

	stopCh   chan struct{}
	stopOnce sync.Once
}

type RegistryOption func(*Registry)

// WithEvictHook is called, outside the registry lock, for every evicted browser context
func WithEvictHook(fn func(browserID string)) RegistryOption {
	return func(r *Registry) {
		r.onEvict = fn
	}
}

func WithRegistryRecorder(m metrics.Recorder) RegistryOption {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRegistry starts the cleanup loop, which runs every ttl/2
func NewRegistry(factory Factory, ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	r := &Registry{
		factory: factory,
		ttl:     ttl,
		metrics: metrics.Noop{},
		entries: make(map[string]*registryEntry),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.cleanupLoop()
	return r
}

// Get returns the controller for browserID, creating it on first use
func (r *Registry) Get(browserID string) *Controller {
	now := time.Now()

	r.mu.RLock()
	entry, exists := r.entries[browserID]
	r.mu.RUnlock()

	if exists {
		r.mu.Lock()
		entry.lastAccess = now
		r.mu.Unlock()
		return entry.controller
	}

	r.mu.Lock()
	// Double check
	if entry, exists := r.entries[browserID]; exists {
		entry.lastAccess = now
		r.mu.Unlock()
		return entry.controller
	}

	controller := r.factory(browserID)
	r.entries[browserID] = &registryEntry{controller: controller, lastAccess: now}
	n := len(r.entries)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return controller
}

// Forget drops a browser context immediately
func (r *Registry) Forget(browserID string) {
	r.mu.Lock()
	_, exists := r.entries[browserID]
	delete(r.entries, browserID)
	n := len(r.entries)
	r.mu.Unlock()

	if exists {
		r.metrics.SetActiveSessions(n)
		if r.onEvict != nil {
			r.onEvict(browserID)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

// evictIdle removes entries not accessed within ttl of now
func (r *Registry) evictIdle(now time.Time) int {
	var evicted []string

	r.mu.Lock()
	for id, entry := range r.entries {
		if now.Sub(entry.lastAccess) > r.ttl {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	n := len(r.entries)
	r.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}

	r.metrics.SetActiveSessions(n)
	for _, id := range evicted {
		if r.onEvict != nil {
			r.onEvict(id)
		}
	}
	log.Debug().Int("evicted", len(evicted)).Int("active", n).Msg("session: evicted idle browser contexts")
	return len(evicted)
}
