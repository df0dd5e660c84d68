package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// Registry maps execution-context identifiers to their sessions. Sessions
// are created lazily on first use -- an unknown identifier is never an
// error -- and removed once drained.
//
// Workers accumulate messages concurrently, each into its own session, but
// DrainAll replays sessions strictly one at a time: the shared backend's
// record layout is not safe under interleaved writes.
type Registry struct {
	replayer *Replayer
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	order    []string // creation order, drained deterministically
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger attaches a charmbracelet/log Logger to the registry and its
// replayer. When nil the registry operates silently.
func WithLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates a registry whose sessions drain into b.
func NewRegistry(b backend.Backend, opts ...RegistryOption) *Registry {
	r := &Registry{sessions: make(map[string]*Session)}
	for _, opt := range opts {
		opt(r)
	}
	r.replayer = NewReplayer(b, WithReplayLogger(r.logger))
	return r
}

// GetOrCreate returns the session for contextID, creating and registering an
// empty one on first use. An empty contextID maps to DefaultContext.
func (r *Registry) GetOrCreate(contextID string) *Session {
	if contextID == "" {
		contextID = DefaultContext
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[contextID]; ok {
		return s
	}
	s := newSession(contextID)
	r.sessions[contextID] = s
	r.order = append(r.order, contextID)
	return s
}

// Push appends msg to the session owned by contextID, creating the session
// if needed. Safe for concurrent use by multiple workers as long as each
// contextID has a single producer.
func (r *Registry) Push(contextID string, msg lifecycle.Message) {
	r.GetOrCreate(contextID).Push(msg)
}

// Len returns the number of registered (not yet drained) sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// DrainAll replays every registered session sequentially, in creation order,
// removing each from the registry once its log has been fully replayed.
// The first replay failure aborts the drain and propagates; already-drained
// sessions stay drained, the failing and remaining ones stay registered.
func (r *Registry) DrainAll(ctx context.Context) error {
	r.mu.Lock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	r.mu.Unlock()

	for _, contextID := range order {
		r.mu.Lock()
		s, ok := r.sessions[contextID]
		r.mu.Unlock()
		if !ok {
			continue
		}

		if r.logger != nil {
			r.logger.Info("draining session", "context", contextID, "messages", s.Len())
		}
		if err := r.replayer.Replay(ctx, s); err != nil {
			return err
		}

		r.mu.Lock()
		delete(r.sessions, contextID)
		r.order = removeString(r.order, contextID)
		r.mu.Unlock()
	}
	return nil
}

// removeString returns order without the first occurrence of id.
func removeString(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
