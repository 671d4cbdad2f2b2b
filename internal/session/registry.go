package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/persistence"
)

// Registry maps browser contexts to their Store. All Stores share the roster
// and the backing media. The durable medium is scoped per client and the
// ephemeral medium per browser session, so a new browser session starts
// without the non-remembered login of the previous one.
type Registry struct {
	mu     sync.Mutex
	base   Config
	stores map[contextKey]*entry
	logger *zap.Logger
}

type contextKey struct {
	client  string
	session string
}

type entry struct {
	store    *Store
	lastSeen time.Time
}

// NewRegistry builds a registry. base.Durable and base.Ephemeral are the
// unscoped backing media.
func NewRegistry(base Config) *Registry {
	if base.Logger == nil {
		base.Logger = zap.NewNop()
	}
	if base.Now == nil {
		base.Now = time.Now
	}
	return &Registry{base: base, stores: make(map[contextKey]*entry), logger: base.Logger}
}

// Get returns the Store of a browser context, creating and restoring it on
// first use. A restore failure is logged and leaves the new Store anonymous.
// Restores run outside the registry lock; when two requests race for the same
// context the first Store inserted wins.
func (r *Registry) Get(ctx context.Context, clientID, sessionID string) (*Store, error) {
	key := contextKey{client: clientID, session: sessionID}
	if store, ok := r.lookup(key); ok {
		return store, nil
	}

	cfg := r.base
	cfg.Durable = persistence.Scoped(r.base.Durable, clientScope(clientID))
	cfg.Ephemeral = persistence.Scoped(r.base.Ephemeral, sessionScope(sessionID))
	cfg.Logger = r.logger.With(zap.String("client_id", clientID), zap.String("browser_session_id", sessionID))
	store := New(cfg)
	if err := store.Restore(ctx); err != nil {
		cfg.Logger.Warn("session restore failed", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.base.Now()
	if e, ok := r.stores[key]; ok {
		e.lastSeen = now
		return e.store, nil
	}
	r.stores[key] = &entry{store: store, lastSeen: now}
	return store, nil
}

func (r *Registry) lookup(key contextKey) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.stores[key]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.base.Now()
	return e.store, true
}

// Sweep forgets Stores idle for longer than idle. Their persisted state is
// kept, so a returning client is restored from the media.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.base.Now().Add(-idle)
	removed := 0
	for key, e := range r.stores {
		if e.lastSeen.Before(cutoff) {
			delete(r.stores, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live Stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

func clientScope(clientID string) string {
	return "client:" + clientID
}

func sessionScope(sessionID string) string {
	return "session:" + sessionID
}
