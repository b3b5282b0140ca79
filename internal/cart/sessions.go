package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/metrics"
)

const minSweepInterval = time.Second

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions hands out one Store per shopper session, rehydrating it from the
// persister the first time the session is seen by this process. Every mutation
// is written through, so an evicted session reloads to the same contents.
type Sessions struct {
	mu        sync.Mutex
	stores    map[string]*session
	persister Persister
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	now       func() time.Time
}

// NewSessions builds an empty registry over persister.
func NewSessions(persister Persister, logg *logger.Logger, m *metrics.CartMetrics) *Sessions {
	return &Sessions{
		stores:    make(map[string]*session),
		persister: persister,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}
}

// Get returns the cart for sessionID, loading it on first access.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}

	if store := s.touch(sessionID); store != nil {
		return store, nil
	}

	store := NewStore(sessionID, s.persister, s.logg, s.metrics)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent request may have loaded the same session first.
	if existing, ok := s.stores[sessionID]; ok {
		existing.lastSeen = s.now()
		return existing.store, nil
	}
	s.stores[sessionID] = &session{store: store, lastSeen: s.now()}
	return store, nil
}

func (s *Sessions) touch(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.stores[sessionID]
	if !ok {
		return nil
	}
	entry.lastSeen = s.now()
	return entry.store
}

// Evict drops sessions not seen since cutoff and reports how many went.
func (s *Sessions) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, entry := range s.stores {
		if entry.lastSeen.Before(cutoff) {
			delete(s.stores, id)
			evicted++
		}
	}
	return evicted
}

// RunEviction drops sessions idle for longer than idleTTL until ctx is done.
// A non-positive idleTTL disables eviction.
func (s *Sessions) RunEviction(ctx context.Context, idleTTL time.Duration) error {
	if idleTTL <= 0 {
		return nil
	}
	ticker := time.NewTicker(max(idleTTL/2, minSweepInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Evict(s.now().Add(-idleTTL)); n > 0 {
				s.logg.Debug(s.logg.WithField(ctx, "evicted", n), "idle cart sessions evicted")
			}
		}
	}
}

// Len reports how many sessions are held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
