package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/metrics"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update_quantity"
	opClear  = "clear"
)

// Store is one session's cart. Every mutation is written through the persister before
// it becomes visible; a failed write leaves the previous contents in place.
type Store struct {
	mu        sync.Mutex
	sessionID string
	lines     []Line
	persister Persister
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
}

// NewStore returns an empty cart for sessionID. Call Load to rehydrate stored contents.
func NewStore(sessionID string, persister Persister, logg *logger.Logger, m *metrics.CartMetrics) *Store {
	return &Store{
		sessionID: sessionID,
		lines:     []Line{},
		persister: persister,
		logg:      logg,
		metrics:   m,
	}
}

// SessionID identifies the shopper owning this cart.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Load replaces the in-memory cart with the stored snapshot. A missing or unreadable
// snapshot yields an empty cart; only transport failures are returned.
func (s *Store) Load(ctx context.Context) error {
	payload, err := s.persister.Load(ctx, s.sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		s.lines = []Line{}
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	lines, err := decodeLines(payload)
	if err != nil {
		s.warn(ctx, "discarding unreadable cart snapshot", err)
		s.lines = []Line{}
		return nil
	}
	s.lines = lines
	return nil
}

// Lines returns a copy of the current cart contents in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// Count is the total quantity across lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// Add merges qty of product into an existing line or appends a new one.
func (s *Store) Add(ctx context.Context, product catalog.Product, qty int) ([]Line, error) {
	if err := validateQuantity(qty); err != nil {
		return s.Lines(), err
	}
	return s.mutate(ctx, opAdd, func(lines []Line) []Line {
		if idx := indexOf(lines, product.ID); idx >= 0 {
			lines[idx].Quantity += qty
			return lines
		}
		return cloneLines(append(lines, Line{Product: product, Quantity: qty}))
	})
}

// Remove drops the line for productID if present.
func (s *Store) Remove(ctx context.Context, productID int) ([]Line, error) {
	return s.mutate(ctx, opRemove, func(lines []Line) []Line {
		out := lines[:0]
		for _, l := range lines {
			if l.ID != productID {
				out = append(out, l)
			}
		}
		return out
	})
}

// UpdateQuantity replaces the quantity of an existing line in place. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID, qty int) ([]Line, error) {
	if err := validateQuantity(qty); err != nil {
		return s.Lines(), err
	}
	return s.mutate(ctx, opUpdate, func(lines []Line) []Line {
		if idx := indexOf(lines, productID); idx >= 0 {
			lines[idx].Quantity = qty
		}
		return lines
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) ([]Line, error) {
	return s.mutate(ctx, opClear, func([]Line) []Line {
		return []Line{}
	})
}

// TakeAll empties the cart and returns the lines it held, in one step under the
// cart lock. Writes that land before it are included; writes after it see an empty cart.
func (s *Store) TakeAll(ctx context.Context) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, opClear, []Line{}); err != nil {
		return nil, err
	}
	taken := s.lines
	s.lines = []Line{}
	s.metrics.IncMutation(opClear)
	return cloneLines(taken), nil
}

func (s *Store) mutate(ctx context.Context, op string, apply func([]Line) []Line) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(cloneLines(s.lines))
	if err := s.save(ctx, op, next); err != nil {
		return cloneLines(s.lines), err
	}
	s.lines = next
	s.metrics.IncMutation(op)
	return cloneLines(next), nil
}

func (s *Store) save(ctx context.Context, op string, lines []Line) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	started := time.Now()
	err = s.persister.Save(ctx, s.sessionID, payload)
	s.metrics.ObservePersist(op, time.Since(started))
	if err != nil {
		s.metrics.IncPersistFailure(op)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"session_id": s.sessionID,
		"error":      err.Error(),
	})
	s.logg.Warn(ctx, msg)
}

func validateQuantity(qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").WithDetails(map[string]any{
			"quantity": qty,
		})
	}
	return nil
}
