package checkout

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/angelmondragon/autoparts-storefront/internal/cart"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/metrics"
	"github.com/google/uuid"
)

// CartPath is where a shopper with an empty cart is sent back to.
const CartPath = "/api/v1/cart"

const deliveryWindow = 7 * 24 * time.Hour

// Cart is the slice of cart behavior checkout needs. TakeAll must empty the cart
// and return what it held atomically.
type Cart interface {
	SessionID() string
	Lines() []cart.Line
	TakeAll(ctx context.Context) ([]cart.Line, error)
}

// Order is the confirmation returned once checkout completes.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	Number            string          `json:"number"`
	Email             string          `json:"email"`
	Lines             []cart.Line     `json:"lines"`
	Summary           pricing.Summary `json:"summary"`
	Display           pricing.Display `json:"display"`
	PlacedAt          time.Time       `json:"placed_at"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
}

// Service places simulated orders.
type Service interface {
	PlaceOrder(ctx context.Context, c Cart, form Form) (*Order, error)
}

type service struct {
	rules   pricing.Rules
	delay   time.Duration
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewService builds a checkout service. delay simulates payment processing before the
// order is confirmed.
func NewService(rules pricing.Rules, delay time.Duration, logg *logger.Logger, m *metrics.CartMetrics) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if delay < 0 {
		return nil, fmt.Errorf("completion delay cannot be negative")
	}
	return &service{
		rules:   rules,
		delay:   delay,
		logg:    logg,
		metrics: m,
		now:     time.Now,
		newID:   uuid.New,
	}, nil
}

// PlaceOrder confirms whatever the cart holds once the completion delay elapses.
// Lines added while waiting are part of the order; the order is priced from the
// lines actually taken out of the cart.
func (s *service) PlaceOrder(ctx context.Context, c Cart, form Form) (*Order, error) {
	if len(c.Lines()) == 0 {
		return nil, emptyCart()
	}
	if errs := Validate(form); len(errs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout form is invalid").WithDetails(errs)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	lines, err := c.TakeAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, emptyCart()
	}
	summary := cart.Summarize(lines, s.rules)

	id := s.newID()
	placedAt := s.now().UTC()
	order := &Order{
		ID:                id,
		Number:            orderNumber(id),
		Email:             form.Email,
		Lines:             lines,
		Summary:           summary,
		Display:           summary.Display(),
		PlacedAt:          placedAt,
		EstimatedDelivery: placedAt.Add(deliveryWindow),
	}
	s.metrics.IncOrder()

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"session_id":   c.SessionID(),
		"order_number": order.Number,
		"item_count":   summary.ItemCount,
		"total":        summary.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "order placed")
	return order, nil
}

func emptyCart() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty").WithDetails(map[string]any{
		"cart_url": CartPath,
	})
}

func (s *service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		if err := ctx.Err(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCanceled, err, "checkout canceled")
		}
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeCanceled, ctx.Err(), "checkout canceled")
	}
}

// orderNumber renders the shopper-facing reference, e.g. APD4821937.
func orderNumber(id uuid.UUID) string {
	return fmt.Sprintf("APD%d", binary.BigEndian.Uint32(id[:4])%10_000_000)
}
