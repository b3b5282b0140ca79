package newsletter

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

// Status is what the sign-up box shows for an address.
type Status struct {
	Email        string    `json:"email"`
	Subscribed   bool      `json:"subscribed"`
	Confirming   bool      `json:"confirming"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type subscription struct {
	subscribedAt time.Time
	confirming   bool
	timer        *time.Timer
	generation   uint64
}

// Service records newsletter sign-ups. Each sign-up shows a confirmation that clears
// itself after resetAfter.
type Service struct {
	mu         sync.Mutex
	subs       map[string]*subscription
	resetAfter time.Duration
	closed     bool
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(resetAfter time.Duration, logg *logger.Logger) *Service {
	return &Service{
		subs:       make(map[string]*subscription),
		resetAfter: resetAfter,
		logg:       logg,
		now:        time.Now,
	}
}

// Subscribe records email. Blank input is rejected and nothing changes.
func (s *Service) Subscribe(ctx context.Context, email string) (Status, error) {
	key := normalize(email)
	if key == "" {
		return Status{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required").WithDetails(map[string]string{
			"email": "Email is required",
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Status{}, pkgerrors.New(pkgerrors.CodeDependency, "newsletter service is shutting down")
	}

	sub, ok := s.subs[key]
	if !ok {
		sub = &subscription{subscribedAt: s.now().UTC()}
		s.subs[key] = sub
	}
	if sub.timer != nil {
		sub.timer.Stop()
		sub.timer = nil
	}
	sub.generation++
	sub.confirming = s.resetAfter > 0
	if sub.confirming {
		gen := sub.generation
		sub.timer = time.AfterFunc(s.resetAfter, func() { s.reset(key, gen) })
	}

	s.logg.Info(s.logg.WithField(ctx, "new_subscriber", !ok), "newsletter sign-up")
	return statusOf(key, sub), nil
}

// Status reports the sign-up state for email.
func (s *Service) Status(email string) (Status, error) {
	key := normalize(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[key]
	if !ok {
		return Status{}, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return statusOf(key, sub), nil
}

// Close stops every pending confirmation reset. Later resets are ignored.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, sub := range s.subs {
		if sub.timer != nil {
			sub.timer.Stop()
			sub.timer = nil
		}
	}
}

func (s *Service) reset(key string, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sub, ok := s.subs[key]
	if !ok || sub.generation != generation {
		return
	}
	sub.confirming = false
	sub.timer = nil
}

func statusOf(key string, sub *subscription) Status {
	return Status{
		Email:        key,
		Subscribed:   true,
		Confirming:   sub.confirming,
		SubscribedAt: sub.subscribedAt,
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
