package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
)

func TestSessionsReturnsSameStore(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newStubPersister(), testLogger(), nil)

	first, err := sessions.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := sessions.Get(ctx, " abc ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same store for one session")
	}
	other, _ := sessions.Get(ctx, "xyz")
	if other == first {
		t.Fatal("sessions must not share carts")
	}
	if sessions.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", sessions.Len())
	}
}

func TestSessionsRehydrateFromPersister(t *testing.T) {
	ctx := context.Background()
	persister := newStubPersister()
	sessions := NewSessions(persister, testLogger(), nil)

	store, _ := sessions.Get(ctx, "abc")
	store.Add(ctx, product(1, "5"), 3)
	if n := sessions.Evict(time.Now().Add(time.Minute)); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}

	restored, err := sessions.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored == store {
		t.Fatal("expected a fresh store after eviction")
	}
	assertLines(t, restored.Lines(), [2]int{1, 3})
}

func TestSessionsRejectBlankID(t *testing.T) {
	_, err := NewSessions(newStubPersister(), testLogger(), nil).Get(context.Background(), "  ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionsDoNotCacheFailedLoads(t *testing.T) {
	persister := newStubPersister()
	persister.loadErr = errors.New("timeout")
	sessions := NewSessions(persister, testLogger(), nil)

	if _, err := sessions.Get(context.Background(), "abc"); err == nil {
		t.Fatal("expected load error")
	}
	if sessions.Len() != 0 {
		t.Fatal("failed load must not register a store")
	}
}

func TestSessionsConcurrentGet(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newStubPersister(), testLogger(), nil)

	var wg sync.WaitGroup
	stores := make([]*Store, 16)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i], _ = sessions.Get(ctx, "shared")
		}(i)
	}
	wg.Wait()
	for _, s := range stores[1:] {
		if s != stores[0] {
			t.Fatal("concurrent gets returned different stores")
		}
	}
}

func TestSessionsEvictIdleOnly(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newStubPersister(), testLogger(), nil)
	clock := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }

	for i := 0; i < 1000; i++ {
		if _, err := sessions.Get(ctx, fmt.Sprintf("visitor-%d", i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	clock = clock.Add(20 * time.Minute)
	sessions.Get(ctx, "visitor-7")

	if n := sessions.Evict(clock.Add(-10 * time.Minute)); n != 999 {
		t.Fatalf("expected 999 idle sessions evicted, got %d", n)
	}
	if sessions.Len() != 1 {
		t.Fatalf("expected only the active session kept, got %d", sessions.Len())
	}
}

func TestSessionsRunEvictionStopsWithContext(t *testing.T) {
	sessions := NewSessions(newStubPersister(), testLogger(), nil)
	sessions.Get(context.Background(), "abc")
	sessions.now = func() time.Time { return time.Now().Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sessions.RunEviction(ctx, time.Millisecond) }()

	deadline := time.After(5 * time.Second)
	for sessions.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("expected idle session to be evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sessions.RunEviction(context.Background(), 0); err != nil {
		t.Fatalf("disabled eviction should return at once: %v", err)
	}
}
