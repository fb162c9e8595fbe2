package pickup

import (
    "context"
    "sync"
    "testing"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/lastbite/lastbite/internal/model"
)

type fakeOrderCodeStore struct {
    mu     sync.Mutex
    orders map[uint64]model.Order
}

func newFakeOrderCodeStore(orders ...model.Order) *fakeOrderCodeStore {
    s := &fakeOrderCodeStore{orders: map[uint64]model.Order{}}
    for _, o := range orders {
        s.orders[o.ID] = o
    }
    return s
}

func (s *fakeOrderCodeStore) ListAwaitingPickup(context.Context) ([]model.Order, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]model.Order, 0, len(s.orders))
    for _, o := range s.orders {
        out = append(out, o)
    }
    return out, nil
}

func (s *fakeOrderCodeStore) UpdateCode(_ context.Context, orderID uint64, hash, plain string, issuedAt time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    o := s.orders[orderID]
    o.CodeHash = &hash
    o.CodePlain = &plain
    o.CodeIssuedAt = &issuedAt
    s.orders[orderID] = o
    return nil
}

func (s *fakeOrderCodeStore) get(id uint64) model.Order {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.orders[id]
}

type fakePurger struct {
    mu    sync.Mutex
    calls int
}

func (p *fakePurger) PurgeExpired(context.Context, time.Time) (int64, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.calls++
    return 0, nil
}

func TestNewRotatorClampsInterval(t *testing.T) {
    r := NewRotator(newFakeOrderCodeStore(), nil, time.Minute, 30*time.Second, bcrypt.MinCost)
    if r.Interval != 30*time.Second {
        t.Fatalf("interval = %s, want clamped to 30s", r.Interval)
    }
}

func TestRotateOnceReissuesOnlyExpired(t *testing.T) {
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    freshAt := now.Add(-30 * time.Second)
    staleAt := now.Add(-5 * time.Minute)
    freshCode := "123456"

    store := newFakeOrderCodeStore(
        model.Order{ID: 1, Status: model.OrderConfirmed, CodePlain: &freshCode, CodeIssuedAt: &freshAt},
        model.Order{ID: 2, Status: model.OrderConfirmed, CodeIssuedAt: &staleAt},
        model.Order{ID: 3, Status: model.OrderReady}, // never issued a code
    )
    r := NewRotator(store, nil, 30*time.Second, 2*time.Minute, bcrypt.MinCost)
    r.now = func() time.Time { return now }

    n, err := r.rotateOnce(context.Background())
    if err != nil {
        t.Fatalf("rotate: %v", err)
    }
    if n != 2 {
        t.Fatalf("rotated %d orders, want 2", n)
    }

    if got := store.get(1); got.CodePlain == nil || *got.CodePlain != freshCode {
        t.Fatal("fresh code was rewritten")
    }
    for _, id := range []uint64{2, 3} {
        o := store.get(id)
        if o.CodeHash == nil || o.CodePlain == nil || o.CodeIssuedAt == nil {
            t.Fatalf("order %d missing reissued code", id)
        }
        if !o.CodeIssuedAt.Equal(now) {
            t.Fatalf("order %d issued at %v, want %v", id, o.CodeIssuedAt, now)
        }
        if len(*o.CodePlain) != CodeLength {
            t.Fatalf("order %d code %q malformed", id, *o.CodePlain)
        }
        if !VerifyCode(*o.CodePlain, *o.CodeHash) {
            t.Fatalf("order %d plaintext does not match hash", id)
        }
    }

    // A second pass right away changes nothing.
    n, err = r.rotateOnce(context.Background())
    if err != nil {
        t.Fatalf("second rotate: %v", err)
    }
    if n != 0 {
        t.Fatalf("second rotate reissued %d, want 0", n)
    }
}

func TestRunTicksAndPurges(t *testing.T) {
    staleAt := time.Now().UTC().Add(-time.Hour)
    store := newFakeOrderCodeStore(model.Order{ID: 1, Status: model.OrderConfirmed, CodeIssuedAt: &staleAt})
    purger := &fakePurger{}

    r := NewRotator(store, purger, 10*time.Millisecond, time.Minute, bcrypt.MinCost)
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        r.Run(ctx)
        close(done)
    }()

    deadline := time.After(2 * time.Second)
    for {
        if o := store.get(1); o.CodeHash != nil {
            break
        }
        select {
        case <-deadline:
            t.Fatal("rotator never reissued the stale code")
        case <-time.After(5 * time.Millisecond):
        }
    }
    cancel()
    <-done

    purger.mu.Lock()
    calls := purger.calls
    purger.mu.Unlock()
    if calls == 0 {
        t.Fatal("hold purger was never invoked")
    }
}
