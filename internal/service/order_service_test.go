package service

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/pickup"
)

type orderFixture struct {
    pkgs  *memPackages
    foods *memFoods
    holds *memHolds
    ords  *memOrders
    users *memUsers

    reservations *ReservationService
    orders       *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
    t.Helper()
    f := &orderFixture{
        pkgs:  newMemPackages(),
        foods: newMemFoods(),
        holds: newMemHolds(),
        ords:  newMemOrders(),
        users: newMemUsers(),
    }
    f.pkgs.put(model.Package{ID: 1, CompanyID: 100, Name: "Surprise Bag", PriceCents: 499, Stock: 5, IsAvailable: true})
    f.pkgs.put(model.Package{ID: 2, CompanyID: 200, Name: "Other Shop Bag", PriceCents: 350, Stock: 5, IsAvailable: true})
    f.foods.put(model.Food{ID: 10, CompanyID: 100, Name: "Day-old Loaf", PriceCents: 150, Stock: 2, IsAvailable: true})
    f.users.put(model.User{ID: 1, Email: "anna@example.com", Role: model.RoleCustomer, FullName: "Anna Riva", Phone: "555-0101"})
    f.users.put(model.User{ID: 2, Email: "ben@example.com", Role: model.RoleCustomer, FullName: "Ben Odum"})
    f.reservations = NewReservationService(f.pkgs, f.holds, 10*time.Minute)
    f.orders = NewOrderService(f.pkgs, f.foods, f.holds, f.ords, f.users, 2*time.Minute, bcrypt.MinCost)
    return f
}

func TestCommitConvertsHoldToOrder(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    // Customer 1 holds 3 of 5; customer 2 is then refused 3.
    if _, err := f.reservations.Set(ctx, 1, 1, 3); err != nil {
        t.Fatalf("hold: %v", err)
    }
    var ins *InsufficientStockError
    if _, err := f.reservations.Set(ctx, 2, 1, 3); !errors.As(err, &ins) {
        t.Fatalf("expected InsufficientStockError for customer 2, got %v", err)
    }

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 3}, {FoodID: 10, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }
    if res.TotalCents != 3*499+150 {
        t.Fatalf("total = %d, want %d", res.TotalCents, 3*499+150)
    }
    if res.CompanyID != 100 {
        t.Fatalf("company = %d, want 100", res.CompanyID)
    }
    if len(res.PickupCode) != pickup.CodeLength {
        t.Fatalf("code %q is not %d digits", res.PickupCode, pickup.CodeLength)
    }
    if res.Reference == "" {
        t.Fatal("missing order reference")
    }

    o, err := f.ords.GetByID(ctx, res.OrderID)
    if err != nil {
        t.Fatalf("load order: %v", err)
    }
    if o.Status != model.OrderConfirmed {
        t.Fatalf("status = %s, want CONFIRMED", o.Status)
    }
    if len(o.Items) != 2 {
        t.Fatalf("items = %d, want 2", len(o.Items))
    }

    p, _ := f.pkgs.GetByID(ctx, 1)
    if p.Stock != 2 {
        t.Fatalf("package stock = %d, want 2", p.Stock)
    }
    fd, _ := f.foods.GetByID(ctx, 10)
    if fd.Stock != 1 {
        t.Fatalf("food stock = %d, want 1", fd.Stock)
    }

    // The consumed hold is gone, so availability reflects stock alone.
    avail, _ := f.reservations.Availability(ctx, 1)
    if avail != 2 {
        t.Fatalf("availability = %d after commit, want 2", avail)
    }
}

func TestCommitValidation(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    cases := []struct {
        name  string
        items []CartItem
        want  error
    }{
        {"empty cart", nil, ErrEmptyCart},
        {"zero quantity", []CartItem{{PackageID: 1, Quantity: 0}}, ErrInvalidQuantity},
        {"no reference", []CartItem{{Quantity: 1}}, ErrItemReference},
        {"double reference", []CartItem{{PackageID: 1, FoodID: 10, Quantity: 1}}, ErrItemReference},
        {"mixed companies", []CartItem{{PackageID: 1, Quantity: 1}, {PackageID: 2, Quantity: 1}}, ErrMixedCompanies},
    }
    for _, tc := range cases {
        if _, err := f.orders.Commit(ctx, 1, tc.items); !errors.Is(err, tc.want) {
            t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
        }
    }

    // Rejected carts must not touch stock.
    p, _ := f.pkgs.GetByID(ctx, 1)
    if p.Stock != 5 {
        t.Fatalf("stock = %d after rejected carts, want 5", p.Stock)
    }
}

func TestCommitRejectsOversoldCart(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    if _, err := f.reservations.Set(ctx, 2, 1, 4); err != nil {
        t.Fatalf("other hold: %v", err)
    }
    _, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 2}})
    var ins *InsufficientStockError
    if !errors.As(err, &ins) {
        t.Fatalf("expected InsufficientStockError, got %v", err)
    }
    if ins.Available != 1 {
        t.Fatalf("available = %d, want 1", ins.Available)
    }
}

func TestCommitRollsBackOnConflict(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    // The package decrement lands, then the food decrement loses a
    // simulated race; the package decrement must be compensated.
    f.foods.failDecrement = true
    _, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 2}, {FoodID: 10, Quantity: 1}})
    var conflict *StockConflictError
    if !errors.As(err, &conflict) {
        t.Fatalf("expected StockConflictError, got %v", err)
    }
    if conflict.FoodID != 10 {
        t.Fatalf("conflict names food %d, want 10", conflict.FoodID)
    }

    p, _ := f.pkgs.GetByID(ctx, 1)
    if p.Stock != 5 {
        t.Fatalf("package stock = %d after rollback, want 5", p.Stock)
    }
}

func TestCommitConcurrentLastUnit(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)
    f.pkgs.put(model.Package{ID: 3, CompanyID: 100, Name: "Last Bag", PriceCents: 299, Stock: 1, IsAvailable: true})

    const racers = 8
    var wg sync.WaitGroup
    errs := make([]error, racers)
    for i := 0; i < racers; i++ {
        wg.Add(1)
        go func(n int) {
            defer wg.Done()
            _, errs[n] = f.orders.Commit(ctx, uint64(n+1), []CartItem{{PackageID: 3, Quantity: 1}})
        }(i)
    }
    wg.Wait()

    wins := 0
    for _, err := range errs {
        if err == nil {
            wins++
            continue
        }
        var conflict *StockConflictError
        var ins *InsufficientStockError
        if !errors.As(err, &conflict) && !errors.As(err, &ins) {
            t.Fatalf("unexpected loser error: %v", err)
        }
    }
    if wins != 1 {
        t.Fatalf("winners = %d, want exactly 1", wins)
    }
    p, _ := f.pkgs.GetByID(ctx, 3)
    if p.Stock != 0 {
        t.Fatalf("stock = %d, want 0", p.Stock)
    }
}

func TestPickupCodeLifecycle(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
    f.orders.now = func() time.Time { return base }

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }

    info, err := f.orders.PickupCode(ctx, 1, res.OrderID)
    if err != nil {
        t.Fatalf("pickup code: %v", err)
    }
    if info.Code != res.PickupCode {
        t.Fatalf("code = %q, want %q", info.Code, res.PickupCode)
    }
    if !info.ExpiresAt.Equal(base.Add(2 * time.Minute)) {
        t.Fatalf("expires = %v, want %v", info.ExpiresAt, base.Add(2*time.Minute))
    }

    // Another customer cannot read it.
    if _, err := f.orders.PickupCode(ctx, 2, res.OrderID); err == nil {
        t.Fatal("expected forbidden for foreign customer")
    }

    // Past the window the code is gone until the next rotation.
    f.orders.now = func() time.Time { return base.Add(3 * time.Minute) }
    if _, err := f.orders.PickupCode(ctx, 1, res.OrderID); !errors.Is(err, ErrCodeExpired) {
        t.Fatalf("expected ErrCodeExpired, got %v", err)
    }
}

func TestRedeemMarksPickedOnce(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }

    got, err := f.orders.Redeem(ctx, 100, res.PickupCode)
    if err != nil {
        t.Fatalf("redeem: %v", err)
    }
    if got.Order.ID != res.OrderID {
        t.Fatalf("redeemed order %d, want %d", got.Order.ID, res.OrderID)
    }
    if got.Order.Status != model.OrderPicked {
        t.Fatalf("status = %s, want PICKED", got.Order.Status)
    }
    if got.Buyer != "Anna Riva" || got.Phone != "555-0101" {
        t.Fatalf("contact summary = %q/%q", got.Buyer, got.Phone)
    }
    if got.PickedAt.IsZero() {
        t.Fatal("missing picked_at")
    }

    // A second presentation of the same code finds nothing.
    if _, err := f.orders.Redeem(ctx, 100, res.PickupCode); !errors.Is(err, ErrNoMatchingOrder) {
        t.Fatalf("expected ErrNoMatchingOrder on replay, got %v", err)
    }
}

func TestRedeemWrongCompanyOrCode(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }

    // Another company's scan never sees this order.
    if _, err := f.orders.Redeem(ctx, 200, res.PickupCode); !errors.Is(err, ErrNoMatchingOrder) {
        t.Fatalf("expected ErrNoMatchingOrder for foreign company, got %v", err)
    }
    if _, err := f.orders.Redeem(ctx, 100, "000000"); err == nil || !errors.Is(err, ErrNoMatchingOrder) {
        if res.PickupCode != "000000" { // astronomically unlikely, but keep the test honest
            t.Fatalf("expected ErrNoMatchingOrder for wrong code, got %v", err)
        }
    }

    o, _ := f.ords.GetByID(ctx, res.OrderID)
    if o.Status != model.OrderConfirmed {
        t.Fatalf("status = %s, want CONFIRMED untouched", o.Status)
    }
}

func TestRedeemFallsBackToHash(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }
    f.ords.scrubPlain(res.OrderID)

    got, err := f.orders.Redeem(ctx, 100, res.PickupCode)
    if err != nil {
        t.Fatalf("redeem via hash: %v", err)
    }
    if got.Order.Status != model.OrderPicked {
        t.Fatalf("status = %s, want PICKED", got.Order.Status)
    }
}

func TestRedeemSkipsExpiredCode(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
    f.orders.now = func() time.Time { return base }
    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }

    f.orders.now = func() time.Time { return base.Add(3 * time.Minute) }
    if _, err := f.orders.Redeem(ctx, 100, res.PickupCode); !errors.Is(err, ErrNoMatchingOrder) {
        t.Fatalf("expected ErrNoMatchingOrder for expired code, got %v", err)
    }
}

func TestMarkReadyAndCancel(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }

    if err := f.orders.MarkReady(ctx, 200, res.OrderID); err == nil {
        t.Fatal("expected forbidden for foreign company")
    }
    if err := f.orders.MarkReady(ctx, 100, res.OrderID); err != nil {
        t.Fatalf("mark ready: %v", err)
    }
    o, _ := f.ords.GetByID(ctx, res.OrderID)
    if o.Status != model.OrderReady {
        t.Fatalf("status = %s, want READY", o.Status)
    }

    if err := f.orders.Cancel(ctx, 2, res.OrderID); err == nil {
        t.Fatal("expected forbidden for uninvolved actor")
    }
    if err := f.orders.Cancel(ctx, 1, res.OrderID); err != nil {
        t.Fatalf("cancel: %v", err)
    }
    o, _ = f.ords.GetByID(ctx, res.OrderID)
    if o.Status != model.OrderCancelled {
        t.Fatalf("status = %s, want CANCELLED", o.Status)
    }

    // A cancelled order cannot be redeemed.
    if _, err := f.orders.Redeem(ctx, 100, res.PickupCode); !errors.Is(err, ErrNoMatchingOrder) {
        t.Fatalf("expected ErrNoMatchingOrder after cancel, got %v", err)
    }
}

func TestCancelRefusedAfterPickup(t *testing.T) {
    ctx := context.Background()
    f := newOrderFixture(t)

    res, err := f.orders.Commit(ctx, 1, []CartItem{{PackageID: 1, Quantity: 1}})
    if err != nil {
        t.Fatalf("commit: %v", err)
    }
    if _, err := f.orders.Redeem(ctx, 100, res.PickupCode); err != nil {
        t.Fatalf("redeem: %v", err)
    }
    if err := f.orders.Cancel(ctx, 1, res.OrderID); err == nil {
        t.Fatal("expected cancel to fail on picked order")
    }
}
