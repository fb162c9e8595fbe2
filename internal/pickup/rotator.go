package pickup

import (
    "context"
    "log"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

// OrderCodeStore is the slice of order persistence the rotator needs:
// enumerate orders still awaiting pickup and rewrite their code
// columns.  *repository.OrderRepo satisfies it.
type OrderCodeStore interface {
    ListAwaitingPickup(ctx context.Context) ([]model.Order, error)
    UpdateCode(ctx context.Context, orderID uint64, hash, plain string, issuedAt time.Time) error
}

// HoldPurger removes expired reservation rows.  Purging is storage
// hygiene only, the expiry filters on every read keep correctness
// independent of it, so the rotator carries it as a piggybacked
// cleanup on the same cadence.  *repository.ReservationRepo
// satisfies it.
type HoldPurger interface {
    PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Rotator is the background scheduler that keeps every order awaiting
// pickup supplied with a currently valid code.  On each tick it scans
// orders in CONFIRMED or READY status and reissues the code for any
// order whose code is missing or older than Window.  The work is
// stateless between ticks and idempotent per order: a crash mid-scan
// leaves some orders with stale codes for at most one more tick.
type Rotator struct {
    Orders   OrderCodeStore
    Holds    HoldPurger // optional
    Interval time.Duration
    Window   time.Duration
    HashCost int

    now func() time.Time
}

// NewRotator builds a Rotator.  Interval must not exceed Window,
// otherwise an order could sit with an expired, unrotated code for
// longer than one tick; NewRotator clamps the interval down to the
// window when misconfigured.
func NewRotator(orders OrderCodeStore, holds HoldPurger, interval, window time.Duration, hashCost int) *Rotator {
    if interval > window {
        interval = window
    }
    return &Rotator{
        Orders:   orders,
        Holds:    holds,
        Interval: interval,
        Window:   window,
        HashCost: hashCost,
        now:      func() time.Time { return time.Now().UTC() },
    }
}

// Run ticks until ctx is cancelled.  Errors are logged and never
// stop the loop.
func (r *Rotator) Run(ctx context.Context) {
    t := time.NewTicker(r.Interval)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-t.C:
            if n, err := r.rotateOnce(ctx); err != nil {
                log.Printf("rotator: scan failed: %v", err)
            } else if n > 0 {
                log.Printf("rotator: reissued %d pickup code(s)", n)
            }
            if r.Holds != nil {
                if _, err := r.Holds.PurgeExpired(ctx, r.now()); err != nil {
                    log.Printf("rotator: hold purge failed: %v", err)
                }
            }
        }
    }
}

// rotateOnce performs a single scan and returns how many codes were
// reissued.  Per-order failures are logged and skipped so one bad
// row cannot starve the rest of the scan.
func (r *Rotator) rotateOnce(ctx context.Context) (int, error) {
    orders, err := r.Orders.ListAwaitingPickup(ctx)
    if err != nil {
        return 0, err
    }
    now := r.now()
    rotated := 0
    for _, o := range orders {
        if !CodeExpired(o.CodeIssuedAt, r.Window, now) {
            continue
        }
        plain, hash, err := GenerateCode(r.HashCost)
        if err != nil {
            log.Printf("rotator: generate code for order %d: %v", o.ID, err)
            continue
        }
        if err := r.Orders.UpdateCode(ctx, o.ID, hash, plain, now); err != nil {
            log.Printf("rotator: store code for order %d: %v", o.ID, err)
            continue
        }
        rotated++
    }
    return rotated, nil
}
