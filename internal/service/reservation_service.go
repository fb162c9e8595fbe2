package service

import (
    "context"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

// ReservationService is the inventory reservation engine.  A hold is
// a best-effort soft claim: it produces an honest "available now"
// number at browse time and keeps obviously oversold carts out of
// checkout, but final stock consistency is enforced by the commit
// protocol's conditional decrement, never by the check here.
type ReservationService struct {
    packages PackageStore
    holds    ReservationStore
    ttl      time.Duration

    now func() time.Time
}

// NewReservationService builds the engine.  ttl is the hold window:
// every set or update pushes the hold's expiry to now+ttl.
func NewReservationService(packages PackageStore, holds ReservationStore, ttl time.Duration) *ReservationService {
    return &ReservationService{
        packages: packages,
        holds:    holds,
        ttl:      ttl,
        now:      func() time.Time { return time.Now().UTC() },
    }
}

// Set creates, updates or clears the customer's hold on a package.
// Quantity 0 deletes any existing hold.  Otherwise the request is
// rejected with an InsufficientStockError unless
// stock - reservedByOthers >= quantity; the customer's own existing
// hold never counts against them, so growing or shrinking a hold is
// judged against everyone else's claims only.
func (s *ReservationService) Set(ctx context.Context, customerID, packageID uint64, quantity uint32) (*model.Reservation, error) {
    if quantity == 0 {
        if err := s.holds.Delete(ctx, packageID, customerID); err != nil {
            return nil, err
        }
        return nil, nil
    }
    pkg, err := s.packages.GetByID(ctx, packageID)
    if err != nil {
        return nil, err
    }
    now := s.now()
    others, err := s.holds.ActiveQuantityExcluding(ctx, packageID, customerID, now)
    if err != nil {
        return nil, err
    }
    available := uint32(0)
    if pkg.Stock > others {
        available = pkg.Stock - others
    }
    if available < quantity {
        return nil, &InsufficientStockError{PackageID: packageID, Requested: quantity, Available: available}
    }
    res := model.Reservation{
        PackageID:  packageID,
        CustomerID: customerID,
        Quantity:   quantity,
        ExpiresAt:  now.Add(s.ttl),
    }
    if err := s.holds.Upsert(ctx, res); err != nil {
        return nil, err
    }
    return &res, nil
}

// Availability computes the package's truly available quantity for an
// anonymous reader: max(0, stock - sum of all active holds).
func (s *ReservationService) Availability(ctx context.Context, packageID uint64) (uint32, error) {
    pkg, err := s.packages.GetByID(ctx, packageID)
    if err != nil {
        return 0, err
    }
    return s.availabilityOf(ctx, pkg, 0)
}

// AvailabilityFor computes availability as seen by one customer,
// whose own hold does not count against them.
func (s *ReservationService) AvailabilityFor(ctx context.Context, packageID, customerID uint64) (uint32, error) {
    pkg, err := s.packages.GetByID(ctx, packageID)
    if err != nil {
        return 0, err
    }
    return s.availabilityOf(ctx, pkg, customerID)
}

// availabilityOf subtracts active holds from stock, excluding the
// given customer's own hold when customerID is non-zero.
func (s *ReservationService) availabilityOf(ctx context.Context, pkg model.Package, customerID uint64) (uint32, error) {
    now := s.now()
    var (
        held uint32
        err  error
    )
    if customerID == 0 {
        held, err = s.holds.ActiveQuantity(ctx, pkg.ID, now)
    } else {
        held, err = s.holds.ActiveQuantityExcluding(ctx, pkg.ID, customerID, now)
    }
    if err != nil {
        return 0, err
    }
    if held >= pkg.Stock {
        return 0, nil
    }
    return pkg.Stock - held, nil
}
