package model

import "time"

// Reservation is a customer's temporary soft hold on package stock
// prior to an order commit.  The (PackageID, CustomerID) pair is
// unique: a customer has at most one active hold per package, and
// setting a new quantity overwrites the old hold together with its
// expiry.  Holds past ExpiresAt are treated as void by every reader
// and are physically removed lazily or by the periodic purge.
//
// A hold is a best-effort claim only; final stock consistency is
// enforced by the commit protocol's conditional decrement.
type Reservation struct {
    PackageID  uint64    // reservations.package_id
    CustomerID uint64    // reservations.customer_id
    Quantity   uint32    // reservations.quantity, always >= 1
    ExpiresAt  time.Time // reservations.expires_at
    CreatedAt  time.Time // reservations.created_at
    UpdatedAt  time.Time // reservations.updated_at
}

// Active reports whether the hold still counts at the given instant.
func (r Reservation) Active(now time.Time) bool {
    return r.ExpiresAt.After(now)
}
