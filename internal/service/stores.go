// Package service implements the marketplace core: the inventory
// reservation engine, the order commit protocol with its
// conditional-decrement-and-rollback discipline, seller-side code
// redemption and the feedback flow.  Services depend on narrow store
// interfaces rather than concrete repositories so the core stays
// unit-testable against in-memory fakes.
package service

import (
    "context"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

// PackageStore is the slice of package persistence the services
// need.  DecrementStock must be atomic and conditional: it subtracts
// only when the row carries enough stock at the moment of the write,
// returning repository.ErrStockConflict otherwise.
// *repository.PackageRepo satisfies it.
type PackageStore interface {
    GetByID(ctx context.Context, id uint64) (model.Package, error)
    DecrementStock(ctx context.Context, id uint64, qty uint32) error
    IncrementStock(ctx context.Context, id uint64, qty uint32) error
    RefreshRating(ctx context.Context, id uint64) error
}

// FoodStore mirrors PackageStore for single-item food listings.
type FoodStore interface {
    GetByID(ctx context.Context, id uint64) (model.Food, error)
    DecrementStock(ctx context.Context, id uint64, qty uint32) error
    IncrementStock(ctx context.Context, id uint64, qty uint32) error
}

// ReservationStore persists soft holds.  Aggregates only count rows
// whose expiry lies after now, so expired holds vanish lazily.
// *repository.ReservationRepo satisfies it.
type ReservationStore interface {
    Upsert(ctx context.Context, res model.Reservation) error
    Delete(ctx context.Context, packageID, customerID uint64) error
    DeleteForCustomer(ctx context.Context, customerID uint64, packageIDs []uint64) error
    ActiveQuantity(ctx context.Context, packageID uint64, now time.Time) (uint32, error)
    ActiveQuantityExcluding(ctx context.Context, packageID, customerID uint64, now time.Time) (uint32, error)
}

// OrderStore persists orders.  TransitionStatus must be conditional
// on the current status so redemption and feedback are single-shot.
// *repository.OrderRepo satisfies it.
type OrderStore interface {
    Create(ctx context.Context, o *model.Order) error
    GetByID(ctx context.Context, id uint64) (model.Order, error)
    ListByCustomer(ctx context.Context, customerID uint64) ([]model.Order, error)
    ListByCompanyStatus(ctx context.Context, companyID uint64, statuses []model.OrderStatus) ([]model.Order, error)
    UpdateCode(ctx context.Context, orderID uint64, hash, plain string, issuedAt time.Time) error
    TransitionStatus(ctx context.Context, orderID uint64, from []model.OrderStatus, to model.OrderStatus, pickedAt *time.Time) error
}

// RatingStore persists feedback.  Create and SetReply are both
// single-shot and surface repository.ErrConflict on repeats.
// *repository.RatingRepo satisfies it.
type RatingStore interface {
    Create(ctx context.Context, rt *model.Rating) error
    GetByID(ctx context.Context, id uint64) (model.Rating, error)
    SetReply(ctx context.Context, id uint64, reply string) error
}

// UserStore resolves users for the buyer contact summary returned on
// redemption.  *repository.UserRepo satisfies it.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}
