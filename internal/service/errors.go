package service

import (
    "errors"
    "fmt"
)

// Validation-level sentinel errors reported straight to the caller.
var (
    ErrEmptyCart       = errors.New("order must contain at least one item")
    ErrItemReference   = errors.New("order item must reference exactly one of package or food")
    ErrMixedCompanies  = errors.New("all order items must belong to the same company")
    ErrInvalidQuantity = errors.New("quantity must be at least 1")
    ErrInvalidScore    = errors.New("score must be between 1 and 5")
    ErrEmptyReply      = errors.New("reply must not be empty")
)

// Lifecycle errors.
var (
    // ErrCodeExpired means the pickup code (or its plaintext cache) has
    // aged past the validity window; the caller should wait for the
    // next rotation and fetch a fresh one.
    ErrCodeExpired = errors.New("pickup code expired")
    // ErrNoMatchingOrder means the presented code matched none of the
    // seller's open orders.
    ErrNoMatchingOrder = errors.New("no open order matches the presented code")
    // ErrNotPickedUp means feedback was attempted on an order that has
    // not been picked up.
    ErrNotPickedUp = errors.New("order has not been picked up")
    // ErrFeedbackClosed means the post-pickup grace period has elapsed.
    ErrFeedbackClosed = errors.New("feedback window has closed")
)

// InsufficientStockError rejects a reservation or commit whose
// requested quantity exceeds what is truly available once other
// customers' active holds are subtracted.  Available is included so
// the caller can decide whether to retry with a smaller quantity or
// re-browse.
type InsufficientStockError struct {
    PackageID uint64
    FoodID    uint64
    Requested uint32
    Available uint32
}

func (e *InsufficientStockError) Error() string {
    if e.FoodID != 0 {
        return fmt.Sprintf("insufficient stock for food %d: requested %d, available %d", e.FoodID, e.Requested, e.Available)
    }
    return fmt.Sprintf("insufficient stock for package %d: requested %d, available %d", e.PackageID, e.Requested, e.Available)
}

// StockConflictError reports that a commit lost the race to a
// concurrent commit at decrement time.  Every decrement already
// applied has been rolled back; the caller should retry the whole
// commit.
type StockConflictError struct {
    PackageID uint64
    FoodID    uint64
    Requested uint32
    Available uint32
}

func (e *StockConflictError) Error() string {
    if e.FoodID != 0 {
        return fmt.Sprintf("stock conflict on food %d: requested %d, available now %d", e.FoodID, e.Requested, e.Available)
    }
    return fmt.Sprintf("stock conflict on package %d: requested %d, available now %d", e.PackageID, e.Requested, e.Available)
}
