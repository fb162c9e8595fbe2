package service

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/pickup"
    "github.com/lastbite/lastbite/internal/repository"
)

// CartItem is one requested line of a checkout.  Exactly one of
// PackageID and FoodID must be set.
type CartItem struct {
    PackageID uint64 `json:"package_id"`
    FoodID    uint64 `json:"food_id"`
    Quantity  uint32 `json:"quantity"`
}

// CommitResult is returned to the customer after a successful
// checkout.  PickupCode carries the plaintext exactly once; after
// this response the customer can only re-fetch it through the code
// endpoint while the current rotation window lasts.
type CommitResult struct {
    OrderID    uint64    `json:"order_id"`
    Reference  string    `json:"reference"`
    CompanyID  uint64    `json:"company_id"`
    PickupCode string    `json:"pickup_code"`
    TotalCents uint32    `json:"total_cents"`
    CreatedAt  time.Time `json:"created_at"`
}

// PickupCodeInfo is the customer-facing view of the current code.
type PickupCodeInfo struct {
    Code      string    `json:"code"`
    ExpiresAt time.Time `json:"expires_at"`
}

// RedeemResult pairs the redeemed order with a contact summary of
// the buyer so the seller can hand the bag over.  Not a wire type:
// Order still carries the code columns, so handlers must render it
// through their own response shape.
type RedeemResult struct {
    Order    model.Order
    Buyer    string
    Phone    string
    Email    string
    PickedAt time.Time
}

// redeemableStatuses are the order statuses a presented code is
// scanned against: exactly the ones the lifecycle lets move to PICKED.
var redeemableStatuses = model.TransitionsInto(model.OrderPicked)

// OrderService implements the order commit protocol, the seller-side
// redemption scan and the remaining status transitions.  The commit
// path is the single place true stock consistency is enforced; it is
// safe against arbitrarily many concurrent commits touching
// overlapping listings through per-item conditional decrements with
// compensating rollback, not through any global lock.
type OrderService struct {
    packages PackageStore
    foods    FoodStore
    holds    ReservationStore
    orders   OrderStore
    users    UserStore

    codeWindow time.Duration
    codeCost   int

    now func() time.Time
}

// NewOrderService builds an OrderService.  codeWindow is the pickup
// code validity window shared with the rotation scheduler; codeCost
// is the bcrypt cost for code hashes.
func NewOrderService(packages PackageStore, foods FoodStore, holds ReservationStore, orders OrderStore, users UserStore, codeWindow time.Duration, codeCost int) *OrderService {
    return &OrderService{
        packages:   packages,
        foods:      foods,
        holds:      holds,
        orders:     orders,
        users:      users,
        codeWindow: codeWindow,
        codeCost:   codeCost,
        now:        func() time.Time { return time.Now().UTC() },
    }
}

// resolvedItem is a cart line with its listing loaded and priced.
type resolvedItem struct {
    cart      CartItem
    companyID uint64
    unitPrice uint32
}

// Commit converts a cart into a durable order:
//
//  1. validate the cart (non-empty, sane quantities, one reference per line)
//  2. resolve every listing, rejecting unknown ids
//  3. enforce the single-company invariant
//  4. check availability net of the customer's own holds, rejecting the
//     whole cart on any shortfall (no partial commit)
//  5. price the order
//  6. conditionally decrement stock per item, rolling back every applied
//     decrement if any item loses the race
//  7. generate the initial pickup code, create the order CONFIRMED and
//     clear the customer's now-consumed holds
func (s *OrderService) Commit(ctx context.Context, customerID uint64, items []CartItem) (CommitResult, error) {
    if len(items) == 0 {
        return CommitResult{}, ErrEmptyCart
    }
    resolved := make([]resolvedItem, 0, len(items))
    for _, it := range items {
        if it.Quantity == 0 {
            return CommitResult{}, ErrInvalidQuantity
        }
        if (it.PackageID == 0) == (it.FoodID == 0) {
            return CommitResult{}, ErrItemReference
        }
        var ri resolvedItem
        ri.cart = it
        if it.PackageID != 0 {
            pkg, err := s.packages.GetByID(ctx, it.PackageID)
            if err != nil {
                return CommitResult{}, err
            }
            ri.companyID = pkg.CompanyID
            ri.unitPrice = pkg.PriceCents
        } else {
            food, err := s.foods.GetByID(ctx, it.FoodID)
            if err != nil {
                return CommitResult{}, err
            }
            ri.companyID = food.CompanyID
            ri.unitPrice = food.PriceCents
        }
        resolved = append(resolved, ri)
    }
    companyID := resolved[0].companyID
    for _, ri := range resolved[1:] {
        if ri.companyID != companyID {
            return CommitResult{}, ErrMixedCompanies
        }
    }
    now := s.now()
    for _, ri := range resolved {
        available, err := s.availableFor(ctx, ri.cart, customerID, now)
        if err != nil {
            return CommitResult{}, err
        }
        if available < ri.cart.Quantity {
            return CommitResult{}, &InsufficientStockError{
                PackageID: ri.cart.PackageID,
                FoodID:    ri.cart.FoodID,
                Requested: ri.cart.Quantity,
                Available: available,
            }
        }
    }
    var total uint32
    for _, ri := range resolved {
        total += ri.unitPrice * ri.cart.Quantity
    }

    // Conditional decrements. On any failure, re-increment everything
    // applied so far and fail the whole order; stock mutation is all
    // or nothing.
    applied := make([]resolvedItem, 0, len(resolved))
    for _, ri := range resolved {
        err := s.decrement(ctx, ri.cart)
        if err == nil {
            applied = append(applied, ri)
            continue
        }
        for _, done := range applied {
            s.increment(ctx, done.cart)
        }
        if err == repository.ErrStockConflict {
            available, _ := s.availableFor(ctx, ri.cart, customerID, s.now())
            return CommitResult{}, &StockConflictError{
                PackageID: ri.cart.PackageID,
                FoodID:    ri.cart.FoodID,
                Requested: ri.cart.Quantity,
                Available: available,
            }
        }
        return CommitResult{}, err
    }

    plain, hash, err := pickup.GenerateCode(s.codeCost)
    if err != nil {
        for _, done := range applied {
            s.increment(ctx, done.cart)
        }
        return CommitResult{}, err
    }
    issuedAt := s.now()
    order := model.Order{
        Reference:    uuid.NewString(),
        CustomerID:   customerID,
        CompanyID:    companyID,
        TotalCents:   total,
        Status:       model.OrderConfirmed,
        CodeHash:     &hash,
        CodePlain:    &plain,
        CodeIssuedAt: &issuedAt,
    }
    for _, ri := range resolved {
        item := model.OrderItem{Quantity: ri.cart.Quantity, UnitPriceCents: ri.unitPrice}
        if ri.cart.PackageID != 0 {
            id := ri.cart.PackageID
            item.PackageID = &id
        } else {
            id := ri.cart.FoodID
            item.FoodID = &id
        }
        order.Items = append(order.Items, item)
    }
    if err := s.orders.Create(ctx, &order); err != nil {
        for _, done := range applied {
            s.increment(ctx, done.cart)
        }
        return CommitResult{}, err
    }
    // The committed quantities are no longer held, they are owned.
    var pkgIDs []uint64
    for _, ri := range resolved {
        if ri.cart.PackageID != 0 {
            pkgIDs = append(pkgIDs, ri.cart.PackageID)
        }
    }
    if err := s.holds.DeleteForCustomer(ctx, customerID, pkgIDs); err != nil {
        // The order stands; stale holds expire on their own.
        return CommitResult{
            OrderID: order.ID, Reference: order.Reference, CompanyID: companyID,
            PickupCode: plain, TotalCents: total, CreatedAt: order.CreatedAt,
        }, nil
    }
    return CommitResult{
        OrderID:    order.ID,
        Reference:  order.Reference,
        CompanyID:  companyID,
        PickupCode: plain,
        TotalCents: total,
        CreatedAt:  order.CreatedAt,
    }, nil
}

// availableFor computes an item's truly available quantity for this
// customer at checkout: for packages, stock minus other customers'
// active holds; for foods, raw stock.
func (s *OrderService) availableFor(ctx context.Context, it CartItem, customerID uint64, now time.Time) (uint32, error) {
    if it.PackageID != 0 {
        pkg, err := s.packages.GetByID(ctx, it.PackageID)
        if err != nil {
            return 0, err
        }
        others, err := s.holds.ActiveQuantityExcluding(ctx, it.PackageID, customerID, now)
        if err != nil {
            return 0, err
        }
        if others >= pkg.Stock {
            return 0, nil
        }
        return pkg.Stock - others, nil
    }
    food, err := s.foods.GetByID(ctx, it.FoodID)
    if err != nil {
        return 0, err
    }
    return food.Stock, nil
}

func (s *OrderService) decrement(ctx context.Context, it CartItem) error {
    if it.PackageID != 0 {
        return s.packages.DecrementStock(ctx, it.PackageID, it.Quantity)
    }
    return s.foods.DecrementStock(ctx, it.FoodID, it.Quantity)
}

// increment compensates an applied decrement during rollback.  Errors
// are swallowed: the compensating write has no caller-visible
// recovery and stock drift is preferable to aborting the rollback of
// the remaining items.
func (s *OrderService) increment(ctx context.Context, it CartItem) {
    if it.PackageID != 0 {
        _ = s.packages.IncrementStock(ctx, it.PackageID, it.Quantity)
        return
    }
    _ = s.foods.IncrementStock(ctx, it.FoodID, it.Quantity)
}

// PickupCode returns the current plaintext code and its expiry for an
// order owned by customerID.  ErrCodeExpired means the code aged out
// (or the plaintext cache has been scrubbed) and the caller should
// retry after the next rotation.
func (s *OrderService) PickupCode(ctx context.Context, customerID, orderID uint64) (PickupCodeInfo, error) {
    o, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return PickupCodeInfo{}, err
    }
    if o.CustomerID != customerID {
        return PickupCodeInfo{}, repository.ErrForbidden
    }
    if o.Status != model.OrderConfirmed && o.Status != model.OrderReady {
        return PickupCodeInfo{}, repository.ErrConflict
    }
    now := s.now()
    if o.CodePlain == nil || pickup.CodeExpired(o.CodeIssuedAt, s.codeWindow, now) {
        return PickupCodeInfo{}, ErrCodeExpired
    }
    return PickupCodeInfo{
        Code:      *o.CodePlain,
        ExpiresAt: o.CodeIssuedAt.Add(s.codeWindow),
    }, nil
}

// Redeem matches a presented code against the company's open orders
// and marks the first match PICKED.  The scan skips orders without a
// code or with an expired one, takes a plaintext-equality fast path
// when the cache is present, and otherwise verifies against the
// bcrypt hash.  The status transition is conditional, so even two
// racing redemptions of the same code produce exactly one PICKED
// order.  No global code index exists; correctness relies on
// per-seller collisions being rare within the short validity window.
func (s *OrderService) Redeem(ctx context.Context, companyID uint64, candidate string) (RedeemResult, error) {
    open, err := s.orders.ListByCompanyStatus(ctx, companyID, redeemableStatuses)
    if err != nil {
        return RedeemResult{}, err
    }
    now := s.now()
    for _, o := range open {
        if o.CodeHash == nil || pickup.CodeExpired(o.CodeIssuedAt, s.codeWindow, now) {
            continue
        }
        if o.CodePlain != nil && *o.CodePlain != "" {
            if *o.CodePlain != candidate {
                continue
            }
        } else if !pickup.VerifyCode(candidate, *o.CodeHash) {
            continue
        }
        pickedAt := s.now()
        if err := s.orders.TransitionStatus(ctx, o.ID, redeemableStatuses, model.OrderPicked, &pickedAt); err != nil {
            if err == repository.ErrConflict {
                continue // lost the race to a parallel redemption, keep scanning
            }
            return RedeemResult{}, err
        }
        o.Status = model.OrderPicked
        o.PickedAt = &pickedAt
        buyer, err := s.users.GetByID(ctx, o.CustomerID)
        if err != nil {
            return RedeemResult{Order: o, PickedAt: pickedAt}, nil
        }
        return RedeemResult{
            Order:    o,
            Buyer:    buyer.FullName,
            Phone:    buyer.Phone,
            Email:    buyer.Email,
            PickedAt: pickedAt,
        }, nil
    }
    return RedeemResult{}, ErrNoMatchingOrder
}

// MarkReady advances a company's order from CONFIRMED to READY.
func (s *OrderService) MarkReady(ctx context.Context, companyID, orderID uint64) error {
    o, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return err
    }
    if o.CompanyID != companyID {
        return repository.ErrForbidden
    }
    return s.orders.TransitionStatus(ctx, orderID, model.TransitionsInto(model.OrderReady), model.OrderReady, nil)
}

// Cancel moves an order to CANCELLED from any pre-PICKED state.  The
// actor must be the buying customer or the selling company.
func (s *OrderService) Cancel(ctx context.Context, actorID, orderID uint64) error {
    o, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return err
    }
    if o.CustomerID != actorID && o.CompanyID != actorID {
        return repository.ErrForbidden
    }
    return s.orders.TransitionStatus(ctx, orderID, model.TransitionsInto(model.OrderCancelled), model.OrderCancelled, nil)
}

// ListForCustomer returns the customer's own orders.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID uint64) ([]model.Order, error) {
    return s.orders.ListByCustomer(ctx, customerID)
}

// ListOpenForCompany returns the company's orders still awaiting pickup.
func (s *OrderService) ListOpenForCompany(ctx context.Context, companyID uint64) ([]model.Order, error) {
    return s.orders.ListByCompanyStatus(ctx, companyID, redeemableStatuses)
}

// Get returns one order visible to the given actor (buyer or seller).
func (s *OrderService) Get(ctx context.Context, actorID, orderID uint64) (model.Order, error) {
    o, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return model.Order{}, err
    }
    if o.CustomerID != actorID && o.CompanyID != actorID {
        return model.Order{}, repository.ErrForbidden
    }
    return o, nil
}
