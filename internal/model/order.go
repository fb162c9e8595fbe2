package model

import "time"

// OrderStatus enumerates the pickup lifecycle of an order.
type OrderStatus string

const (
    OrderPending   OrderStatus = "PENDING"
    OrderConfirmed OrderStatus = "CONFIRMED"
    OrderReady     OrderStatus = "READY"
    OrderPicked    OrderStatus = "PICKED"
    OrderCompleted OrderStatus = "COMPLETED"
    OrderCancelled OrderStatus = "CANCELLED"
)

// validNext captures the allowed status transitions.  CANCELLED is
// reachable from every pre-PICKED state; PICKED and COMPLETED are
// never cancelled.
var validNext = map[OrderStatus]map[OrderStatus]bool{
    OrderPending:   {OrderConfirmed: true, OrderCancelled: true},
    OrderConfirmed: {OrderReady: true, OrderPicked: true, OrderCancelled: true},
    OrderReady:     {OrderPicked: true, OrderCancelled: true},
    OrderPicked:    {OrderCompleted: true},
    OrderCompleted: {},
    OrderCancelled: {},
}

// CanTransition reports whether an order may move from one status
// to another.
func CanTransition(from, to OrderStatus) bool {
    return validNext[from][to]
}

// statusOrder fixes the enumeration order for TransitionsInto so the
// derived lists are deterministic.
var statusOrder = []OrderStatus{
    OrderPending, OrderConfirmed, OrderReady,
    OrderPicked, OrderCompleted, OrderCancelled,
}

// TransitionsInto returns every status allowed to move into target.
// Services feed these lists to conditional status updates, so the
// transition map stays the single source of the lifecycle.
func TransitionsInto(target OrderStatus) []OrderStatus {
    var from []OrderStatus
    for _, s := range statusOrder {
        if validNext[s][target] {
            from = append(from, s)
        }
    }
    return from
}

// Order is the durable result of committing a cart.  It owns its
// line items, carries the one-company invariant (every item refers
// to a listing of CompanyID), and holds the rotating pickup code:
// CodeHash is a bcrypt hash of the current code, CodePlain is a
// short-lived plaintext cache for re-display to the customer and is
// overwritten at the next rotation, CodeIssuedAt stamps when the
// current code was generated.  Orders are never deleted.
type Order struct {
    ID           uint64      // orders.id
    Reference    string      // orders.reference (uuid, customer-facing)
    CustomerID   uint64      // orders.customer_id
    CompanyID    uint64      // orders.company_id
    Items        []OrderItem // owned line items
    TotalCents   uint32      // orders.total_cents
    Status       OrderStatus // orders.status
    CodeHash     *string     // orders.code_hash (nullable until first rotation)
    CodePlain    *string     // orders.code_plain (nullable, re-display cache)
    CodeIssuedAt *time.Time  // orders.code_issued_at (nullable)
    PickedAt     *time.Time  // orders.picked_at (nullable)
    CreatedAt    time.Time   // orders.created_at
    UpdatedAt    time.Time   // orders.updated_at
}

// OrderItem is a single line of an order.  Exactly one of
// PackageID and FoodID is set.
type OrderItem struct {
    ID             uint64  // order_items.id
    OrderID        uint64  // order_items.order_id
    PackageID      *uint64 // order_items.package_id (nullable)
    FoodID         *uint64 // order_items.food_id (nullable)
    Quantity       uint32  // order_items.quantity, always >= 1
    UnitPriceCents uint32  // order_items.unit_price_cents
}
