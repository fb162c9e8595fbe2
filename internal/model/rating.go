package model

import "time"

// Rating is a customer's one-time feedback on a picked-up order.
// The (OrderID, CustomerID) pair is unique.  The seller may attach
// exactly one reply; once Reply is non-nil it can never change.
type Rating struct {
    ID         uint64    // ratings.id
    OrderID    uint64    // ratings.order_id
    CustomerID uint64    // ratings.customer_id
    Score      uint8     // ratings.score, in [1,5]
    Comment    *string   // ratings.comment (nullable)
    Reply      *string   // ratings.reply (nullable, settable once)
    CreatedAt  time.Time // ratings.created_at
    UpdatedAt  time.Time // ratings.updated_at
}
