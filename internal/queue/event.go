// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that moves them.
package queue

// OrderConfirmedEvent is published when a checkout commits successfully.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type OrderConfirmedEvent struct {
    OrderID     uint64 `json:"order_id"`
    Reference   string `json:"reference"`
    CustomerID  uint64 `json:"customer_id"`
    CompanyID   uint64 `json:"company_id"`
    ItemCount   int    `json:"item_count"`
    TotalCents  uint32 `json:"total_cents"`
    ConfirmedAt string `json:"confirmed_at"`
}

// OrderPickedEvent is published when a seller redeems a pickup code
// and the order leaves the rotation set.
type OrderPickedEvent struct {
    OrderID    uint64 `json:"order_id"`
    Reference  string `json:"reference"`
    CustomerID uint64 `json:"customer_id"`
    CompanyID  uint64 `json:"company_id"`
    PickedAt   string `json:"picked_at"`
}
