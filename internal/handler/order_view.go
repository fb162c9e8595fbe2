package handler

import (
    "time"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/service"
)

// orderView is the wire shape of an order.  Models carry no json tags
// on purpose; this view exists so responses stay snake_case and never
// include the code columns.  The plaintext code is only ever served
// by the dedicated code endpoint, to the buying customer.
type orderView struct {
    ID         uint64            `json:"id"`
    Reference  string            `json:"reference"`
    CustomerID uint64            `json:"customer_id"`
    CompanyID  uint64            `json:"company_id"`
    Items      []orderItemView   `json:"items"`
    TotalCents uint32            `json:"total_cents"`
    Status     model.OrderStatus `json:"status"`
    PickedAt   *time.Time        `json:"picked_at,omitempty"`
    CreatedAt  time.Time         `json:"created_at"`
}

type orderItemView struct {
    PackageID      *uint64 `json:"package_id,omitempty"`
    FoodID         *uint64 `json:"food_id,omitempty"`
    Quantity       uint32  `json:"quantity"`
    UnitPriceCents uint32  `json:"unit_price_cents"`
}

func newOrderView(o model.Order) orderView {
    v := orderView{
        ID:         o.ID,
        Reference:  o.Reference,
        CustomerID: o.CustomerID,
        CompanyID:  o.CompanyID,
        TotalCents: o.TotalCents,
        Status:     o.Status,
        PickedAt:   o.PickedAt,
        CreatedAt:  o.CreatedAt,
    }
    for _, it := range o.Items {
        v.Items = append(v.Items, orderItemView{
            PackageID:      it.PackageID,
            FoodID:         it.FoodID,
            Quantity:       it.Quantity,
            UnitPriceCents: it.UnitPriceCents,
        })
    }
    return v
}

func newOrderViews(orders []model.Order) []orderView {
    out := make([]orderView, 0, len(orders))
    for _, o := range orders {
        out = append(out, newOrderView(o))
    }
    return out
}

// redeemResp pairs the redeemed order view with the buyer contact
// summary for handover.
type redeemResp struct {
    Order    orderView `json:"order"`
    Buyer    string    `json:"buyer"`
    Phone    string    `json:"phone"`
    Email    string    `json:"email"`
    PickedAt time.Time `json:"picked_at"`
}

func newRedeemResp(r service.RedeemResult) redeemResp {
    return redeemResp{
        Order:    newOrderView(r.Order),
        Buyer:    r.Buyer,
        Phone:    r.Phone,
        Email:    r.Email,
        PickedAt: r.PickedAt,
    }
}
