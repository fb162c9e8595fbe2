package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/queue"
    "github.com/lastbite/lastbite/internal/service"
)

// OrderHandler covers the customer side of an order's life: checkout,
// fetching the rotating pickup code, listing, cancelling and rating.
type OrderHandler struct {
    Orders  *service.OrderService
    Ratings *service.RatingService
}

func NewOrderHandler(o *service.OrderService, r *service.RatingService) *OrderHandler {
    return &OrderHandler{Orders: o, Ratings: r}
}

type checkoutReq struct {
    Items []service.CartItem `json:"items"`
}

type ratingReq struct {
    Score   uint8   `json:"score"`
    Comment *string `json:"comment"`
}

// Checkout commits the cart.  On success the response carries the
// plaintext pickup code; on a concurrent sell-out the 409 body names
// the losing item and its remaining availability.
func (h *OrderHandler) Checkout(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req checkoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    result, err := h.Orders.Commit(ctx, customerID, req.Items)
    if err != nil {
        return fail(c, err)
    }

    // Best effort: a broker outage must not fail a paid checkout.
    go func() {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer pubCancel()
        if err := queue.PublishOrderConfirmed(pubCtx, queue.OrderConfirmedEvent{
            OrderID:     result.OrderID,
            Reference:   result.Reference,
            CustomerID:  customerID,
            CompanyID:   result.CompanyID,
            ItemCount:   len(req.Items),
            TotalCents:  result.TotalCents,
            ConfirmedAt: result.CreatedAt.UTC().Format(time.RFC3339),
        }); err != nil {
            log.Printf("publish order.confirmed: %v", err)
        }
    }()

    return c.JSON(http.StatusCreated, result)
}

// PickupCode returns the currently valid code for one of the
// caller's orders, or 410 when the window has lapsed and the next
// rotation has not landed yet.
func (h *OrderHandler) PickupCode(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    info, err := h.Orders.PickupCode(ctx, customerID, orderID)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, info)
}

// MyOrders lists all of the caller's orders, newest first.
func (h *OrderHandler) MyOrders(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    orders, err := h.Orders.ListForCustomer(ctx, customerID)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": newOrderViews(orders)})
}

// GetOrder returns one order if the caller is its buyer or seller.
func (h *OrderHandler) GetOrder(c echo.Context) error {
    actorID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    order, err := h.Orders.Get(ctx, actorID, orderID)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, newOrderView(order))
}

// Cancel voids an order that has not been picked up yet.
func (h *OrderHandler) Cancel(c echo.Context) error {
    actorID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Orders.Cancel(ctx, actorID, orderID); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"cancelled": true})
}

// Rate attaches the one-time feedback to a picked-up order and
// completes it.
func (h *OrderHandler) Rate(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req ratingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rating, err := h.Ratings.Create(ctx, customerID, orderID, req.Score, req.Comment)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, rating)
}
