package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/queue"
    "github.com/lastbite/lastbite/internal/service"
)

// CompanyOrderHandler is the seller side of an order: redeeming a
// presented pickup code, marking orders ready, listing open orders
// and replying to ratings.
type CompanyOrderHandler struct {
    Orders  *service.OrderService
    Ratings *service.RatingService
}

func NewCompanyOrderHandler(o *service.OrderService, r *service.RatingService) *CompanyOrderHandler {
    return &CompanyOrderHandler{Orders: o, Ratings: r}
}

type redeemReq struct {
    Code string `json:"code"`
}

type replyReq struct {
    Reply string `json:"reply"`
}

// Redeem matches a presented code against the company's orders
// awaiting pickup and, on a hit, transitions that order to PICKED.
// The response carries the buyer's contact summary for handover.
func (h *CompanyOrderHandler) Redeem(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req redeemReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Code = strings.TrimSpace(req.Code)
    if req.Code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    result, err := h.Orders.Redeem(ctx, companyID, req.Code)
    if err != nil {
        return fail(c, err)
    }

    go func() {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer pubCancel()
        if err := queue.PublishOrderPicked(pubCtx, queue.OrderPickedEvent{
            OrderID:    result.Order.ID,
            Reference:  result.Order.Reference,
            CustomerID: result.Order.CustomerID,
            CompanyID:  companyID,
            PickedAt:   result.PickedAt.UTC().Format(time.RFC3339),
        }); err != nil {
            log.Printf("publish order.picked: %v", err)
        }
    }()

    return c.JSON(http.StatusOK, newRedeemResp(result))
}

// MarkReady moves a confirmed order to READY so the customer knows
// the bag is packed.
func (h *CompanyOrderHandler) MarkReady(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Orders.MarkReady(ctx, companyID, orderID); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"ready": true})
}

// OpenOrders lists the company's orders still awaiting pickup,
// oldest first.
func (h *CompanyOrderHandler) OpenOrders(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    orders, err := h.Orders.ListOpenForCompany(ctx, companyID)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": newOrderViews(orders)})
}

// Reply attaches the seller's one-time reply to a rating on one of
// its orders.
func (h *CompanyOrderHandler) Reply(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ratingID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req replyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    rating, err := h.Ratings.Reply(ctx, companyID, ratingID, req.Reply)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, rating)
}
