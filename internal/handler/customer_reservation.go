package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/service"
)

// ReservationHandler manages customer soft holds on package stock.
type ReservationHandler struct {
    Reservations *service.ReservationService
}

func NewReservationHandler(r *service.ReservationService) *ReservationHandler {
    return &ReservationHandler{Reservations: r}
}

type reservationReq struct {
    Quantity uint32 `json:"quantity"`
}

// Set creates, replaces or (with quantity 0) releases the caller's
// hold on a package.  PUT semantics: the new quantity fully replaces
// the old one and restarts the hold's expiry clock.
func (h *ReservationHandler) Set(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    packageID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req reservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Reservations.Set(ctx, customerID, packageID, req.Quantity)
    if err != nil {
        return fail(c, err)
    }
    if res == nil {
        return c.JSON(http.StatusOK, echo.Map{"released": true})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "package_id": res.PackageID,
        "quantity":   res.Quantity,
        "expires_at": res.ExpiresAt,
    })
}

// Availability reports how many units of a package the caller could
// still reserve, counting their own active hold as available to them.
func (h *ReservationHandler) Availability(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    packageID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    avail, err := h.Reservations.AvailabilityFor(ctx, packageID, customerID)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"package_id": packageID, "available": avail})
}
