package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/repository"
    "github.com/lastbite/lastbite/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWTAuth stores the claim value as whatever type the JSON
// decoder produced, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid path id")
    }
    return id, nil
}

// fail translates the service/repository error taxonomy into a
// structured JSON failure response.  Conflict and expired errors carry
// enough detail for the caller to decide whether to retry or
// re-browse; everything unrecognized is reported as an opaque 500.
func fail(c echo.Context, err error) error {
    var insufficient *service.InsufficientStockError
    if errors.As(err, &insufficient) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":      "insufficient stock",
            "package_id": insufficient.PackageID,
            "food_id":    insufficient.FoodID,
            "requested":  insufficient.Requested,
            "available":  insufficient.Available,
        })
    }
    var raced *service.StockConflictError
    if errors.As(err, &raced) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":      "stock conflict, retry the order",
            "package_id": raced.PackageID,
            "food_id":    raced.FoodID,
            "requested":  raced.Requested,
            "available":  raced.Available,
        })
    }
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, service.ErrCodeExpired):
        return c.JSON(http.StatusGone, echo.Map{"error": "pickup code expired, a fresh one is on its way"})
    case errors.Is(err, service.ErrNoMatchingOrder):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no open order matches this code"})
    case errors.Is(err, service.ErrNotPickedUp):
        return c.JSON(http.StatusConflict, echo.Map{"error": "order has not been picked up"})
    case errors.Is(err, service.ErrFeedbackClosed):
        return c.JSON(http.StatusGone, echo.Map{"error": "feedback window has closed"})
    case errors.Is(err, service.ErrEmptyCart),
        errors.Is(err, service.ErrItemReference),
        errors.Is(err, service.ErrMixedCompanies),
        errors.Is(err, service.ErrInvalidQuantity),
        errors.Is(err, service.ErrInvalidScore),
        errors.Is(err, service.ErrEmptyReply):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
