package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/repository"
    "github.com/lastbite/lastbite/internal/service"
)

// BrowseHandler serves the unauthenticated catalog views.  Listings
// are paginated and searchable by name; package availability reflects
// active soft holds, not just the raw stock column.
type BrowseHandler struct {
    Packages     *repository.PackageRepo
    Foods        *repository.FoodRepo
    Reservations *service.ReservationService
}

func NewBrowseHandler(p *repository.PackageRepo, f *repository.FoodRepo, r *service.ReservationService) *BrowseHandler {
    return &BrowseHandler{Packages: p, Foods: f, Reservations: r}
}

// browsePackage is a Package plus the quantity a new customer could
// actually reserve right now.
type browsePackage struct {
    model.Package
    Available uint32 `json:"available"`
}

func pageParams(c echo.Context) (page, limit int) {
    page, _ = strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    limit, _ = strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 || limit > 100 {
        limit = 20
    }
    return page, limit
}

// ListPackages returns available packages, optionally filtered by a
// case-insensitive substring of the name via ?q=.
func (h *BrowseHandler) ListPackages(c echo.Context) error {
    page, limit := pageParams(c)
    q := strings.TrimSpace(c.QueryParam("q"))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Packages.List(ctx, q, page, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    out := make([]browsePackage, 0, len(items))
    for _, p := range items {
        avail, err := h.Reservations.Availability(ctx, p.ID)
        if err != nil {
            avail = 0
        }
        out = append(out, browsePackage{Package: p, Available: avail})
    }
    return c.JSON(http.StatusOK, echo.Map{"packages": out, "page": page, "limit": limit})
}

// GetPackage returns a single listing with its current availability.
func (h *BrowseHandler) GetPackage(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Packages.GetByID(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    avail, err := h.Reservations.Availability(ctx, p.ID)
    if err != nil {
        avail = 0
    }
    return c.JSON(http.StatusOK, browsePackage{Package: p, Available: avail})
}

// ListFoods returns available food items.  Foods carry no soft holds
// so the stock column alone is the availability.
func (h *BrowseHandler) ListFoods(c echo.Context) error {
    page, limit := pageParams(c)
    q := strings.TrimSpace(c.QueryParam("q"))

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Foods.List(ctx, q, page, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"foods": items, "page": page, "limit": limit})
}

// GetFood returns a single food item.
func (h *BrowseHandler) GetFood(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    f, err := h.Foods.GetByID(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, f)
}
