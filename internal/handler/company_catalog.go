package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/repository"
)

// CatalogHandler exposes the seller-side CRUD for packages and foods.
// Every endpoint here runs behind RequireRole(COMPANY); ownership of
// individual rows is still re-checked in the repository.
type CatalogHandler struct {
    Packages *repository.PackageRepo
    Foods    *repository.FoodRepo
}

func NewCatalogHandler(p *repository.PackageRepo, f *repository.FoodRepo) *CatalogHandler {
    return &CatalogHandler{Packages: p, Foods: f}
}

type packageReq struct {
    Name               string  `json:"name"`
    Description        *string `json:"description"`
    OriginalPriceCents uint32  `json:"original_price_cents"`
    PriceCents         uint32  `json:"price_cents"`
    Stock              uint32  `json:"stock"`
    IsAvailable        *bool   `json:"is_available"`
    ImageURL           *string `json:"image_url"`
}

type foodReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
    PriceCents  uint32  `json:"price_cents"`
    Stock       uint32  `json:"stock"`
    IsAvailable *bool   `json:"is_available"`
    ImageURL    *string `json:"image_url"`
}

func (h *CatalogHandler) CreatePackage(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req packageReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if req.PriceCents == 0 || req.PriceCents > req.OriginalPriceCents {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive and not above original price"})
    }

    p := model.Package{
        CompanyID:          companyID,
        Name:               req.Name,
        Description:        req.Description,
        OriginalPriceCents: req.OriginalPriceCents,
        PriceCents:         req.PriceCents,
        Stock:              req.Stock,
        IsAvailable:        req.IsAvailable == nil || *req.IsAvailable,
        ImageURL:           req.ImageURL,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Packages.Create(ctx, &p); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdatePackage(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req packageReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if req.PriceCents == 0 || req.PriceCents > req.OriginalPriceCents {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive and not above original price"})
    }

    p := model.Package{
        ID:                 id,
        Name:               req.Name,
        Description:        req.Description,
        OriginalPriceCents: req.OriginalPriceCents,
        PriceCents:         req.PriceCents,
        Stock:              req.Stock,
        IsAvailable:        req.IsAvailable == nil || *req.IsAvailable,
        ImageURL:           req.ImageURL,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Packages.Update(ctx, companyID, &p); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

func (h *CatalogHandler) DeletePackage(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Packages.Delete(ctx, companyID, id); err != nil {
        return fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// MyPackages lists the authenticated company's own listings,
// including unavailable ones that public browsing hides.
func (h *CatalogHandler) MyPackages(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    items, err := h.Packages.ListByCompany(ctx, companyID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"packages": items})
}

func (h *CatalogHandler) CreateFood(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req foodReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
    }

    f := model.Food{
        CompanyID:   companyID,
        Name:        req.Name,
        Description: req.Description,
        PriceCents:  req.PriceCents,
        Stock:       req.Stock,
        IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
        ImageURL:    req.ImageURL,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Foods.Create(ctx, &f); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
    }
    return c.JSON(http.StatusCreated, f)
}

func (h *CatalogHandler) UpdateFood(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req foodReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must be positive"})
    }

    f := model.Food{
        ID:          id,
        Name:        req.Name,
        Description: req.Description,
        PriceCents:  req.PriceCents,
        Stock:       req.Stock,
        IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
        ImageURL:    req.ImageURL,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Foods.Update(ctx, companyID, &f); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

func (h *CatalogHandler) DeleteFood(c echo.Context) error {
    companyID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    if err := h.Foods.Delete(ctx, companyID, id); err != nil {
        return fail(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
