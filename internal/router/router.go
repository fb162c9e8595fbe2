package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/lastbite/lastbite/internal/config"
    "github.com/lastbite/lastbite/internal/handler"
    "github.com/lastbite/lastbite/internal/middleware"
    "github.com/lastbite/lastbite/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Unauthenticated
// operations live under /v1/auth, while /v1/me requires a valid access
// token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(model.RoleCustomer, model.RoleCompany))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog browse routes.
// Responses are cacheable; when a Redis client is available the cache
// middleware short-circuits repeated reads for the configured TTL.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, rdb *redis.Client) {
    g := e.Group("/v1")
    g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    g.GET("/packages", b.ListPackages)
    g.GET("/packages/:id", b.GetPackage)
    g.GET("/foods", b.ListFoods)
    g.GET("/foods/:id", b.GetFood)
}

// RegisterCompany registers the seller-side routes.  Everything here
// requires a COMPANY access token.  The redeem endpoint additionally
// sits behind the Redis token bucket so a seller terminal cannot be
// used to brute-force six-digit codes.
func RegisterCompany(e *echo.Echo, cat *handler.CatalogHandler, ord *handler.CompanyOrderHandler, up *handler.UploadHandler, jwtSecret string, rdb *redis.Client) {
    g := e.Group("/v1/company")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleCompany))

    g.POST("/packages", cat.CreatePackage)
    g.GET("/packages", cat.MyPackages)
    g.PUT("/packages/:id", cat.UpdatePackage)
    g.DELETE("/packages/:id", cat.DeletePackage)

    g.POST("/foods", cat.CreateFood)
    g.PUT("/foods/:id", cat.UpdateFood)
    g.DELETE("/foods/:id", cat.DeleteFood)

    g.POST("/uploads", up.Image)

    g.GET("/orders", ord.OpenOrders)
    g.POST("/orders/:id/ready", ord.MarkReady)
    g.POST("/orders/redeem", ord.Redeem, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    g.POST("/ratings/:id/reply", ord.Reply)
}

// RegisterCustomer registers the buyer-side routes: soft holds,
// checkout, order views and ratings.
func RegisterCustomer(e *echo.Echo, res *handler.ReservationHandler, ord *handler.OrderHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleCustomer))

    g.PUT("/packages/:id/reservation", res.Set)
    g.GET("/packages/:id/availability", res.Availability)

    g.POST("/orders", ord.Checkout)
    g.GET("/orders", ord.MyOrders)
    g.GET("/orders/:id", ord.GetOrder)
    g.GET("/orders/:id/code", ord.PickupCode)
    g.POST("/orders/:id/cancel", ord.Cancel)
    g.POST("/orders/:id/rating", ord.Rate)
}
