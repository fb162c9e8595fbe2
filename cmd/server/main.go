package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/lastbite/lastbite/internal/config"
    "github.com/lastbite/lastbite/internal/database"
    "github.com/lastbite/lastbite/internal/handler"
    "github.com/lastbite/lastbite/internal/pickup"
    "github.com/lastbite/lastbite/internal/queue"
    "github.com/lastbite/lastbite/internal/repository"
    "github.com/lastbite/lastbite/internal/router"
    "github.com/lastbite/lastbite/internal/service"
    "github.com/lastbite/lastbite/internal/upload"
)

func main() {
    _ = godotenv.Load() // .env is optional, real environments set vars directly

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("open database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient() // nil when no Redis is reachable

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    packages := repository.NewPackageRepo(db)
    foods := repository.NewFoodRepo(db)
    holds := repository.NewReservationRepo(db)
    orders := repository.NewOrderRepo(db)
    ratings := repository.NewRatingRepo(db)

    reservations := service.NewReservationService(packages, holds, cfg.ReservationTTL)
    orderSvc := service.NewOrderService(packages, foods, holds, orders, users, cfg.CodeTTL, cfg.CodeHashCost)
    ratingSvc := service.NewRatingService(ratings, orders, packages, cfg.RatingGrace)

    uploads, err := upload.NewStore(cfg.UploadDir, cfg.UploadBaseURL)
    if err != nil {
        log.Fatalf("init upload store: %v", err)
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Background code rotation keeps every order awaiting pickup
    // supplied with a fresh code; expired holds are purged on the
    // same cadence.
    rotator := pickup.NewRotator(orders, holds, cfg.RotateInterval, cfg.CodeTTL, cfg.CodeHashCost)
    go rotator.Run(ctx)

    go func() {
        if err := queue.StartOrderConsumer(); err != nil {
            log.Printf("order consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterPublic(e, handler.NewBrowseHandler(packages, foods, reservations), rdb)
    router.RegisterCustomer(e,
        handler.NewReservationHandler(reservations),
        handler.NewOrderHandler(orderSvc, ratingSvc),
        cfg.JWTSecret)
    router.RegisterCompany(e,
        handler.NewCatalogHandler(packages, foods),
        handler.NewCompanyOrderHandler(orderSvc, ratingSvc),
        handler.NewUploadHandler(uploads),
        cfg.JWTSecret, rdb)
    e.Static(cfg.UploadBaseURL, cfg.UploadDir)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
