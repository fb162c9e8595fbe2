package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

func reservationFixture(t *testing.T, stock uint32) (*ReservationService, *memPackages, *memHolds) {
    t.Helper()
    pkgs := newMemPackages()
    pkgs.put(model.Package{ID: 1, CompanyID: 100, Name: "Surprise Bag", PriceCents: 499, Stock: stock, IsAvailable: true})
    holds := newMemHolds()
    return NewReservationService(pkgs, holds, 10*time.Minute), pkgs, holds
}

func TestSetHoldReducesPublicAvailability(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)

    res, err := svc.Set(ctx, 1, 1, 3)
    if err != nil {
        t.Fatalf("set hold: %v", err)
    }
    if res.Quantity != 3 {
        t.Fatalf("quantity = %d, want 3", res.Quantity)
    }

    avail, err := svc.Availability(ctx, 1)
    if err != nil {
        t.Fatalf("availability: %v", err)
    }
    if avail != 2 {
        t.Fatalf("public availability = %d, want 2", avail)
    }

    // The holder's own view excludes their hold.
    own, err := svc.AvailabilityFor(ctx, 1, 1)
    if err != nil {
        t.Fatalf("availability for holder: %v", err)
    }
    if own != 5 {
        t.Fatalf("holder availability = %d, want 5", own)
    }
}

func TestSetHoldRejectsOverclaim(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)

    if _, err := svc.Set(ctx, 1, 1, 3); err != nil {
        t.Fatalf("first hold: %v", err)
    }
    _, err := svc.Set(ctx, 2, 1, 3)
    var ins *InsufficientStockError
    if !errors.As(err, &ins) {
        t.Fatalf("expected InsufficientStockError, got %v", err)
    }
    if ins.Available != 2 || ins.Requested != 3 {
        t.Fatalf("error detail = %d/%d, want available 2 requested 3", ins.Available, ins.Requested)
    }
}

func TestSetHoldReplacesExisting(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)

    if _, err := svc.Set(ctx, 1, 1, 4); err != nil {
        t.Fatalf("initial hold: %v", err)
    }
    // Shrinking is judged against other customers only, so this must
    // pass even though 4 are nominally held.
    if _, err := svc.Set(ctx, 1, 1, 2); err != nil {
        t.Fatalf("shrink hold: %v", err)
    }
    avail, err := svc.Availability(ctx, 1)
    if err != nil {
        t.Fatalf("availability: %v", err)
    }
    if avail != 3 {
        t.Fatalf("availability = %d, want 3 after shrink", avail)
    }
}

func TestSetHoldZeroReleases(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)

    if _, err := svc.Set(ctx, 1, 1, 5); err != nil {
        t.Fatalf("hold: %v", err)
    }
    res, err := svc.Set(ctx, 1, 1, 0)
    if err != nil {
        t.Fatalf("release: %v", err)
    }
    if res != nil {
        t.Fatalf("expected nil reservation on release, got %+v", res)
    }
    avail, _ := svc.Availability(ctx, 1)
    if avail != 5 {
        t.Fatalf("availability = %d, want 5 after release", avail)
    }
}

func TestExpiredHoldFreesStock(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)

    base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    svc.now = func() time.Time { return base }
    if _, err := svc.Set(ctx, 1, 1, 5); err != nil {
        t.Fatalf("hold: %v", err)
    }

    svc.now = func() time.Time { return base.Add(5 * time.Minute) }
    if avail, _ := svc.Availability(ctx, 1); avail != 0 {
        t.Fatalf("availability = %d before expiry, want 0", avail)
    }

    svc.now = func() time.Time { return base.Add(11 * time.Minute) }
    if avail, _ := svc.Availability(ctx, 1); avail != 5 {
        t.Fatalf("availability = %d after expiry, want 5", avail)
    }

    // The freed stock is claimable by someone else.
    if _, err := svc.Set(ctx, 2, 1, 5); err != nil {
        t.Fatalf("hold after expiry: %v", err)
    }
}

func TestSetHoldUnknownPackage(t *testing.T) {
    ctx := context.Background()
    svc, _, _ := reservationFixture(t, 5)
    if _, err := svc.Set(ctx, 1, 999, 1); err == nil {
        t.Fatal("expected error for unknown package")
    }
}
