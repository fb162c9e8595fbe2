package handler

import (
    "encoding/json"
    "strings"
    "testing"
    "time"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/service"
)

func secretOrder() model.Order {
    hash := "$2a$06$abcdefghijklmnopqrstuv"
    plain := "123456"
    issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    pkgID := uint64(7)
    return model.Order{
        ID:           1,
        Reference:    "ref-1",
        CustomerID:   1,
        CompanyID:    100,
        Items:        []model.OrderItem{{PackageID: &pkgID, Quantity: 2, UnitPriceCents: 499}},
        TotalCents:   998,
        Status:       model.OrderConfirmed,
        CodeHash:     &hash,
        CodePlain:    &plain,
        CodeIssuedAt: &issued,
        CreatedAt:    issued,
    }
}

func TestOrderViewOmitsCodeSecrets(t *testing.T) {
    o := secretOrder()
    body, err := json.Marshal(newOrderView(o))
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    s := string(body)
    for _, leak := range []string{*o.CodeHash, *o.CodePlain, "CodeHash", "CodePlain", "code_hash", "code_plain"} {
        if strings.Contains(s, leak) {
            t.Fatalf("order view leaks %q: %s", leak, s)
        }
    }
    for _, want := range []string{`"reference":"ref-1"`, `"total_cents":998`, `"status":"CONFIRMED"`, `"package_id":7`, `"unit_price_cents":499`} {
        if !strings.Contains(s, want) {
            t.Fatalf("order view missing %s: %s", want, s)
        }
    }
}

func TestOrderViewsCoverList(t *testing.T) {
    views := newOrderViews([]model.Order{secretOrder(), secretOrder()})
    if len(views) != 2 {
        t.Fatalf("views = %d, want 2", len(views))
    }
    body, err := json.Marshal(views)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if strings.Contains(string(body), "123456") {
        t.Fatalf("list view leaks plaintext code: %s", body)
    }
}

func TestRedeemRespOmitsCodeSecrets(t *testing.T) {
    picked := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
    result := service.RedeemResult{
        Order:    secretOrder(),
        Buyer:    "Anna Riva",
        Phone:    "555-0101",
        Email:    "anna@example.com",
        PickedAt: picked,
    }
    body, err := json.Marshal(newRedeemResp(result))
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    s := string(body)
    if strings.Contains(s, "123456") || strings.Contains(s, "$2a$") {
        t.Fatalf("redeem response leaks code material: %s", s)
    }
    for _, want := range []string{`"buyer":"Anna Riva"`, `"phone":"555-0101"`, `"order":{`} {
        if !strings.Contains(s, want) {
            t.Fatalf("redeem response missing %s: %s", want, s)
        }
    }
}
