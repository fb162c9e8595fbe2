package pickup

import (
    "testing"
    "time"

    "golang.org/x/crypto/bcrypt"
)

func TestGenerateCodeShape(t *testing.T) {
    for i := 0; i < 20; i++ {
        plain, hash, err := GenerateCode(bcrypt.MinCost)
        if err != nil {
            t.Fatalf("generate: %v", err)
        }
        if len(plain) != CodeLength {
            t.Fatalf("code %q is not %d characters", plain, CodeLength)
        }
        for _, r := range plain {
            if r < '0' || r > '9' {
                t.Fatalf("code %q contains non-digit %q", plain, r)
            }
        }
        if !VerifyCode(plain, hash) {
            t.Fatalf("fresh code %q does not verify against its own hash", plain)
        }
    }
}

func TestVerifyCodeRejects(t *testing.T) {
    plain, hash, err := GenerateCode(bcrypt.MinCost)
    if err != nil {
        t.Fatalf("generate: %v", err)
    }

    wrong := "000000"
    if wrong == plain {
        wrong = "000001"
    }
    if VerifyCode(wrong, hash) {
        t.Fatal("wrong code verified")
    }
    if VerifyCode("", hash) {
        t.Fatal("empty candidate verified")
    }
    if VerifyCode(plain, "") {
        t.Fatal("empty hash verified")
    }
    if VerifyCode(plain, "not-a-bcrypt-hash") {
        t.Fatal("garbage hash verified")
    }
}

func TestCodeExpired(t *testing.T) {
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    window := 2 * time.Minute

    if !CodeExpired(nil, window, now) {
        t.Fatal("nil issuedAt must count as expired")
    }

    fresh := now.Add(-time.Minute)
    if CodeExpired(&fresh, window, now) {
        t.Fatal("code inside the window reported expired")
    }

    edge := now.Add(-window)
    if CodeExpired(&edge, window, now) {
        t.Fatal("code exactly at the window boundary reported expired")
    }

    stale := now.Add(-window - time.Second)
    if !CodeExpired(&stale, window, now) {
        t.Fatal("stale code reported valid")
    }
}
