package utils

import (
    "testing"

    "golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
    hash, err := HashPassword("hunter2", bcrypt.MinCost)
    if err != nil {
        t.Fatalf("HashPassword: %v", err)
    }
    if !VerifyPassword(hash, "hunter2") {
        t.Fatal("hash does not verify against its own password")
    }
    if VerifyPassword(hash, "hunter3") {
        t.Fatal("wrong password verified")
    }
}

func TestHashPasswordCostFallback(t *testing.T) {
    hash, err := HashPassword("hunter2", 0)
    if err != nil {
        t.Fatalf("HashPassword with zero cost: %v", err)
    }
    cost, err := bcrypt.Cost([]byte(hash))
    if err != nil {
        t.Fatalf("Cost: %v", err)
    }
    if cost != bcrypt.DefaultCost {
        t.Fatalf("cost = %d, want fallback to %d", cost, bcrypt.DefaultCost)
    }
}
