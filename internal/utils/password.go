package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes plain at the given work factor.  A cost
// below bcrypt.MinCost falls back to bcrypt.DefaultCost so a missing
// configuration value cannot silently weaken stored credentials.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt
// hash.  The comparison is constant time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
