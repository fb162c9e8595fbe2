// Package pickup implements the rotating numeric pickup code: a
// short-lived 6-digit credential a customer shows at the counter to
// prove physical presence.  Only a bcrypt hash of the code is treated
// as authoritative; the plaintext survives just long enough to be
// re-displayed to the customer and is overwritten at the next
// rotation.
package pickup

import (
    "crypto/rand"
    "time"

    "golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of decimal digits in a pickup code.
// Leading zeros are allowed, so the code space is exactly 10^6.
const CodeLength = 6

const digits = "0123456789"

// GenerateCode produces a fresh pickup code.  Each digit is drawn
// uniformly from 0-9 via crypto/rand.  The returned hash is a bcrypt
// digest at the given cost; the cost balances brute-force resistance
// against the redemption scan, which verifies the candidate against
// every open order of a seller.
func GenerateCode(cost int) (plain string, hash string, err error) {
    buf := make([]byte, CodeLength)
    if _, err := rand.Read(buf); err != nil {
        return "", "", err
    }
    code := make([]byte, CodeLength)
    for i := range buf {
        // A byte spans 0-255, so bare modulo would skew digits 0-5.
        // Redraw any byte outside the largest multiple of 10.
        for buf[i] >= 250 {
            var one [1]byte
            if _, err := rand.Read(one[:]); err != nil {
                return "", "", err
            }
            buf[i] = one[0]
        }
        code[i] = digits[int(buf[i])%len(digits)]
    }
    h, err := bcrypt.GenerateFromPassword(code, cost)
    if err != nil {
        return "", "", err
    }
    return string(code), string(h), nil
}

// VerifyCode reports whether candidate hashes to the stored bcrypt
// digest.  It never errors: malformed candidates, empty inputs and
// garbage hashes all verify as false.
func VerifyCode(candidate, hash string) bool {
    if candidate == "" || hash == "" {
        return false
    }
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// CodeExpired reports whether a code issued at issuedAt has aged past
// the validity window at the given instant.  A nil issuedAt means no
// code was ever generated, which counts as expired.
func CodeExpired(issuedAt *time.Time, window time.Duration, now time.Time) bool {
    if issuedAt == nil {
        return true
    }
    return now.Sub(*issuedAt) > window
}
