package model

import "time"

// Role names as stored in the users table and carried in JWT claims.
const (
    RoleCustomer = "CUSTOMER" // buyers who reserve and pick up packages
    RoleCompany  = "COMPANY"  // sellers who list surplus food and redeem codes
)

// User represents an application user record as stored in the
// `users` table.  A user is either a customer or a company; the
// role decides which endpoints the user may call.  FullName and
// Phone form the contact summary shown to a company when one of
// its orders is redeemed.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – CUSTOMER or COMPANY.
//  FullName     – display name (company name for sellers).
//  Phone        – contact phone number, may be empty.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    FullName     string    // users.full_name
    Phone        string    // users.phone
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
