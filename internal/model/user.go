package model

import "time"

// User represents an application user record as stored in the
// `users` table. Only authentication credentials live here;
// everything a user owns beyond credentials (display name, phone,
// prasad flag) lives in the Profile struct, mirroring the split
// between the identity provider and the profiles table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (stored lowercased).
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile holds mutable user-owned data distinct from the
// authentication credentials.  One row per user, created together
// with the user record.  HasOrderedPrasad is a one-way flag: once a
// prasad order completes it is set and never cleared.
//
// Fields:
//  UserID           – primary key, references users.id.
//  FullName         – display name shown in the app.
//  Phone            – contact phone number (optional).
//  HasOrderedPrasad – whether the user has completed a prasad order.
//  UpdatedAt        – timestamp of last update.
type Profile struct {
	UserID           uint64    // profiles.user_id
	FullName         string    // profiles.full_name
	Phone            string    // profiles.phone
	HasOrderedPrasad bool      // profiles.has_ordered_prasad
	UpdatedAt        time.Time // profiles.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
