// Package session implements the authentication state machine: a
// single in-process holder of the current session and profile,
// observable by every consumer through a subscribe/notify interface.
// Credential verification itself is delegated to a Provider; the
// machine owns only the cached state and its transitions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Nota0515/bhakti/internal/model"
)

// Classified authentication failures. Providers translate their
// underlying errors into these sentinels so callers never have to
// inspect driver errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrWeakSecret         = errors.New("password does not meet policy")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrRemoteUnavailable  = errors.New("identity provider unavailable")
)

// Session is a time-bounded proof of authentication issued by the
// provider. The machine holds a cached copy; the provider remains the
// owner. A non-nil Session always stems from a successful SignIn or
// Recover call.
type Session struct {
	UserID       uint64
	Email        string
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// SignUpResult reports the outcome of a successful SignUp. When the
// provider enforces a confirmation-required policy, no session is
// issued yet and RequiresConfirmation is true; the caller stays
// anonymous until the account is confirmed.
type SignUpResult struct {
	Session              Session
	Profile              model.Profile
	RequiresConfirmation bool
}

// Provider is the remote identity and profile store behind the state
// machine. Exactly one production implementation exists (SQLProvider);
// tests substitute in-memory fakes.
type Provider interface {
	// SignUp creates a new identity. It returns true when the account
	// requires out-of-band confirmation before it can sign in.
	SignUp(ctx context.Context, email, password, fullName string) (requiresConfirmation bool, err error)
	// SignIn verifies credentials and issues a fresh session.
	SignIn(ctx context.Context, email, password string) (Session, error)
	// SignOut invalidates the session on the provider side.
	SignOut(ctx context.Context, s Session) error
	// Recover exchanges a persisted refresh token for a live session.
	Recover(ctx context.Context, refreshToken string) (Session, error)
	// FetchProfile loads the profile owned by a user.
	FetchProfile(ctx context.Context, userID uint64) (model.Profile, error)
	// UpdateProfile replaces the mutable profile fields and returns the
	// stored result.
	UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) (model.Profile, error)
}
