package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nota0515/bhakti/internal/config"
	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/repository"
	"github.com/Nota0515/bhakti/internal/utils"
)

// SQLProvider is the production Provider: MySQL-backed identities with
// bcrypt credential checks, JWT access tokens and rotated refresh
// tokens. It is the single conforming implementation of the Provider
// interface.
type SQLProvider struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Profiles *repository.ProfileRepo
}

func NewSQLProvider(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, p *repository.ProfileRepo) *SQLProvider {
	return &SQLProvider{Cfg: cfg, Users: u, Tokens: t, Profiles: p}
}

// SignUp creates the identity and its profile row. This provider does
// not enforce a confirmation step, so the bool result is always false.
func (p *SQLProvider) SignUp(ctx context.Context, email, password, fullName string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, ErrInvalidCredentials
	}
	if len(password) < utils.MinPasswordLength {
		return false, ErrWeakSecret
	}
	if _, err := p.Users.Create(ctx, email, password, fullName, p.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return false, ErrAccountExists
		}
		return false, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return false, nil
}

// SignIn verifies the password and issues an access/refresh token
// pair. Unknown emails and wrong passwords are indistinguishable to
// the caller.
func (p *SQLProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := p.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return p.issue(ctx, u)
}

// SignOut revokes the session's refresh token. The access token is
// left to expire on its own.
func (p *SQLProvider) SignOut(ctx context.Context, s Session) error {
	if s.RefreshToken == "" {
		return nil
	}
	if err := p.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(s.RefreshToken)); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

// Recover exchanges a persisted refresh token for a fresh session,
// rotating the token in the process.
func (p *SQLProvider) Recover(ctx context.Context, refreshToken string) (Session, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(refreshToken))
	userID, err := p.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenReused) {
			// A rotated token came back: assume the raw value leaked
			// and retire every live token the user holds.
			_ = p.Tokens.RevokeAllForUser(ctx, userID)
			return Session{}, ErrNotAuthenticated
		}
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotAuthenticated
		}
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	u, err := p.Users.GetByID(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	_ = p.Tokens.RevokeByHash(ctx, hash) // rotate
	return p.issue(ctx, u)
}

// FetchProfile loads the profile owned by a user.
func (p *SQLProvider) FetchProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	prof, err := p.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, err
		}
		return model.Profile{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return prof, nil
}

// UpdateProfile replaces the mutable fields and returns the stored row.
func (p *SQLProvider) UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) (model.Profile, error) {
	if err := p.Profiles.Update(ctx, userID, fullName, phone); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, err
		}
		return model.Profile{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return p.Profiles.GetByUserID(ctx, userID)
}

// issue signs an access token and stores a fresh refresh token hash.
func (p *SQLProvider) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(p.Cfg.JWTSecret, u.ID, u.Email, p.Cfg.AccessTTLMin)
	if err != nil {
		return Session{}, err
	}
	refresh, err := utils.NewRefreshToken(p.Cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, err
	}
	if err := p.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return Session{
		UserID:       u.ID,
		Email:        u.Email,
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		IssuedAt:     time.Now().UTC(),
		ExpiresAt:    access.Exp,
	}, nil
}
