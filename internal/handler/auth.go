package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/session"
)

// AuthHandler exposes the authentication endpoints. Every operation
// runs through a request-scoped session machine so sign-in, sign-up
// and sign-out share one set of transition rules with the rest of the
// application.
type AuthHandler struct {
	Provider session.Provider
}

func NewAuthHandler(p session.Provider) *AuthHandler {
	return &AuthHandler{Provider: p}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionPart struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}
type profilePart struct {
	FullName         string `json:"full_name"`
	Phone            string `json:"phone"`
	HasOrderedPrasad bool   `json:"has_ordered_prasad"`
}
type authResp struct {
	User    userPart    `json:"user"`
	Profile profilePart `json:"profile"`
	Session sessionPart `json:"session"`
}

func respFrom(c session.Change) authResp {
	var r authResp
	if c.Session != nil {
		r.User = userPart{ID: c.Session.UserID, Email: c.Session.Email}
		r.Session = sessionPart{
			AccessToken:  c.Session.AccessToken,
			RefreshToken: c.Session.RefreshToken,
			ExpiresAt:    c.Session.ExpiresAt,
		}
	}
	if c.Profile != nil {
		r.Profile = profilePart{
			FullName:         c.Profile.FullName,
			Phone:            c.Profile.Phone,
			HasOrderedPrasad: c.Profile.HasOrderedPrasad,
		}
	}
	return r
}

// machine builds a request-scoped state machine settled into anonymous.
func (h *AuthHandler) machine(ctx context.Context) *session.Machine {
	m := session.NewMachine(h.Provider)
	m.Activate(ctx, "")
	return m
}

// Register: create an account and sign it in immediately, so the
// client never chains two calls.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx)
	res, err := m.SignUp(ctx, req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAccountExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		case errors.Is(err, session.ErrWeakSecret):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "password does not meet policy"})
		case errors.Is(err, session.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	if res.RequiresConfirmation {
		return c.JSON(http.StatusCreated, echo.Map{"requires_confirmation": true})
	}
	return c.JSON(http.StatusCreated, respFrom(m.Snapshot()))
}

// Login: verify credentials and return a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m := h.machine(ctx)
	if err := m.SignIn(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sign in failed"})
	}
	return c.JSON(http.StatusOK, respFrom(m.Snapshot()))
}

// Refresh: exchange a persisted refresh token for a new session. The
// old token is rotated away by the provider.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m := session.NewMachine(h.Provider)
	m.Activate(ctx, strings.TrimSpace(req.RefreshToken))
	snap := m.Snapshot()
	if snap.State != session.StateAuthenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	return c.JSON(http.StatusOK, respFrom(snap))
}

// Logout: recover the session named by the refresh token, then sign it
// out. The local state clears before the provider call, so even a
// provider failure leaves the caller signed out.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m := session.NewMachine(h.Provider)
	m.Activate(ctx, strings.TrimSpace(req.RefreshToken))
	if m.Snapshot().State != session.StateAuthenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := m.SignOut(ctx); err != nil {
		// Local sign-out already happened; report the remote failure.
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "remote sign-out failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: return the authenticated user's email and profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	email, _ := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := session.NewMachine(h.Provider)
	m.Resume(ctx, session.Session{UserID: uid, Email: email})
	return c.JSON(http.StatusOK, respFrom(m.Snapshot()))
}

type updateProfileReq struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// UpdateProfile replaces the caller's profile fields. The stored row
// is overwritten, not merged; clients send the full shape.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	email, _ := c.Get("email").(string)
	m := session.NewMachine(h.Provider)
	m.Resume(ctx, session.Session{UserID: uid, Email: email})

	p, err := m.UpdateProfile(ctx, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	return c.JSON(http.StatusOK, profileResp(p))
}

func profileResp(p model.Profile) echo.Map {
	return echo.Map{
		"profile": profilePart{
			FullName:         p.FullName,
			Phone:            p.Phone,
			HasOrderedPrasad: p.HasOrderedPrasad,
		},
	}
}
