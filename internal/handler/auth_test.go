package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/session"
)

// memProvider is a self-contained in-memory identity store for
// exercising the auth endpoints end to end without a database.
type memProvider struct {
	users    map[string]string // email -> password
	profiles map[uint64]model.Profile
	refresh  map[string]uint64 // refresh token -> user id
	nextID   uint64
	ids      map[string]uint64 // email -> user id
}

func newMemProvider() *memProvider {
	return &memProvider{
		users:    map[string]string{},
		profiles: map[uint64]model.Profile{},
		refresh:  map[string]uint64{},
		ids:      map[string]uint64{},
	}
}

func (p *memProvider) SignUp(ctx context.Context, email, password, fullName string) (bool, error) {
	if email == "" || password == "" {
		return false, session.ErrInvalidCredentials
	}
	if len(password) < 6 {
		return false, session.ErrWeakSecret
	}
	if _, ok := p.users[email]; ok {
		return false, session.ErrAccountExists
	}
	p.nextID++
	p.users[email] = password
	p.ids[email] = p.nextID
	p.profiles[p.nextID] = model.Profile{UserID: p.nextID, FullName: fullName}
	return false, nil
}

func (p *memProvider) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	stored, ok := p.users[email]
	if !ok || stored != password {
		return session.Session{}, session.ErrInvalidCredentials
	}
	id := p.ids[email]
	rt := "refresh-" + email
	p.refresh[rt] = id
	now := time.Now()
	return session.Session{
		UserID: id, Email: email,
		AccessToken: "access-" + email, RefreshToken: rt,
		IssuedAt: now, ExpiresAt: now.Add(15 * time.Minute),
	}, nil
}

func (p *memProvider) SignOut(ctx context.Context, s session.Session) error {
	delete(p.refresh, s.RefreshToken)
	return nil
}

func (p *memProvider) Recover(ctx context.Context, refreshToken string) (session.Session, error) {
	id, ok := p.refresh[refreshToken]
	if !ok {
		return session.Session{}, session.ErrNotAuthenticated
	}
	for email, uid := range p.ids {
		if uid == id {
			return p.SignIn(ctx, email, p.users[email])
		}
	}
	return session.Session{}, session.ErrNotAuthenticated
}

func (p *memProvider) FetchProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	return p.profiles[userID], nil
}

func (p *memProvider) UpdateProfile(ctx context.Context, userID uint64, fullName, phone string) (model.Profile, error) {
	prof := p.profiles[userID]
	prof.FullName = fullName
	prof.Phone = phone
	p.profiles[userID] = prof
	return prof, nil
}

func doJSON(t *testing.T, fn echo.HandlerFunc, method, path, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, fn(c))
	return rec
}

func TestRegisterCreatesSessionImmediately(t *testing.T) {
	h := NewAuthHandler(newMemProvider())

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"bhakt@example.com","password":"secret1","name":"Bhakt"}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Profile struct {
			FullName string `json:"full_name"`
		} `json:"profile"`
		Session struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bhakt@example.com", resp.User.Email)
	assert.Equal(t, "Bhakt", resp.Profile.FullName)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.NotEmpty(t, resp.Session.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	p := newMemProvider()
	h := NewAuthHandler(p)
	body := `{"email":"bhakt@example.com","password":"secret1","name":"Bhakt"}`

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.Register, http.MethodPost, "/v1/auth/register", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	h := NewAuthHandler(newMemProvider())

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		`{"email":"bhakt@example.com","password":"123","name":"Bhakt"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	p := newMemProvider()
	_, err := p.SignUp(context.Background(), "bhakt@example.com", "secret1", "Bhakt")
	require.NoError(t, err)
	h := NewAuthHandler(p)

	rec := doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"bhakt@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestRefreshRotatesSession(t *testing.T) {
	p := newMemProvider()
	_, err := p.SignUp(context.Background(), "bhakt@example.com", "secret1", "Bhakt")
	require.NoError(t, err)
	s, err := p.SignIn(context.Background(), "bhakt@example.com", "secret1")
	require.NoError(t, err)
	h := NewAuthHandler(p)

	rec := doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+s.RefreshToken+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	h := NewAuthHandler(newMemProvider())

	rec := doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"never-issued"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	p := newMemProvider()
	_, err := p.SignUp(context.Background(), "bhakt@example.com", "secret1", "Bhakt")
	require.NoError(t, err)
	s, err := p.SignIn(context.Background(), "bhakt@example.com", "secret1")
	require.NoError(t, err)
	h := NewAuthHandler(p)

	rec := doJSON(t, h.Logout, http.MethodPost, "/v1/auth/logout",
		`{"refresh_token":"`+s.RefreshToken+`"}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The token no longer recovers a session.
	rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+s.RefreshToken+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	p := newMemProvider()
	_, err := p.SignUp(context.Background(), "bhakt@example.com", "secret1", "Bhakt")
	require.NoError(t, err)
	h := NewAuthHandler(p)

	rec := doJSON(t, h.Me, http.MethodGet, "/v1/me", "", func(c echo.Context) {
		c.Set("user_id", float64(1)) // numeric JWT claims decode as float64
		c.Set("email", "bhakt@example.com")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"full_name":"Bhakt"`)
}

func TestUpdateProfileOverwrites(t *testing.T) {
	p := newMemProvider()
	_, err := p.SignUp(context.Background(), "bhakt@example.com", "secret1", "Bhakt")
	require.NoError(t, err)
	h := NewAuthHandler(p)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/v1/me/profile",
		`{"full_name":"New Name","phone":"9822001122"}`, func(c echo.Context) {
			c.Set("user_id", float64(1))
			c.Set("email", "bhakt@example.com")
		})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"full_name":"New Name"`)
	assert.Contains(t, rec.Body.String(), `"phone":"9822001122"`)

	// The stored profile was replaced wholesale.
	prof, err := p.FetchProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "New Name", prof.FullName)
}

func TestUpdateProfileWithoutIdentity(t *testing.T) {
	h := NewAuthHandler(newMemProvider())

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/v1/me/profile",
		`{"full_name":"X","phone":""}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
