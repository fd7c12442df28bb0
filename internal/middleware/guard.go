package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/guard"
	"github.com/Nota0515/bhakti/internal/session"
)

// interstitialPage is what a visitor sees while the session is still
// resolving. Browsers behind the guard retry via the meta refresh.
const interstitialPage = `<!doctype html><meta http-equiv="refresh" content="1"><title>Loading</title><p>Loading…</p>`

// RouteGuard protects browser-facing routes. The per-request auth
// state is derived from the machine (which stays in loading until
// Activate settles it) and from the visitor's bearer token or session
// cookie; the verdict itself is delegated to guard.Decide so the
// redirect semantics live in exactly one place.
func RouteGuard(m *session.Machine, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := requestState(m, secret, c)
			d := guard.Decide(state, c.Request().URL.Path)
			switch d.Action {
			case guard.Interstitial:
				return c.HTML(http.StatusOK, interstitialPage)
			case guard.Redirect:
				return c.Redirect(http.StatusFound, d.Location)
			default:
				return next(c)
			}
		}
	}
}

// requestState resolves the auth state for one request. The machine's
// loading state always wins so no redirect decision is taken before
// initialization has settled.
func requestState(m *session.Machine, secret string, c echo.Context) session.State {
	if m != nil && m.Snapshot().State == session.StateLoading {
		return session.StateLoading
	}
	raw := ""
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if ck, err := c.Cookie("bhakti_session"); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		return session.StateAnonymous
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return session.StateAnonymous
	}
	return session.StateAuthenticated
}
