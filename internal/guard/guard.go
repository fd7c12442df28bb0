// Package guard decides whether a protected view may be rendered for
// the current authentication state. The decision function is pure:
// the same state and path always produce the same decision, so
// re-evaluating it can never cause a redirect loop.
package guard

import (
	"net/url"

	"github.com/Nota0515/bhakti/internal/session"
)

// EntryPoint is the authentication entry point anonymous visitors are
// redirected to.
const EntryPoint = "/login"

// RedirectParam carries the originally requested path through the
// login flow so a successful authentication returns the visitor to
// their destination instead of a fixed default.
const RedirectParam = "redirect"

// Action is what the caller should do with the request.
type Action int

const (
	// Render the requested protected content.
	Render Action = iota
	// Interstitial renders a neutral waiting view while the session is
	// still resolving; no redirect decision is taken yet, which avoids
	// a redirect flicker on reload.
	Interstitial
	// Redirect sends the visitor to Decision.Location.
	Redirect
)

// Decision is the guard's verdict for one request.
type Decision struct {
	Action   Action
	Location string // set only for Redirect
}

// Decide maps (auth state, requested path) to a decision.
//   loading       -> Interstitial
//   anonymous     -> Redirect to EntryPoint with the original path attached
//   authenticated -> Render
func Decide(state session.State, requestedPath string) Decision {
	switch state {
	case session.StateLoading:
		return Decision{Action: Interstitial}
	case session.StateAuthenticated:
		return Decision{Action: Render}
	default:
		loc := EntryPoint
		if requestedPath != "" && requestedPath != EntryPoint {
			loc = EntryPoint + "?" + RedirectParam + "=" + url.QueryEscape(requestedPath)
		}
		return Decision{Action: Redirect, Location: loc}
	}
}
