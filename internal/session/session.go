package session

import (
	"context"
	"log"
	"sync"

	"github.com/Nota0515/bhakti/internal/model"
)

// State of the machine. It starts in StateLoading while a persisted
// session is being recovered and settles into StateAnonymous or
// StateAuthenticated; every later transition moves between those two.
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Change is the snapshot delivered to subscribers on every state
// transition. Session and Profile are copies; mutating them does not
// affect the machine's cache.
type Change struct {
	State   State
	Session *Session
	Profile *model.Profile
}

// Machine is the authentication state machine. All fields are guarded
// by mu; the cached session/profile pair has a single writer (the
// machine's own methods) and everyone else reads snapshots.
type Machine struct {
	provider Provider

	mu      sync.Mutex
	state   State
	session *Session
	profile *model.Profile
	subs    map[int]func(Change)
	nextSub int
}

// NewMachine returns a machine in StateLoading. Consumers that gate on
// authentication must wait for Activate to settle the state instead of
// treating the initial value as anonymous.
func NewMachine(p Provider) *Machine {
	return &Machine{
		provider: p,
		state:    StateLoading,
		subs:     make(map[int]func(Change)),
	}
}

// Subscribe registers fn to be called after every state transition and
// returns a cancel function. fn runs outside the machine's lock, so it
// may call back into the machine.
func (m *Machine) Subscribe(fn func(Change)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Snapshot returns the current state with copies of the cached session
// and profile.
func (m *Machine) Snapshot() Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changeLocked()
}

// Activate resolves the initial session. When a persisted refresh
// token is supplied and the provider accepts it, the machine settles
// into StateAuthenticated; any failure settles it into StateAnonymous.
// Activate never returns an error: a stale persisted token is an
// expected condition, not a fault.
func (m *Machine) Activate(ctx context.Context, persistedRefreshToken string) {
	if persistedRefreshToken == "" {
		m.settle(StateAnonymous, nil, nil)
		return
	}
	s, err := m.provider.Recover(ctx, persistedRefreshToken)
	if err != nil {
		log.Printf("session: recover failed, settling anonymous: %v", err)
		m.settle(StateAnonymous, nil, nil)
		return
	}
	profile := m.fetchProfile(ctx, s.UserID)
	m.settle(StateAuthenticated, &s, profile)
}

// Resume settles the machine into StateAuthenticated with an already
// verified session, fetching its profile. Callers use it when the
// proof of authentication arrived out of band (a validated bearer
// token) rather than through SignIn.
func (m *Machine) Resume(ctx context.Context, s Session) {
	profile := m.fetchProfile(ctx, s.UserID)
	m.settle(StateAuthenticated, &s, profile)
}

// SignIn verifies credentials through the provider. On success the
// machine transitions to StateAuthenticated with the fresh session and
// its profile; on failure the previous state is restored untouched.
// The machine is never left in StateLoading once the provider call has
// resolved, on any path.
func (m *Machine) SignIn(ctx context.Context, email, password string) error {
	prev := m.enterLoading()
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		m.settle(prev.State, prev.Session, prev.Profile)
		return err
	}
	profile := m.fetchProfile(ctx, s.UserID)
	m.settle(StateAuthenticated, &s, profile)
	return nil
}

// SignUp creates a new identity and immediately signs it in with the
// same credentials, so callers never chain the two calls themselves.
// When the provider requires confirmation, the machine stays anonymous
// and the result says so explicitly rather than failing.
func (m *Machine) SignUp(ctx context.Context, email, password, fullName string) (SignUpResult, error) {
	prev := m.enterLoading()
	requiresConfirmation, err := m.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		m.settle(prev.State, prev.Session, prev.Profile)
		return SignUpResult{}, err
	}
	if requiresConfirmation {
		m.settle(StateAnonymous, nil, nil)
		return SignUpResult{RequiresConfirmation: true}, nil
	}
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		m.settle(prev.State, prev.Session, prev.Profile)
		return SignUpResult{}, err
	}
	profile := m.fetchProfile(ctx, s.UserID)
	m.settle(StateAuthenticated, &s, profile)
	res := SignUpResult{Session: s}
	if profile != nil {
		res.Profile = *profile
	}
	return res, nil
}

// SignOut clears the cached session and profile synchronously before
// the provider call, so dependent consumers react immediately. A
// provider failure is returned but never rolls back the local
// anonymous transition (local-first logout).
func (m *Machine) SignOut(ctx context.Context) error {
	m.mu.Lock()
	old := m.session
	m.state = StateAnonymous
	m.session = nil
	m.profile = nil
	change := m.changeLocked()
	m.mu.Unlock()
	m.notify(change)

	if old == nil {
		return nil
	}
	if err := m.provider.SignOut(ctx, *old); err != nil {
		log.Printf("session: remote sign-out failed (local state already cleared): %v", err)
		return err
	}
	return nil
}

// UpdateProfile replaces the profile through the provider. While
// anonymous it fails with ErrNotAuthenticated and never issues a
// remote call. On success the cached profile is replaced wholesale;
// callers carry forward fields they do not change.
func (m *Machine) UpdateProfile(ctx context.Context, fullName, phone string) (model.Profile, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return model.Profile{}, ErrNotAuthenticated
	}
	userID := m.session.UserID
	m.mu.Unlock()

	p, err := m.provider.UpdateProfile(ctx, userID, fullName, phone)
	if err != nil {
		return model.Profile{}, err
	}

	m.mu.Lock()
	// A sign-out may have raced the update; only cache for the same user.
	var change Change
	cached := false
	if m.state == StateAuthenticated && m.session != nil && m.session.UserID == userID {
		cp := p
		m.profile = &cp
		change = m.changeLocked()
		cached = true
	}
	m.mu.Unlock()
	if cached {
		m.notify(change)
	}
	return p, nil
}

// RefreshProfile re-fetches the profile from the provider, e.g. after
// an order flipped the prasad flag.
func (m *Machine) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.session == nil {
		m.mu.Unlock()
		return
	}
	userID := m.session.UserID
	m.mu.Unlock()

	profile := m.fetchProfile(ctx, userID)
	if profile == nil {
		return
	}
	m.mu.Lock()
	var change Change
	cached := false
	if m.state == StateAuthenticated && m.session != nil && m.session.UserID == userID {
		m.profile = profile
		change = m.changeLocked()
		cached = true
	}
	m.mu.Unlock()
	if cached {
		m.notify(change)
	}
}

// enterLoading flips the machine into StateLoading and returns the
// snapshot to restore when the in-flight call fails.
func (m *Machine) enterLoading() Change {
	m.mu.Lock()
	prev := m.changeLocked()
	m.state = StateLoading
	change := m.changeLocked()
	m.mu.Unlock()
	m.notify(change)
	return prev
}

func (m *Machine) settle(state State, s *Session, p *model.Profile) {
	m.mu.Lock()
	m.state = state
	m.session = s
	m.profile = p
	change := m.changeLocked()
	m.mu.Unlock()
	m.notify(change)
}

func (m *Machine) fetchProfile(ctx context.Context, userID uint64) *model.Profile {
	p, err := m.provider.FetchProfile(ctx, userID)
	if err != nil {
		// Profile load failure does not block authentication.
		log.Printf("session: profile fetch failed for user %d: %v", userID, err)
		return nil
	}
	return &p
}

// changeLocked builds a Change snapshot; callers must hold mu.
func (m *Machine) changeLocked() Change {
	c := Change{State: m.state}
	if m.session != nil {
		s := *m.session
		c.Session = &s
	}
	if m.profile != nil {
		p := *m.profile
		c.Profile = &p
	}
	return c
}

func (m *Machine) notify(c Change) {
	m.mu.Lock()
	fns := make([]func(Change), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
