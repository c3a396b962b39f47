// Package readiness decides which screen the application shows.
package readiness

import (
	"sync"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

type State int

const (
	Setup State = iota
	Loading
	Auth
	Ready
)

func (s State) String() string {
	switch s {
	case Setup:
		return "SETUP"
	case Loading:
		return "LOADING"
	case Auth:
		return "AUTH"
	case Ready:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// Evaluate is the screen rule: configuration first, then session resolution, then user.
func Evaluate(configured, resolved bool, user *backend.User) State {
	switch {
	case !configured:
		return Setup
	case !resolved:
		return Loading
	case user == nil:
		return Auth
	default:
		return Ready
	}
}

// Tracker holds the session facts learned since the last reset. Configuration
// is never stored here; callers pass it in fresh on every State call.
type Tracker struct {
	mu       sync.Mutex
	resolved bool
	user     *backend.User
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) State(configured bool) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Evaluate(configured, t.resolved, t.user)
}

// User returns the signed-in user, if any.
func (t *Tracker) User() *backend.User {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.user
}

// Resolved records the outcome of the initial session lookup.
func (t *Tracker) Resolved(s *backend.Session) {
	t.set(true, s)
}

func (t *Tracker) SignedIn(s *backend.Session) {
	t.set(true, s)
}

func (t *Tracker) SignedOut() {
	t.set(true, nil)
}

// AuthFailed is called when a backend call reports the session as invalid.
func (t *Tracker) AuthFailed() {
	t.set(true, nil)
}

// Reset forgets the session facts so the next State call starts over.
// Used after the connection was saved and the backend handle rebuilt.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resolved = false
	t.user = nil
}

// Observe applies a backend auth event.
func (t *Tracker) Observe(event backend.AuthEvent, s *backend.Session) {
	switch event {
	case backend.EventSignedOut:
		t.SignedOut()
	case backend.EventInitialSession:
		t.Resolved(s)
	default:
		t.SignedIn(s)
	}
}

func (t *Tracker) set(resolved bool, s *backend.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resolved = resolved
	t.user = nil

	if s != nil {
		u := s.User
		t.user = &u
	}
}
