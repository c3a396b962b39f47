package backend

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// expiryLeeway refreshes tokens slightly before they actually expire.
const expiryLeeway = 30 * time.Second

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.Add(expiryLeeway).After(s.ExpiresAt)
}

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	LoadSession() (*Session, error)
	SaveSession(s *Session) error
	ClearSession() error
}

// AuthEvent names a change of the client's session.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthListener receives session changes. s is nil after sign-out.
type AuthListener func(event AuthEvent, s *Session)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenResponse is the body returned by the auth token and signup endpoints.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// newSession builds a Session from a token response. Claims are read without
// verifying the signature; the backend verifies every token it receives.
func newSession(resp tokenResponse) (*Session, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, &claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parsing token subject: %w", err)
	}

	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         User{ID: id, Email: claims.Email},
	}

	if s.User.Email == "" {
		s.User.Email = resp.User.Email
	}

	switch {
	case claims.ExpiresAt != nil:
		s.ExpiresAt = claims.ExpiresAt.Time
	case resp.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return s, nil
}
