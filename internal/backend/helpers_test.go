package backend_test

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

const testAnonKey = "anon-key-for-tests-0123456789"

func testToken(t *testing.T, sub uuid.UUID, exp time.Time) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": "owner@example.com",
		"exp":   exp.Unix(),
	})

	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return signed
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

type memSessions struct {
	mu      sync.Mutex
	session *backend.Session
	cleared bool
}

func (m *memSessions) LoadSession() (*backend.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session, nil
}

func (m *memSessions) SaveSession(s *backend.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = s
	m.cleared = false

	return nil
}

func (m *memSessions) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.cleared = true

	return nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()

	id, err := uuid.NewRandom()
	require.NoError(t, err)

	return id
}

func farFuture() time.Time {
	return time.Now().Add(24 * time.Hour)
}
