package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/app"
	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/config"
	"github.com/MrJamesThe3rd/getrich/internal/readiness"
)

func newApp(t *testing.T) *app.App {
	t.Helper()

	t.Setenv("GETRICH_CONFIG_DIR", t.TempDir())
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BACKEND_ANON_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("NOTIFY_DESKTOP", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	return a
}

func TestNew_Unconfigured(t *testing.T) {
	a := newApp(t)

	assert.False(t, a.Accessor.IsConfigured())
	assert.False(t, a.Insights.Enabled())
	assert.Equal(t, readiness.Setup, a.Tracker.State(a.Accessor.IsConfigured()))
	assert.Empty(t, a.Invoices.List(context.Background()))
}

func TestApp_SaveConnection(t *testing.T) {
	a := newApp(t)

	cfg := backend.Config{URL: "https://abc.example.co", AnonKey: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"}

	handle, err := a.SaveConnection(cfg)
	require.NoError(t, err)
	require.NotNil(t, handle)

	got, ok := a.Accessor.Config()
	require.True(t, ok)
	assert.Equal(t, cfg, got)
	assert.Equal(t, readiness.Loading, a.Tracker.State(a.Accessor.IsConfigured()))
}

func TestApp_SignOutDropsCachedRecords(t *testing.T) {
	a := newApp(t)

	_, err := a.SaveConnection(backend.Config{URL: "https://abc.example.co", AnonKey: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"})
	require.NoError(t, err)

	// Expired, so signing out makes no remote call.
	require.NoError(t, a.Store.SaveSession(&backend.Session{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour),
		User:        backend.User{ID: uuid.New(), Email: "owner@example.rw"},
	}))
	require.NoError(t, a.Store.SaveCache("invoices", []string{"INV-1"}))

	require.NoError(t, a.Accessor.Reinitialize().SignOut(context.Background()))

	var cached []string
	ok, err := a.Store.LoadCache("invoices", &cached)
	require.NoError(t, err)
	assert.False(t, ok)
}
