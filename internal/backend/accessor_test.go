package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

type fakeSource struct {
	cfg backend.Config
	ok  bool
	err error
}

func (f *fakeSource) Connection() (backend.Config, bool, error) {
	return f.cfg, f.ok, f.err
}

type recordingFactory struct {
	built []backend.Config
}

func (r *recordingFactory) build(cfg backend.Config) backend.Handle {
	r.built = append(r.built, cfg)
	return backend.NewClient(cfg)
}

var storedConfig = backend.Config{
	URL:     "https://stored.supabase.co",
	AnonKey: strings.Repeat("s", 40),
}

func TestAccessor_HandleIsMemoized(t *testing.T) {
	factory := &recordingFactory{}
	a := backend.NewAccessor(backend.Config{}, &fakeSource{cfg: storedConfig, ok: true}, factory.build)

	first := a.Handle()
	second := a.Handle()

	assert.Same(t, first.(*backend.Client), second.(*backend.Client))
	assert.Len(t, factory.built, 1)
}

func TestAccessor_ReinitializeBuildsNewHandle(t *testing.T) {
	factory := &recordingFactory{}
	source := &fakeSource{cfg: storedConfig, ok: true}
	a := backend.NewAccessor(backend.Config{}, source, factory.build)

	before := a.Handle()

	source.cfg = backend.Config{URL: "https://other.supabase.co", AnonKey: strings.Repeat("o", 40)}

	assert.Equal(t, storedConfig, a.Handle().Config(), "handle keeps the configuration it was built with")

	reinit := a.Reinitialize()
	after := a.Handle()

	assert.NotSame(t, before.(*backend.Client), reinit.(*backend.Client))
	assert.Same(t, reinit.(*backend.Client), after.(*backend.Client))
	assert.Equal(t, source.cfg, after.Config())
}

func TestAccessor_ResolutionOrder(t *testing.T) {
	override := backend.Config{URL: "https://env.supabase.co", AnonKey: strings.Repeat("e", 40)}

	tests := []struct {
		name     string
		override backend.Config
		source   *fakeSource
		want     backend.Config
	}{
		{
			name:     "OverrideWins",
			override: override,
			source:   &fakeSource{cfg: storedConfig, ok: true},
			want:     override,
		},
		{
			name:     "IncompleteOverrideIgnored",
			override: backend.Config{URL: "https://env.supabase.co"},
			source:   &fakeSource{cfg: storedConfig, ok: true},
			want:     storedConfig,
		},
		{
			name:   "StoredValue",
			source: &fakeSource{cfg: storedConfig, ok: true},
			want:   storedConfig,
		},
		{
			name:   "NothingStored",
			source: &fakeSource{},
			want:   backend.Config{URL: "https://placeholder.invalid", AnonKey: "placeholder"},
		},
		{
			name:   "StoreError",
			source: &fakeSource{err: errors.New("corrupt file")},
			want:   backend.Config{URL: "https://placeholder.invalid", AnonKey: "placeholder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &recordingFactory{}
			a := backend.NewAccessor(tt.override, tt.source, factory.build)

			a.Handle()

			require.Len(t, factory.built, 1)
			assert.Equal(t, tt.want, factory.built[0])
		})
	}
}

func TestAccessor_IsConfiguredReadsFreshConfig(t *testing.T) {
	source := &fakeSource{}
	a := backend.NewAccessor(backend.Config{}, source, (&recordingFactory{}).build)

	assert.False(t, a.IsConfigured())

	source.cfg, source.ok = storedConfig, true
	assert.True(t, a.IsConfigured())

	source.cfg = backend.Config{URL: "http://insecure.example", AnonKey: strings.Repeat("x", 40)}
	assert.False(t, a.IsConfigured())
}

func TestAccessor_Actor(t *testing.T) {
	t.Run("SignedOut", func(t *testing.T) {
		a := backend.NewAccessor(backend.Config{}, &fakeSource{cfg: storedConfig, ok: true}, (&recordingFactory{}).build)

		_, err := a.Actor(context.Background())
		assert.ErrorIs(t, err, backend.ErrNotAuthenticated)
	})

	t.Run("SignedIn", func(t *testing.T) {
		userID := mustUUID(t)
		token := testToken(t, userID, farFuture())

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{"access_token": token, "refresh_token": "r"})
		}))
		defer srv.Close()

		cfg := backend.Config{URL: srv.URL, AnonKey: testAnonKey}
		a := backend.NewAccessor(cfg, nil, func(c backend.Config) backend.Handle { return backend.NewClient(c) })

		_, err := a.Handle().SignIn(context.Background(), "owner@example.com", "secret")
		require.NoError(t, err)

		got, err := a.Actor(context.Background())
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})
}
