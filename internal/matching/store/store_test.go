package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/localstore"
	"github.com/MrJamesThe3rd/getrich/internal/matching/store"
)

func TestStore_FindMatch(t *testing.T) {
	ctx := context.Background()

	kv, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	s := store.New(kv)

	got, err := s.FindMatch(ctx, "anything")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.CreateRule(ctx, "uber", "Travel"))
	require.NoError(t, s.CreateRule(ctx, "uber eats", "Other"))
	require.NoError(t, s.CreateRule(ctx, "google", "Marketing"))

	tests := []struct {
		description string
		want        string
	}{
		{"UBER *TRIP KIGALI", "Travel"},
		{"Uber Eats order 55", "Other"},
		{"GOOGLE ADS 1234", "Marketing"},
		{"Rent March", ""},
	}

	for _, tt := range tests {
		got, err := s.FindMatch(ctx, tt.description)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.description)
	}
}

func TestStore_CreateRule_ReplacesPattern(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := localstore.Open(dir)
	require.NoError(t, err)

	s := store.New(kv)
	require.NoError(t, s.CreateRule(ctx, "MTN", "Other"))
	require.NoError(t, s.CreateRule(ctx, "mtn", "Software Subscription"))

	reopened, err := localstore.Open(dir)
	require.NoError(t, err)

	got, err := store.New(reopened).FindMatch(ctx, "MTN airtime")
	require.NoError(t, err)
	assert.Equal(t, "Software Subscription", got)
}
