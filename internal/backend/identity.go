package backend

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=identity.go -destination=identity_mock.go -package=backend

// Identity is what record services need to know about the connection:
// whether it is usable and who is acting.
type Identity interface {
	IsConfigured() bool
	Actor(ctx context.Context) (uuid.UUID, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() Handle

func (f ProviderFunc) Handle() Handle { return f() }
