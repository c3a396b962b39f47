package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ConnectionSource reads the locally persisted configuration.
type ConnectionSource interface {
	Connection() (Config, bool, error)
}

// Factory builds a handle for a resolved configuration.
type Factory func(cfg Config) Handle

// Provider hands out the current backend handle.
type Provider interface {
	Handle() Handle
}

// Accessor owns the single live Handle. The handle is built lazily from the
// effective configuration and only replaced through Reinitialize.
type Accessor struct {
	override Config
	source   ConnectionSource
	factory  Factory

	mu     sync.Mutex
	handle Handle
}

func NewAccessor(override Config, source ConnectionSource, factory Factory) *Accessor {
	return &Accessor{
		override: override,
		source:   source,
		factory:  factory,
	}
}

// Handle returns the memoized handle, building it on first use.
func (a *Accessor) Handle() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.handle == nil {
		a.handle = a.build()
	}

	return a.handle
}

// Reinitialize drops the current handle and builds a new one from the
// configuration as it is now. Callers still holding the old handle keep using it.
func (a *Accessor) Reinitialize() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.handle = a.build()

	return a.handle
}

// Config resolves the effective configuration: a complete override first, then
// the persisted value. It is read fresh on every call.
func (a *Accessor) Config() (Config, bool) {
	if a.override.Complete() {
		return a.override, true
	}

	if a.source == nil {
		return Config{}, false
	}

	cfg, ok, err := a.source.Connection()
	if err != nil {
		slog.Error("failed to read stored connection", "error", err)
		return Config{}, false
	}

	if !ok || !cfg.Complete() {
		return Config{}, false
	}

	return cfg, true
}

func (a *Accessor) IsConfigured() bool {
	cfg, _ := a.Config()
	return IsConfigured(cfg)
}

// Actor returns the signed-in user of the current handle.
func (a *Accessor) Actor(ctx context.Context) (uuid.UUID, error) {
	s, err := a.Handle().Session(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving actor: %w", err)
	}

	if s == nil {
		return uuid.Nil, ErrNotAuthenticated
	}

	return s.User.ID, nil
}

func (a *Accessor) build() Handle {
	cfg, ok := a.Config()
	if !ok {
		cfg = placeholder
	}

	return a.factory(cfg)
}
