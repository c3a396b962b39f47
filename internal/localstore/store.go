// Package localstore persists small named JSON values on the local machine:
// the backend connection, the signed-in session, cached record snapshots and
// learned category rules.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

const fileName = "state.json"

const (
	keyConnection = "connection"
	keySession    = "session"
	cachePrefix   = "cache:"
)

// Store is a key/value file. Every write replaces the whole file atomically.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// Open loads the store under dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, fileName),
		data: make(map[string]json.RawMessage),
	}

	content, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading store: %w", err)
	}

	if err := json.Unmarshal(content, &s.data); err != nil {
		return nil, fmt.Errorf("decoding store: %w", err)
	}

	return s, nil
}

// Get decodes the value under key into dest. It reports false when the key is absent.
func (s *Store) Get(key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}

	return true, nil
}

func (s *Store) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = raw

	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}

		return err
	}

	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}

	delete(s.data, key)

	return s.save()
}

// Connection returns the persisted backend configuration.
func (s *Store) Connection() (backend.Config, bool, error) {
	var cfg backend.Config

	ok, err := s.Get(keyConnection, &cfg)
	if err != nil || !ok {
		return backend.Config{}, false, err
	}

	return cfg, cfg.Complete(), nil
}

// SaveConnection replaces the persisted configuration. A session that belongs
// to a different endpoint is dropped along with it, and so are the records
// cached under that session.
func (s *Store) SaveConnection(cfg backend.Config) error {
	prev, _, err := s.Connection()
	if err != nil {
		return err
	}

	if err := s.Put(keyConnection, cfg); err != nil {
		return err
	}

	if prev.URL != cfg.URL {
		return s.ClearSession()
	}

	return nil
}

func (s *Store) LoadSession() (*backend.Session, error) {
	var sess backend.Session

	ok, err := s.Get(keySession, &sess)
	if err != nil || !ok {
		return nil, err
	}

	return &sess, nil
}

// SaveSession persists sess. Cached records are dropped whenever the session
// owner changes; a token refresh for the same user keeps them.
func (s *Store) SaveSession(sess *backend.Session) error {
	prev, _ := s.LoadSession()

	if prev == nil || prev.User.ID != sess.User.ID {
		if err := s.ClearCache(); err != nil {
			return err
		}
	}

	return s.Put(keySession, sess)
}

// ClearSession forgets the session together with the records cached under it.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, keySession)
	s.dropCache()

	return s.save()
}

// SaveCache stores the last loaded snapshot of a record kind.
func (s *Store) SaveCache(kind string, v any) error {
	return s.Put(cachePrefix+kind, v)
}

func (s *Store) LoadCache(kind string, dest any) (bool, error) {
	return s.Get(cachePrefix+kind, dest)
}

// ClearCache drops every cached snapshot. Connection and session are kept.
func (s *Store) ClearCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropCache()

	return s.save()
}

// dropCache must be called with mu held.
func (s *Store) dropCache() {
	for key := range s.data {
		if strings.HasPrefix(key, cachePrefix) {
			delete(s.data, key)
		}
	}
}

// save writes a temp file next to the target and renames it over.
func (s *Store) save() error {
	content, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}

	return nil
}
