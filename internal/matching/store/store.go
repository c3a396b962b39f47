// Package store keeps category rules in the local state file.
package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

const key = "category_rules"

// KV is the slice of the local store the rules need.
type KV interface {
	Get(key string, dest any) (bool, error)
	Put(key string, value any) error
}

type rule struct {
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	mu  sync.Mutex
	kv  KV
	now func() time.Time
}

func New(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

func (s *Store) rules() ([]rule, error) {
	var rules []rule

	if _, err := s.kv.Get(key, &rules); err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	return rules, nil
}

// FindMatch picks the rule whose pattern occurs in description, ignoring
// case. Longer patterns win, then newer ones.
func (s *Store) FindMatch(_ context.Context, description string) (string, error) {
	s.mu.Lock()
	rules, err := s.rules()
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("finding match: %w", err)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if len(rules[i].Pattern) != len(rules[j].Pattern) {
			return len(rules[i].Pattern) > len(rules[j].Pattern)
		}

		return rules[i].CreatedAt.After(rules[j].CreatedAt)
	})

	lower := strings.ToLower(description)

	for _, r := range rules {
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Category, nil
		}
	}

	return "", nil
}

// CreateRule replaces any rule with the same pattern.
func (s *Store) CreateRule(_ context.Context, pattern, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.rules()
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	rules = slices.DeleteFunc(rules, func(r rule) bool {
		return strings.EqualFold(r.Pattern, pattern)
	})

	rules = append(rules, rule{Pattern: pattern, Category: category, CreatedAt: s.now()})

	if err := s.kv.Put(key, rules); err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
