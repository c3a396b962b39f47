// Package matching learns which category a bank description belongs to.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

var (
	ErrEmptyPattern    = errors.New("pattern is required")
	ErrUnknownCategory = errors.New("unknown category")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, description string) (string, error)
	CreateRule(ctx context.Context, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category learned for description, or "" when no rule matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	category, err := s.repo.FindMatch(ctx, description)
	if err != nil {
		return "", fmt.Errorf("suggesting category: %w", err)
	}

	if !transaction.IsCategory(category) {
		return "", nil
	}

	return category, nil
}

// Learn files every future description containing pattern under category.
func (s *Service) Learn(ctx context.Context, pattern, category string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return ErrEmptyPattern
	}

	if !transaction.IsCategory(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	if err := s.repo.CreateRule(ctx, pattern, category); err != nil {
		return fmt.Errorf("learning category: %w", err)
	}

	return nil
}

// Categorize fills in the category of every param still filed under Other.
// Lookup failures leave the param unchanged.
func (s *Service) Categorize(ctx context.Context, params []transaction.CreateParams) []transaction.CreateParams {
	for i := range params {
		if params[i].Category != "" && params[i].Category != transaction.CategoryOther {
			continue
		}

		category, err := s.Suggest(ctx, params[i].Description)
		if err != nil || category == "" {
			continue
		}

		params[i].Category = category
	}

	return params
}
