package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	UpdateTransaction(ctx context.Context, id uuid.UUID, patch Patch) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	identity backend.Identity
}

func NewService(repo Repository, identity backend.Identity) *Service {
	return &Service{repo: repo, identity: identity}
}

type CreateParams struct {
	Type        Type
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	ProjectID   *uuid.UUID
	Description string
}

type Patch struct {
	Type        *Type
	Category    *string
	Amount      *decimal.Decimal
	Date        *time.Time
	ProjectID   *uuid.UUID
	Description *string
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// List returns every transaction, newest first. Failures degrade to an empty list.
func (s *Service) List(ctx context.Context) []*Transaction {
	return s.ListRange(ctx, ListFilter{})
}

// ListRange is List restricted to a date range.
func (s *Service) ListRange(ctx context.Context, filter ListFilter) []*Transaction {
	txs, err := s.FetchRange(ctx, filter)
	if err != nil {
		if !errors.Is(err, backend.ErrNotConfigured) {
			slog.Error("failed to list transactions", "error", err)
		}

		return []*Transaction{}
	}

	return txs
}

// Fetch reports failures instead of degrading; see List.
func (s *Service) Fetch(ctx context.Context) ([]*Transaction, error) {
	return s.FetchRange(ctx, ListFilter{})
}

func (s *Service) FetchRange(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if !s.identity.IsConfigured() {
		return nil, backend.ErrNotConfigured
	}

	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	tx := newTransaction(actor, params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if patch.Empty() {
		return nil
	}

	if err := s.repo.UpdateTransaction(ctx, id, patch); err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(date time.Time, amount decimal.Decimal, typ Type, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Type:        typ,
		Description: description,
	}
}

// ImportBatch stores params unless some of them look like entries already in
// the ledger. In that case nothing is written and the caller gets the split
// between new entries and conflicts to decide on.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, fmt.Errorf("importing transactions: %w", err)
	}

	minDate, maxDate := dateRange(params)

	existing, err := s.repo.ListTransactions(ctx, ListFilter{StartDate: &minDate, EndDate: &maxDate})
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(existing))
	for _, e := range existing {
		lookup[keyOf(e.Date, e.Amount, e.Type, e.Description)] = e
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		if e, found := lookup[keyOf(p.Date, p.Amount, p.Type, p.Description)]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: e})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(actor, newParams)
	if err := s.repo.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch stores params without duplicate checks.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, fmt.Errorf("importing transactions: %w", err)
	}

	txs := paramsToTransactions(actor, params)
	if err := s.repo.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	return txs, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newTransaction(actor uuid.UUID, p CreateParams) *Transaction {
	category := p.Category
	if category == "" {
		category = CategoryOther
	}

	return &Transaction{
		UserID:      actor,
		Type:        p.Type,
		Category:    category,
		Amount:      p.Amount,
		Date:        p.Date,
		ProjectID:   p.ProjectID,
		Description: p.Description,
	}
}

func paramsToTransactions(actor uuid.UUID, params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(actor, p)
	}

	return txs
}
