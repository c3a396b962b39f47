package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

const table = "transactions"

type Store struct {
	handles backend.Provider
}

func New(handles backend.Provider) *Store {
	return &Store{handles: handles}
}

type row struct {
	ID          *uuid.UUID       `json:"id,omitempty"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date"`
	ProjectID   *uuid.UUID       `json:"project_id"`
	Description string           `json:"description"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
}

func toRow(tx *transaction.Transaction) row {
	return row{
		UserID:      tx.UserID,
		Type:        tx.Type,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Date:        tx.Date.Format(time.DateOnly),
		ProjectID:   tx.ProjectID,
		Description: tx.Description,
	}
}

// scanTransaction converts a stored row back into a Transaction.
func scanTransaction(r row) (*transaction.Transaction, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}

	tx := &transaction.Transaction{
		UserID:      r.UserID,
		Type:        r.Type,
		Category:    r.Category,
		Amount:      r.Amount,
		Date:        date,
		ProjectID:   r.ProjectID,
		Description: r.Description,
	}

	if r.ID != nil {
		tx.ID = *r.ID
	}

	if r.CreatedAt != nil {
		tx.CreatedAt = *r.CreatedAt
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	q := backend.Query{Order: "date"}

	if filter.StartDate != nil {
		q.Filters = append(q.Filters, backend.Filter{Column: "date", Op: "gte", Value: filter.StartDate.Format(time.DateOnly)})
	}

	if filter.EndDate != nil {
		q.Filters = append(q.Filters, backend.Filter{Column: "date", Op: "lte", Value: filter.EndDate.Format(time.DateOnly)})
	}

	var rows []row
	if err := s.handles.Handle().Select(ctx, table, q, &rows); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(rows))

	for _, r := range rows {
		tx, err := scanTransaction(r)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	var created row
	if err := s.handles.Handle().Insert(ctx, table, toRow(tx), &created); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	stored, err := scanTransaction(created)
	if err != nil {
		return fmt.Errorf("scanning transaction: %w", err)
	}

	*tx = *stored

	return nil
}

// CreateTransactions inserts all txs in a single request; the backend applies
// it atomically. Each element is replaced with its stored representation.
func (s *Store) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	rows := make([]row, len(txs))
	for i, tx := range txs {
		rows[i] = toRow(tx)
	}

	var created []row
	if err := s.handles.Handle().InsertMany(ctx, table, rows, &created); err != nil {
		return fmt.Errorf("creating transactions: %w", err)
	}

	if len(created) != len(txs) {
		return fmt.Errorf("creating transactions: stored %d of %d", len(created), len(txs))
	}

	for i, r := range created {
		stored, err := scanTransaction(r)
		if err != nil {
			return fmt.Errorf("scanning transaction: %w", err)
		}

		*txs[i] = *stored
	}

	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id uuid.UUID, patch transaction.Patch) error {
	fields := make(map[string]any)

	if patch.Type != nil {
		fields["type"] = *patch.Type
	}

	if patch.Category != nil {
		fields["category"] = *patch.Category
	}

	if patch.Amount != nil {
		fields["amount"] = *patch.Amount
	}

	if patch.Date != nil {
		fields["date"] = patch.Date.Format(time.DateOnly)
	}

	if patch.ProjectID != nil {
		fields["project_id"] = *patch.ProjectID
	}

	if patch.Description != nil {
		fields["description"] = *patch.Description
	}

	if err := s.handles.Handle().Update(ctx, table, id, fields); err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.handles.Handle().Delete(ctx, table, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}
