package storage

import (
	"context"
	"time"

	"finanze/internal/core"
	"finanze/internal/ports"
)

// repoTx is the ports.Tx view of one database transaction.
type repoTx struct {
	reader
	now func() time.Time
}

var _ ports.Tx = (*repoTx)(nil)

func (t *repoTx) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	err := t.queries.InsertTransaction(ctx, InsertTransactionParams{
		ID:           string(tx.ID),
		UserID:       tx.UserID,
		AmountCents:  tx.Amount.Cents,
		Kind:         tx.Kind.String(),
		CategoryName: tx.CategoryName,
		Date:         tx.Date.String(),
		CreatedAt:    tx.CreatedAt,
	})
	if err != nil {
		return classify("insert transaction", err)
	}
	for i, name := range tx.TagNames {
		if err := t.queries.InsertTransactionTag(ctx, string(tx.ID), int64(i), name); err != nil {
			return classify("insert transaction tag", err)
		}
	}
	return nil
}

func (t *repoTx) AddToBalance(ctx context.Context, userID string, delta core.Money) error {
	if err := t.queries.AddToBalance(ctx, userID, delta.Cents, t.now().UTC()); err != nil {
		return classify("add to balance", err)
	}
	return nil
}

func (t *repoTx) AddToAggregate(ctx context.Context, userID string, period core.YearMonth, income, expense core.Money) error {
	if err := period.Validate(); err != nil {
		return err
	}
	err := t.queries.AddToAggregate(ctx, MonthlyAggregate{
		UserID:       userID,
		Year:         int64(period.Year),
		Month:        int64(period.Month),
		IncomeCents:  income.Cents,
		ExpenseCents: expense.Cents,
	})
	if err != nil {
		return classify("add to aggregate", err)
	}
	return nil
}

func (t *repoTx) CreateAccount(ctx context.Context, userID string) (bool, error) {
	n, err := t.queries.CreateAccount(ctx, userID, t.now().UTC())
	if err != nil {
		return false, classify("create account", err)
	}
	return n > 0, nil
}

func (t *repoTx) CreateCategory(ctx context.Context, c core.Category) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if err := t.queries.CreateCategory(ctx, c.UserID, c.Name, c.Kind.String()); err != nil {
		return classify("create category", err)
	}
	return nil
}

func (t *repoTx) CreateTag(ctx context.Context, tag core.Tag) error {
	if err := t.queries.CreateTag(ctx, tag.UserID, tag.Name); err != nil {
		return classify("create tag", err)
	}
	return nil
}
