package ports

import (
	"context"

	"finanze/internal/core"
)

// Ports for outbound adapters.
type (
	// ReferenceReader answers existence questions about categories and tags.
	ReferenceReader interface {
		CategoryExists(ctx context.Context, userID, name string, kind core.Kind) (bool, error)
		// FindTags returns the subset of names that exist for the user.
		FindTags(ctx context.Context, userID string, names []string) ([]string, error)
	}

	AccountReader interface {
		// GetAccount returns core.ErrAccountNotFound for unknown users.
		GetAccount(ctx context.Context, userID string) (core.Account, error)
	}

	// AggregateReader reads stored monthly aggregates, ordered by period.
	AggregateReader interface {
		ListAggregatesInRange(ctx context.Context, userID string, from, to core.YearMonth) ([]core.MonthlyAggregate, error)
		ListAggregates(ctx context.Context, userID string) ([]core.MonthlyAggregate, error)
	}

	TransactionReader interface {
		// ListTransactions returns transactions dated within [from, to],
		// ordered by date then creation time. Zero dates leave a side open.
		ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error)
	}

	// LedgerWriter is available only inside a unit of work. Balance and
	// aggregate writes are atomic increments that create the row if absent.
	LedgerWriter interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) error
		AddToBalance(ctx context.Context, userID string, delta core.Money) error
		AddToAggregate(ctx context.Context, userID string, period core.YearMonth, income, expense core.Money) error
		// CreateAccount inserts a zero-balance account unless one exists and
		// reports whether it did.
		CreateAccount(ctx context.Context, userID string) (bool, error)
		// CreateCategory is a no-op when the category already exists.
		CreateCategory(ctx context.Context, c core.Category) error
		// CreateTag is a no-op when the tag already exists.
		CreateTag(ctx context.Context, t core.Tag) error
	}

	// Tx is the view of the store inside one atomic unit of work.
	Tx interface {
		ReferenceReader
		AccountReader
		LedgerWriter
	}

	Store interface {
		ReferenceReader
		AccountReader
		AggregateReader
		TransactionReader

		// WithTx runs fn in one atomic unit of work. A non-nil error from fn,
		// or a cancelled ctx, discards every write. Concurrent-update
		// failures are reported as core.ErrConflict.
		WithTx(ctx context.Context, fn func(tx Tx) error) error

		Close() error
	}
)
