package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"finanze/internal/core"
	"finanze/internal/ports"
	"finanze/internal/storage/memory"
)

// flakyStore reports a conflict for the first failures units of work
// without running them.
type flakyStore struct {
	*memory.Store

	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) WithTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: injected", core.ErrConflict)
	}
	return f.Store.WithTx(ctx, fn)
}

func (f *flakyStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// seedUser provisions userID with the default categories and the given tags.
func seedUser(t *testing.T, store ports.Store, userID string, tags ...string) {
	t.Helper()
	ctx := context.Background()
	p := NewProvisioner(store)
	created, err := p.SeedNewAccount(ctx, userID, core.DefaultCategories())
	require.NoError(t, err)
	require.True(t, created)
	if len(tags) > 0 {
		require.NoError(t, p.CreateTags(ctx, userID, tags...))
	}
}

func expense(userID, category string, cents int64, date core.Date, tags ...string) core.TransactionInput {
	return core.TransactionInput{
		UserID:       userID,
		Amount:       core.Money{Cents: cents},
		Kind:         core.Expense,
		CategoryName: category,
		TagNames:     tags,
		Date:         date,
	}
}

func income(userID, category string, cents int64, date core.Date, tags ...string) core.TransactionInput {
	in := expense(userID, category, cents, date, tags...)
	in.Kind = core.Income
	return in
}

func fastLedger(store ports.Store, maxRetries int) *LedgerService {
	return NewLedgerService(store, LedgerConfig{MaxRetries: maxRetries, RetryBackoff: 0})
}
