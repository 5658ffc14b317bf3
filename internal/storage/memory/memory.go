package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"finanze/internal/core"
	"finanze/internal/ports"
)

type categoryKey struct {
	userID string
	name   string
	kind   core.Kind
}

type tagKey struct {
	userID string
	name   string
}

type aggregateKey struct {
	userID string
	period core.YearMonth
}

// Store keeps the ledger in process memory. Writes made inside WithTx are
// staged and applied under a short commit latch, so a failed or cancelled
// unit of work leaves no trace and increments never lose updates.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]core.Account
	categories   map[categoryKey]struct{}
	tags         map[tagKey]struct{}
	transactions map[string][]core.Transaction
	aggregates   map[aggregateKey]core.MonthlyAggregate
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:     make(map[string]core.Account),
		categories:   make(map[categoryKey]struct{}),
		tags:         make(map[tagKey]struct{}),
		transactions: make(map[string][]core.Transaction),
		aggregates:   make(map[aggregateKey]core.MonthlyAggregate),
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) CategoryExists(_ context.Context, userID, name string, kind core.Kind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.categories[categoryKey{userID, name, kind}]
	return ok, nil
}

func (s *Store) FindTags(_ context.Context, userID string, names []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []string
	for _, name := range names {
		if _, ok := s.tags[tagKey{userID, name}]; ok {
			found = append(found, name)
		}
	}
	return found, nil
}

func (s *Store) GetAccount(_ context.Context, userID string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return core.Account{}, fmt.Errorf("%w: %s", core.ErrAccountNotFound, userID)
	}
	return a, nil
}

func (s *Store) ListAggregatesInRange(_ context.Context, userID string, from, to core.YearMonth) ([]core.MonthlyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.MonthlyAggregate
	for k, agg := range s.aggregates {
		if k.userID != userID || k.period.Before(from) || to.Before(k.period) {
			continue
		}
		out = append(out, agg)
	}
	sortAggregates(out)
	return out, nil
}

func (s *Store) ListAggregates(_ context.Context, userID string) ([]core.MonthlyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.MonthlyAggregate
	for k, agg := range s.aggregates {
		if k.userID == userID {
			out = append(out, agg)
		}
	}
	sortAggregates(out)
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, tx := range s.transactions[userID] {
		if !from.IsZero() && tx.Date.Before(from.Time) {
			continue
		}
		if !to.IsZero() && tx.Date.After(to.Time) {
			continue
		}
		tx.TagNames = slices.Clone(tx.TagNames)
		out = append(out, tx)
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// WithTx runs fn against a staging view and commits the staged writes
// atomically if fn succeeds and ctx is still live.
func (s *Store) WithTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &stagedTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commitLocked()
}

func sortAggregates(aggs []core.MonthlyAggregate) {
	slices.SortFunc(aggs, func(a, b core.MonthlyAggregate) int {
		return a.Period.Index() - b.Period.Index()
	})
}
