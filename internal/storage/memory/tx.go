package memory

import (
	"context"
	"fmt"
	"slices"

	"finanze/internal/core"
)

type balanceDelta struct {
	userID string
	delta  core.Money
}

type aggregateDelta struct {
	key             aggregateKey
	income, expense core.Money
}

// stagedTx records writes until commit. Reads see committed state plus
// the accounts, categories and tags staged by this transaction.
type stagedTx struct {
	store *Store

	transactions []core.Transaction
	balances     []balanceDelta
	aggregates   []aggregateDelta
	newAccounts  []string
	categories   []core.Category
	tags         []core.Tag
}

func (t *stagedTx) CategoryExists(ctx context.Context, userID, name string, kind core.Kind) (bool, error) {
	for _, c := range t.categories {
		if c.UserID == userID && c.Name == name && c.Kind == kind {
			return true, nil
		}
	}
	return t.store.CategoryExists(ctx, userID, name, kind)
}

func (t *stagedTx) FindTags(ctx context.Context, userID string, names []string) ([]string, error) {
	found, err := t.store.FindTags(ctx, userID, names)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if slices.Contains(found, name) {
			continue
		}
		for _, tag := range t.tags {
			if tag.UserID == userID && tag.Name == name {
				found = append(found, name)
				break
			}
		}
	}
	return found, nil
}

func (t *stagedTx) GetAccount(ctx context.Context, userID string) (core.Account, error) {
	if slices.Contains(t.newAccounts, userID) {
		return core.Account{UserID: userID}, nil
	}
	return t.store.GetAccount(ctx, userID)
}

func (t *stagedTx) InsertTransaction(_ context.Context, tx core.Transaction) error {
	tx.TagNames = slices.Clone(tx.TagNames)
	t.transactions = append(t.transactions, tx)
	return nil
}

func (t *stagedTx) AddToBalance(_ context.Context, userID string, delta core.Money) error {
	t.balances = append(t.balances, balanceDelta{userID: userID, delta: delta})
	return nil
}

func (t *stagedTx) AddToAggregate(_ context.Context, userID string, period core.YearMonth, income, expense core.Money) error {
	if err := period.Validate(); err != nil {
		return err
	}
	t.aggregates = append(t.aggregates, aggregateDelta{
		key:     aggregateKey{userID: userID, period: period},
		income:  income,
		expense: expense,
	})
	return nil
}

func (t *stagedTx) CreateAccount(ctx context.Context, userID string) (bool, error) {
	if _, err := t.GetAccount(ctx, userID); err == nil {
		return false, nil
	}
	t.newAccounts = append(t.newAccounts, userID)
	return true, nil
}

func (t *stagedTx) CreateCategory(_ context.Context, c core.Category) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	t.categories = append(t.categories, c)
	return nil
}

func (t *stagedTx) CreateTag(_ context.Context, tag core.Tag) error {
	t.tags = append(t.tags, tag)
	return nil
}

// commitLocked applies staged writes. The caller holds store.mu.
func (t *stagedTx) commitLocked() error {
	s := t.store

	for _, tx := range t.transactions {
		for _, existing := range s.transactions[tx.UserID] {
			if existing.ID == tx.ID {
				return &core.StorageError{Op: "insert transaction", Err: fmt.Errorf("duplicate id %s", tx.ID)}
			}
		}
	}

	// A concurrent commit may have created an account staged as new.
	for _, userID := range t.newAccounts {
		if _, ok := s.accounts[userID]; ok {
			return fmt.Errorf("%w: account %s created concurrently", core.ErrConflict, userID)
		}
	}

	for _, userID := range t.newAccounts {
		s.accounts[userID] = core.Account{UserID: userID}
	}
	for _, c := range t.categories {
		s.categories[categoryKey{c.UserID, c.Name, c.Kind}] = struct{}{}
	}
	for _, tag := range t.tags {
		s.tags[tagKey{tag.UserID, tag.Name}] = struct{}{}
	}
	for _, tx := range t.transactions {
		s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	}
	for _, b := range t.balances {
		acc := s.accounts[b.userID]
		acc.UserID = b.userID
		acc.Balance = acc.Balance.Add(b.delta)
		s.accounts[b.userID] = acc
	}
	for _, a := range t.aggregates {
		agg := s.aggregates[a.key]
		agg.UserID = a.key.userID
		agg.Period = a.key.period
		agg.Income = agg.Income.Add(a.income)
		agg.Expense = agg.Expense.Add(a.expense)
		s.aggregates[a.key] = agg
	}
	return nil
}
