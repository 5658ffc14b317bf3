package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"finanze/internal/core"
	"finanze/internal/storage/memory"
)

func TestProvisioner_SeedNewAccountIsIdempotent(t *testing.T) {
	store := memory.New()
	p := NewProvisioner(store)
	ctx := context.Background()

	created, err := p.SeedNewAccount(ctx, "alice", core.DefaultCategories())
	require.NoError(t, err)
	assert.True(t, created)

	for _, seed := range core.DefaultCategories() {
		ok, err := store.CategoryExists(ctx, "alice", seed.Name, seed.Kind)
		require.NoError(t, err)
		assert.True(t, ok, "%s/%s", seed.Name, seed.Kind)
	}

	// A second delivery with a different set must not add anything.
	created, err = p.SeedNewAccount(ctx, "alice", []core.CategorySeed{{Name: "Crypto", Kind: core.Income}})
	require.NoError(t, err)
	assert.False(t, created)

	ok, err := store.CategoryExists(ctx, "alice", "Crypto", core.Income)
	require.NoError(t, err)
	assert.False(t, ok)

	acc, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
}

func TestProvisioner_ConcurrentSeedsCreateOnce(t *testing.T) {
	store := memory.New()
	p := NewProvisioner(store)
	ctx := context.Background()

	var createdCount atomic.Int32
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			created, err := p.SeedNewAccount(ctx, "alice", core.DefaultCategories())
			if created {
				createdCount.Add(1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), createdCount.Load())
}

func TestProvisioner_RejectsBadInput(t *testing.T) {
	p := NewProvisioner(memory.New())
	ctx := context.Background()

	_, err := p.SeedNewAccount(ctx, " ", core.DefaultCategories())
	assert.ErrorIs(t, err, core.ErrEmptyUser)

	_, err = p.SeedNewAccount(ctx, "alice", []core.CategorySeed{{Name: "", Kind: core.Income}})
	assert.ErrorIs(t, err, core.ErrEmptyCategory)

	_, err = p.SeedNewAccount(ctx, "alice", []core.CategorySeed{{Name: "Bonus", Kind: "SOMETIMES"}})
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestProvisioner_CreateTags(t *testing.T) {
	store := memory.New()
	p := NewProvisioner(store)
	ctx := context.Background()

	err := p.CreateTags(ctx, "alice", "food")
	require.ErrorIs(t, err, core.ErrAccountNotFound)

	_, err = p.SeedNewAccount(ctx, "alice", nil)
	require.NoError(t, err)

	require.NoError(t, p.CreateTags(ctx, "alice", "food", " food ", "travel"))
	require.NoError(t, p.CreateTags(ctx, "alice", "food"))

	found, err := store.FindTags(ctx, "alice", []string{"food", "travel", "gifts"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"food", "travel"}, found)

	assert.ErrorIs(t, p.CreateTags(ctx, "alice", ""), core.ErrEmptyTag)
}
