package services

import (
	"context"
	"fmt"
	"strings"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/ports"
)

const seedAttempts = 3

// Provisioner creates the initial ledger state for a newly registered user.
type Provisioner struct {
	store  ports.Store
	logger *log.Logger
}

func NewProvisioner(store ports.Store) *Provisioner {
	return &Provisioner{
		store:  store,
		logger: log.Default(log.ComponentProvisioning),
	}
}

// SeedNewAccount creates a zero-balance account and the given starter
// categories in one unit of work. If the account already exists nothing is
// written and false is returned, so redelivered events are harmless.
func (p *Provisioner) SeedNewAccount(ctx context.Context, userID string, defaults []core.CategorySeed) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, core.ErrEmptyUser
	}
	for _, seed := range defaults {
		if err := seed.Validate(); err != nil {
			return false, fmt.Errorf("category seed %q: %w", seed.Name, err)
		}
	}

	var created bool
	seed := func(tx ports.Tx) error {
		var err error
		created, err = tx.CreateAccount(ctx, userID)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if !created {
			return nil
		}
		for _, seed := range defaults {
			c := core.Category{UserID: userID, Name: strings.TrimSpace(seed.Name), Kind: seed.Kind}
			if err := tx.CreateCategory(ctx, c); err != nil {
				return fmt.Errorf("create category %q: %w", c.Name, err)
			}
		}
		return nil
	}

	// A concurrent seed of the same user surfaces as a conflict; the rerun
	// then finds the account and turns into a no-op.
	var err error
	for attempt := 1; attempt <= seedAttempts; attempt++ {
		created = false
		err = p.store.WithTx(ctx, seed)
		if !core.IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return false, err
	}

	if created {
		p.logger.InfoContext(ctx, "Account seeded",
			log.FieldUserID, userID,
			log.FieldCount, len(defaults))
	} else {
		p.logger.InfoContext(ctx, "Account already provisioned, skipping seed",
			log.FieldUserID, userID)
	}
	return created, nil
}

// CreateTags registers tag names for an existing user. Names that already
// exist are left alone.
func (p *Provisioner) CreateTags(ctx context.Context, userID string, names ...string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return core.ErrEmptyUser
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return core.ErrEmptyTag
		}
	}
	return p.store.WithTx(ctx, func(tx ports.Tx) error {
		if _, err := tx.GetAccount(ctx, userID); err != nil {
			return err
		}
		for _, name := range core.UniqueNames(names) {
			if err := tx.CreateTag(ctx, core.Tag{UserID: userID, Name: name}); err != nil {
				return fmt.Errorf("create tag %q: %w", name, err)
			}
		}
		return nil
	})
}
