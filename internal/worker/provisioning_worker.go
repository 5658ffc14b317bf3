package worker

import (
	"context"
	"fmt"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/log"
)

// Seeder is the provisioning hook the worker drives.
type Seeder interface {
	SeedNewAccount(ctx context.Context, userID string, defaults []core.CategorySeed) (bool, error)
}

// ProvisioningWorker seeds the ledger of users announced over AMQP
type ProvisioningWorker struct {
	seeder   Seeder
	defaults []core.CategorySeed
}

func NewProvisioningWorker(seeder Seeder, defaults []core.CategorySeed) *ProvisioningWorker {
	if defaults == nil {
		defaults = core.DefaultCategories()
	}
	return &ProvisioningWorker{
		seeder:   seeder,
		defaults: defaults,
	}
}

// HandleUserCreated processes a single user created message from AMQP.
// Validation failures are wrapped with amqp.ErrReject so the message is
// dropped; anything else is returned as is and the message is requeued.
func (w *ProvisioningWorker) HandleUserCreated(ctx context.Context, msg *amqp.UserCreatedMessage) error {
	logger := log.FromContext(ctx, log.ComponentWorker)
	logger.InfoContext(ctx, "Processing user created message",
		"user_id", msg.UserID,
		"timestamp", msg.Timestamp)

	created, err := w.seeder.SeedNewAccount(ctx, msg.UserID, w.defaults)
	if err != nil {
		if core.IsValidation(err) {
			return fmt.Errorf("%w: seed account %s: %v", amqp.ErrReject, msg.UserID, err)
		}
		return fmt.Errorf("seed account %s: %w", msg.UserID, err)
	}

	if created {
		logger.InfoContext(ctx, "Provisioned new account",
			"user_id", msg.UserID,
			"categories", len(w.defaults))
	} else {
		logger.InfoContext(ctx, "Account already provisioned, message was a redelivery",
			"user_id", msg.UserID)
	}
	return nil
}

// SeedResult summarizes a batch seeding run.
type SeedResult struct {
	Created  int
	Existing int
	Failed   int
}

// SeedUsers provisions every listed user, continuing past failures. It is
// the offline counterpart of HandleUserCreated, used to backfill users whose
// events were lost.
func (w *ProvisioningWorker) SeedUsers(ctx context.Context, userIDs []string) (SeedResult, error) {
	logger := log.FromContext(ctx, log.ComponentWorker)
	var res SeedResult
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := w.seeder.SeedNewAccount(ctx, userID, w.defaults)
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "Failed to seed account", "user_id", userID, "error", err)
			res.Failed++
		case created:
			res.Created++
		default:
			res.Existing++
		}
	}

	logger.InfoContext(ctx, "Seeding completed",
		"total", len(userIDs),
		"created", res.Created,
		"existing", res.Existing,
		"errors", res.Failed)

	if res.Failed > 0 {
		return res, fmt.Errorf("%d of %d accounts failed to seed", res.Failed, len(userIDs))
	}
	return res, nil
}
