package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/ports"
)

// LedgerConfig holds configuration for the ledger service
type LedgerConfig struct {
	// MaxRetries is how many times a conflicting unit of work is re-run
	// after the first attempt (default: 3)
	MaxRetries int

	// RetryBackoff is the base pause between attempts, multiplied by the
	// attempt number (default: 10ms)
	RetryBackoff time.Duration
}

// DefaultLedgerConfig returns sensible defaults
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxRetries:   3,
		RetryBackoff: 10 * time.Millisecond,
	}
}

// LedgerService records transactions and keeps the account balance and the
// monthly aggregate in step with the transaction log.
type LedgerService struct {
	store  ports.Store
	config LedgerConfig
	logger *log.Logger

	newID func() string
	now   func() time.Time
}

func NewLedgerService(store ports.Store, config LedgerConfig) *LedgerService {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &LedgerService{
		store:  store,
		config: config,
		logger: log.Default(log.ComponentLedger),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// AppendTransaction validates the input and its references, then writes the
// transaction, the balance delta and the aggregate increment as one atomic
// unit of work. Conflicts are retried up to MaxRetries times.
func (s *LedgerService) AppendTransaction(ctx context.Context, in core.TransactionInput) (core.TransactionID, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	in = in.Normalize()

	tx := core.Transaction{
		ID:           core.TransactionID(s.newID()),
		UserID:       in.UserID,
		Amount:       in.Amount,
		Kind:         in.Kind,
		CategoryName: in.CategoryName,
		TagNames:     in.TagNames,
		Date:         in.Date,
	}

	var lastErr error
	attempts := s.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		tx.CreatedAt = s.now().UTC()
		err := s.store.WithTx(ctx, func(w ports.Tx) error {
			return s.apply(ctx, w, tx)
		})
		if err == nil {
			s.logger.InfoContext(ctx, "Transaction appended",
				log.NewFields().
					WithUser(tx.UserID).
					WithTransaction(string(tx.ID), tx.Amount.Cents, tx.Kind.String(), tx.CategoryName, tx.TagNames).
					WithPeriod(tx.Date.Year(), tx.Date.Month()).
					ToSlice()...)
			return tx.ID, nil
		}
		if !core.IsRetryable(err) {
			return "", err
		}

		lastErr = err
		s.logger.WarnContext(ctx, "Ledger update conflicted, retrying",
			log.FieldUserID, tx.UserID,
			log.FieldAttempt, attempt,
			log.FieldError, err)

		if attempt < attempts {
			if err := sleepContext(ctx, time.Duration(attempt)*s.config.RetryBackoff); err != nil {
				return "", err
			}
		}
	}

	s.logger.ErrorContext(ctx, "Ledger update gave up after conflicts",
		log.FieldUserID, tx.UserID,
		log.FieldAttempt, attempts,
		log.FieldError, lastErr)
	return "", &core.ConflictError{UserID: tx.UserID, Attempts: attempts, Err: lastErr}
}

// apply is the body of the unit of work. Every write is an increment so a
// re-run after a rollback is safe.
func (s *LedgerService) apply(ctx context.Context, w ports.Tx, tx core.Transaction) error {
	if err := NewReferenceValidator(w).Validate(ctx, tx.UserID, tx.CategoryName, tx.Kind, tx.TagNames); err != nil {
		return err
	}

	if err := w.InsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := w.AddToBalance(ctx, tx.UserID, tx.Kind.Signed(tx.Amount)); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	var income, expense core.Money
	if tx.Kind == core.Income {
		income = tx.Amount
	} else {
		expense = tx.Amount
	}
	if err := w.AddToAggregate(ctx, tx.UserID, tx.Date.Period(), income, expense); err != nil {
		return fmt.Errorf("update monthly aggregate: %w", err)
	}

	return nil
}

// GetBalance returns the running balance. Unlike AppendTransaction it does
// not create the account: unseeded users get core.ErrAccountNotFound.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (core.Money, error) {
	if userID == "" {
		return core.Money{}, core.ErrEmptyUser
	}
	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return core.Money{}, err
	}
	return account.Balance, nil
}

// ListTransactions returns the user's transactions dated within [from, to].
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrEmptyUser
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		return nil, fmt.Errorf("%w: %s is after %s", core.ErrInvalidRange, from, to)
	}
	return s.store.ListTransactions(ctx, userID, from, to)
}

// CheckConsistency recomputes the balance and every monthly aggregate from the
// transaction log and reports where the stored counters disagree. It only
// reads; repairs are left to the operator.
func (s *LedgerService) CheckConsistency(ctx context.Context, userID string) (core.ConsistencyReport, error) {
	report := core.ConsistencyReport{UserID: userID}
	if userID == "" {
		return report, core.ErrEmptyUser
	}

	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return report, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, core.Date{}, core.Date{})
	if err != nil {
		return report, fmt.Errorf("list transactions: %w", err)
	}
	stored, err := s.store.ListAggregates(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("list aggregates: %w", err)
	}

	report.Transactions = len(txs)
	report.StoredBalance = account.Balance
	report.ExpectedBalance = account.InitialBalance

	expected := make(map[core.YearMonth]core.MonthSummary)
	for _, tx := range txs {
		report.ExpectedBalance = report.ExpectedBalance.Add(tx.Kind.Signed(tx.Amount))
		sum := expected[tx.Date.Period()]
		sum.Period = tx.Date.Period()
		if tx.Kind == core.Income {
			sum.Income = sum.Income.Add(tx.Amount)
		} else {
			sum.Expense = sum.Expense.Add(tx.Amount)
		}
		expected[sum.Period] = sum
	}

	seen := make(map[core.YearMonth]bool, len(stored))
	for _, agg := range stored {
		seen[agg.Period] = true
		want := expected[agg.Period]
		want.Period = agg.Period
		if agg.Income != want.Income || agg.Expense != want.Expense {
			report.MismatchedPeriods = append(report.MismatchedPeriods, core.PeriodMismatch{
				Period:   agg.Period,
				Stored:   agg.Summary(),
				Expected: want,
			})
		}
	}
	for period, want := range expected {
		if !seen[period] {
			report.MismatchedPeriods = append(report.MismatchedPeriods, core.PeriodMismatch{
				Period:   period,
				Stored:   core.MonthSummary{Period: period},
				Expected: want,
			})
		}
	}
	sortMismatches(report.MismatchedPeriods)

	if !report.Consistent() {
		s.logger.WarnContext(ctx, "Ledger drift detected",
			log.FieldUserID, userID,
			"stored_balance", report.StoredBalance.String(),
			"expected_balance", report.ExpectedBalance.String(),
			"mismatched_periods", len(report.MismatchedPeriods))
	}
	return report, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sortMismatches(m []core.PeriodMismatch) {
	slices.SortFunc(m, func(a, b core.PeriodMismatch) int {
		return a.Period.Index() - b.Period.Index()
	})
}
