package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"finanze/internal/core"
	"finanze/internal/ports"
)

const (
	minDate = "0001-01-01"
	maxDate = "9999-12-31"
)

// Repository is the SQL-backed ledger store. The same statements serve
// SQLite and Postgres; balances and aggregates are only ever changed with
// single-statement upserts so concurrent units of work never lose increments.
type Repository struct {
	reader
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ ports.Store = (*Repository)(nil)

// SQLiteDSN builds the connection string used for dbPath: WAL journal, a
// busy timeout and BEGIN IMMEDIATE so writers queue instead of deadlocking.
func SQLiteDSN(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + dbPath + "?" + q.Encode()
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(DialectSQLite, SQLiteDSN(dbPath))
}

func NewPostgresRepository(databaseURL string) (*Repository, error) {
	return open(DialectPostgres, databaseURL)
}

func open(dialect Dialect, dsn string) (*Repository, error) {
	db, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Ledger database ready", "dialect", string(dialect))

	return &Repository{
		reader:  reader{queries: New(db, dialect)},
		db:      db,
		dialect: dialect,
		now:     time.Now,
	}, nil
}

func (r *Repository) Dialect() Dialect {
	return r.dialect
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithTx implements ports.Store. The sql.Tx is bound to ctx, so cancelling
// ctx rolls the unit of work back.
func (r *Repository) WithTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}

	tx := &repoTx{
		reader: reader{queries: r.queries.WithTx(sqlTx)},
		now:    r.now,
	}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return classifyCommit(ctx, err)
	}
	return nil
}

// reader holds the read queries shared by the repository and its
// transactions.
type reader struct {
	queries *Queries
}

func (r reader) CategoryExists(ctx context.Context, userID, name string, kind core.Kind) (bool, error) {
	ok, err := r.queries.CategoryExists(ctx, userID, name, kind.String())
	if err != nil {
		return false, classify("category exists", err)
	}
	return ok, nil
}

func (r reader) FindTags(ctx context.Context, userID string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	found, err := r.queries.FindTags(ctx, userID, names)
	if err != nil {
		return nil, classify("find tags", err)
	}
	return found, nil
}

func (r reader) GetAccount(ctx context.Context, userID string) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("%w: %s", core.ErrAccountNotFound, userID)
	}
	if err != nil {
		return core.Account{}, classify("get account", err)
	}
	return core.Account{
		UserID:         row.UserID,
		Balance:        core.Money{Cents: row.BalanceCents},
		InitialBalance: core.Money{Cents: row.InitialBalanceCents},
	}, nil
}

func (r reader) ListAggregatesInRange(ctx context.Context, userID string, from, to core.YearMonth) ([]core.MonthlyAggregate, error) {
	rows, err := r.queries.ListAggregatesInRange(ctx, userID, int64(from.Index()), int64(to.Index()))
	if err != nil {
		return nil, classify("list aggregates in range", err)
	}
	return toAggregates(rows), nil
}

func (r reader) ListAggregates(ctx context.Context, userID string) ([]core.MonthlyAggregate, error) {
	rows, err := r.queries.ListAggregates(ctx, userID)
	if err != nil {
		return nil, classify("list aggregates", err)
	}
	return toAggregates(rows), nil
}

func (r reader) ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	lo, hi := minDate, maxDate
	if !from.IsZero() {
		lo = from.String()
	}
	if !to.IsZero() {
		hi = to.String()
	}

	rows, err := r.queries.ListTransactions(ctx, userID, lo, hi)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	tagRows, err := r.queries.ListTransactionTags(ctx, userID, lo, hi)
	if err != nil {
		return nil, classify("list transaction tags", err)
	}
	tags := make(map[string][]string, len(rows))
	for _, t := range tagRows {
		tags[t.TransactionID] = append(tags[t.TransactionID], t.TagName)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, &core.StorageError{Op: "list transactions", Err: err}
		}
		out = append(out, core.Transaction{
			ID:           core.TransactionID(row.ID),
			UserID:       row.UserID,
			Amount:       core.Money{Cents: row.AmountCents},
			Kind:         core.Kind(row.Kind),
			CategoryName: row.CategoryName,
			TagNames:     tags[row.ID],
			Date:         date,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func toAggregates(rows []MonthlyAggregate) []core.MonthlyAggregate {
	out := make([]core.MonthlyAggregate, len(rows))
	for i, row := range rows {
		out[i] = core.MonthlyAggregate{
			UserID:  row.UserID,
			Period:  core.YearMonth{Year: int(row.Year), Month: int(row.Month)},
			Income:  core.Money{Cents: row.IncomeCents},
			Expense: core.Money{Cents: row.ExpenseCents},
		}
	}
	return out
}
