package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the SQL flavour. Statements are written with ? placeholders
// and rebound for Postgres.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Account rows.

type Account struct {
	UserID              string
	BalanceCents        int64
	InitialBalanceCents int64
	CreatedAt           time.Time
}

const getAccount = `SELECT user_id, balance_cents, initial_balance_cents, created_at
FROM accounts
WHERE user_id = ?`

func (q *Queries) GetAccount(ctx context.Context, userID string) (Account, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getAccount), userID)
	var a Account
	err := row.Scan(&a.UserID, &a.BalanceCents, &a.InitialBalanceCents, &a.CreatedAt)
	return a, err
}

const createAccount = `INSERT INTO accounts (user_id, balance_cents, initial_balance_cents, created_at)
VALUES (?, 0, 0, ?)
ON CONFLICT (user_id) DO NOTHING`

func (q *Queries) CreateAccount(ctx context.Context, userID string, createdAt time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.rebind(createAccount), userID, createdAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const addToBalance = `INSERT INTO accounts (user_id, balance_cents, initial_balance_cents, created_at)
VALUES (?, ?, 0, ?)
ON CONFLICT (user_id) DO UPDATE SET balance_cents = accounts.balance_cents + excluded.balance_cents`

func (q *Queries) AddToBalance(ctx context.Context, userID string, deltaCents int64, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx, q.rebind(addToBalance), userID, deltaCents, createdAt)
	return err
}

// Reference rows.

const categoryExists = `SELECT COUNT(*) FROM categories
WHERE user_id = ? AND name = ? AND kind = ?`

func (q *Queries) CategoryExists(ctx context.Context, userID, name, kind string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, q.rebind(categoryExists), userID, name, kind).Scan(&n)
	return n > 0, err
}

const createCategory = `INSERT INTO categories (user_id, name, kind)
VALUES (?, ?, ?)
ON CONFLICT (user_id, name, kind) DO NOTHING`

func (q *Queries) CreateCategory(ctx context.Context, userID, name, kind string) error {
	_, err := q.db.ExecContext(ctx, q.rebind(createCategory), userID, name, kind)
	return err
}

const createTag = `INSERT INTO tags (user_id, name)
VALUES (?, ?)
ON CONFLICT (user_id, name) DO NOTHING`

func (q *Queries) CreateTag(ctx context.Context, userID, name string) error {
	_, err := q.db.ExecContext(ctx, q.rebind(createTag), userID, name)
	return err
}

// FindTags builds an IN list sized to names; callers pass at least one name.
func (q *Queries) FindTags(ctx context.Context, userID string, names []string) ([]string, error) {
	query := `SELECT name FROM tags WHERE user_id = ? AND name IN (?` +
		strings.Repeat(", ?", len(names)-1) + `) ORDER BY name`
	args := make([]interface{}, 0, len(names)+1)
	args = append(args, userID)
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := q.db.QueryContext(ctx, q.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found = append(found, name)
	}
	return found, rows.Err()
}

// Transaction rows.

type Transaction struct {
	ID           string
	UserID       string
	AmountCents  int64
	Kind         string
	CategoryName string
	Date         string
	CreatedAt    time.Time
}

type InsertTransactionParams = Transaction

const insertTransaction = `INSERT INTO transactions (id, user_id, amount_cents, kind, category_name, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertTransaction),
		arg.ID, arg.UserID, arg.AmountCents, arg.Kind, arg.CategoryName, arg.Date, arg.CreatedAt)
	return err
}

const insertTransactionTag = `INSERT INTO transaction_tags (transaction_id, position, tag_name)
VALUES (?, ?, ?)`

func (q *Queries) InsertTransactionTag(ctx context.Context, transactionID string, position int64, tagName string) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertTransactionTag), transactionID, position, tagName)
	return err
}

const listTransactions = `SELECT id, user_id, amount_cents, kind, category_name, date, created_at
FROM transactions
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date, created_at, id`

// ListTransactions compares ISO dates as text, which orders them correctly.
func (q *Queries) ListTransactions(ctx context.Context, userID, from, to string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listTransactions), userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AmountCents, &t.Kind, &t.CategoryName, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

type TransactionTag struct {
	TransactionID string
	TagName       string
}

const listTransactionTags = `SELECT tt.transaction_id, tt.tag_name
FROM transaction_tags tt
JOIN transactions t ON t.id = tt.transaction_id
WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?
ORDER BY tt.transaction_id, tt.position`

func (q *Queries) ListTransactionTags(ctx context.Context, userID, from, to string) ([]TransactionTag, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listTransactionTags), userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionTag
	for rows.Next() {
		var t TransactionTag
		if err := rows.Scan(&t.TransactionID, &t.TagName); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// Monthly aggregate rows.

type MonthlyAggregate struct {
	UserID       string
	Year         int64
	Month        int64
	IncomeCents  int64
	ExpenseCents int64
}

const addToAggregate = `INSERT INTO monthly_aggregates (user_id, year, month, income_cents, expense_cents)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, year, month) DO UPDATE SET
    income_cents = monthly_aggregates.income_cents + excluded.income_cents,
    expense_cents = monthly_aggregates.expense_cents + excluded.expense_cents`

func (q *Queries) AddToAggregate(ctx context.Context, arg MonthlyAggregate) error {
	_, err := q.db.ExecContext(ctx, q.rebind(addToAggregate),
		arg.UserID, arg.Year, arg.Month, arg.IncomeCents, arg.ExpenseCents)
	return err
}

const listAggregatesInRange = `SELECT user_id, year, month, income_cents, expense_cents
FROM monthly_aggregates
WHERE user_id = ? AND (year * 12 + month - 1) BETWEEN ? AND ?
ORDER BY year, month`

// ListAggregatesInRange takes period indexes as returned by core.YearMonth.Index.
func (q *Queries) ListAggregatesInRange(ctx context.Context, userID string, from, to int64) ([]MonthlyAggregate, error) {
	return q.listAggregates(ctx, listAggregatesInRange, userID, from, to)
}

const listAggregates = `SELECT user_id, year, month, income_cents, expense_cents
FROM monthly_aggregates
WHERE user_id = ?
ORDER BY year, month`

func (q *Queries) ListAggregates(ctx context.Context, userID string) ([]MonthlyAggregate, error) {
	return q.listAggregates(ctx, listAggregates, userID)
}

func (q *Queries) listAggregates(ctx context.Context, query string, args ...interface{}) ([]MonthlyAggregate, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthlyAggregate
	for rows.Next() {
		var a MonthlyAggregate
		if err := rows.Scan(&a.UserID, &a.Year, &a.Month, &a.IncomeCents, &a.ExpenseCents); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
