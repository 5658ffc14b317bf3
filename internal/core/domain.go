package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

const dateLayout = "2006-01-02"

type (
	// Kind tells whether a transaction adds to or subtracts from the balance.
	Kind string

	// TransactionID identifies a recorded transaction.
	TransactionID string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		UserID         string
		Balance        Money
		InitialBalance Money
	}

	Category struct {
		UserID string
		Name   string
		Kind   Kind
	}

	// CategorySeed is a category template used when provisioning a new user.
	CategorySeed struct {
		Name string
		Kind Kind
	}

	Tag struct {
		UserID string
		Name   string
	}

	// TransactionInput is what a caller supplies to record a transaction.
	TransactionInput struct {
		UserID       string
		Amount       Money
		Kind         Kind
		CategoryName string
		TagNames     []string
		Date         Date
	}

	// Transaction is an immutable ledger entry.
	Transaction struct {
		ID           TransactionID
		UserID       string
		Amount       Money
		Kind         Kind
		CategoryName string
		TagNames     []string
		Date         Date
		CreatedAt    time.Time
	}
)

// ParseKind accepts INCOME/EXPENSE in any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

func (k Kind) String() string {
	return string(k)
}

// Signed returns the balance delta of amount for this kind.
func (k Kind) Signed(amount Money) Money {
	if k == Expense {
		return Money{Cents: -amount.Cents}
	}
	return amount
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Period returns the calendar month the date falls in.
func (d Date) Period() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf drops the time component of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate reports the first problem found in the input.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return ErrEmptyUser
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.CategoryName) == "" {
		return ErrEmptyCategory
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	for _, name := range in.TagNames {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyTag
		}
	}
	return nil
}

// Normalize trims names and collapses duplicate tags, keeping first-seen order.
func (in TransactionInput) Normalize() TransactionInput {
	in.UserID = strings.TrimSpace(in.UserID)
	in.CategoryName = strings.TrimSpace(in.CategoryName)
	in.Date = DateOf(in.Date.Time)
	in.TagNames = UniqueNames(in.TagNames)
	return in
}

// UniqueNames trims, drops blanks and duplicates, preserving order.
func UniqueNames(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (c CategorySeed) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategory
	}
	return c.Kind.Validate()
}

// DefaultCategories is the starter set given to every new account.
func DefaultCategories() []CategorySeed {
	return []CategorySeed{
		{Name: "Salary", Kind: Income},
		{Name: "Gifts", Kind: Income},
		{Name: "Other", Kind: Income},
		{Name: "Groceries", Kind: Expense},
		{Name: "Housing", Kind: Expense},
		{Name: "Transport", Kind: Expense},
		{Name: "Health", Kind: Expense},
		{Name: "Leisure", Kind: Expense},
		{Name: "Other", Kind: Expense},
	}
}

// ParseCategorySeeds parses "Name:KIND,Name:KIND" lists.
func ParseCategorySeeds(s string) ([]CategorySeed, error) {
	var out []CategorySeed
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid category seed %q: want Name:KIND", part)
		}
		kind, err := ParseKind(part[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid category seed %q: %w", part, err)
		}
		seed := CategorySeed{Name: strings.TrimSpace(part[:idx]), Kind: kind}
		if err := seed.Validate(); err != nil {
			return nil, fmt.Errorf("invalid category seed %q: %w", part, err)
		}
		out = append(out, seed)
	}
	return out, nil
}
