package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Period() != (YearMonth{Year: 2024, Month: 2}) || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected format %q", d.String())
	}
	if _, err := ParseDate("2023-02-29"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"INCOME", Income, true},
		{"expense", Expense, true},
		{" Income ", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindSigned(t *testing.T) {
	amount := Money{Cents: 250}
	if got := Income.Signed(amount); got.Cents != 250 {
		t.Fatalf("income delta: got %d", got.Cents)
	}
	if got := Expense.Signed(amount); got.Cents != -250 {
		t.Fatalf("expense delta: got %d", got.Cents)
	}
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		UserID:       "u1",
		Amount:       Money{Cents: 100},
		Kind:         Expense,
		CategoryName: "Groceries",
		TagNames:     []string{"lunch"},
		Date:         NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionInput)
		want   error
	}{
		{"empty user", func(in *TransactionInput) { in.UserID = " " }, ErrEmptyUser},
		{"zero amount", func(in *TransactionInput) { in.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(in *TransactionInput) { in.Amount = Money{Cents: -5} }, ErrInvalidAmount},
		{"bad kind", func(in *TransactionInput) { in.Kind = "TRANSFER" }, ErrInvalidKind},
		{"empty category", func(in *TransactionInput) { in.CategoryName = "" }, ErrEmptyCategory},
		{"zero date", func(in *TransactionInput) { in.Date = Date{} }, ErrInvalidDate},
		{"blank tag", func(in *TransactionInput) { in.TagNames = []string{"ok", "  "} }, ErrEmptyTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := good
			tt.mutate(&in)
			err := in.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestTransactionInputNormalize(t *testing.T) {
	in := TransactionInput{
		UserID:       " u1 ",
		CategoryName: " Food ",
		TagNames:     []string{"lunch", " dinner", "lunch", "dinner "},
		Date:         Date{Time: time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)},
	}.Normalize()

	if in.UserID != "u1" || in.CategoryName != "Food" {
		t.Fatalf("names not trimmed: %+v", in)
	}
	if !reflect.DeepEqual(in.TagNames, []string{"lunch", "dinner"}) {
		t.Fatalf("unexpected tags: %v", in.TagNames)
	}
	if in.Date.Hour() != 0 || in.Date.Day() != 5 {
		t.Fatalf("time component not dropped: %v", in.Date)
	}
}

func TestParseCategorySeeds(t *testing.T) {
	seeds, err := ParseCategorySeeds("Salary:income, Rent:EXPENSE ,,Food:expense")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	want := []CategorySeed{
		{Name: "Salary", Kind: Income},
		{Name: "Rent", Kind: Expense},
		{Name: "Food", Kind: Expense},
	}
	if !reflect.DeepEqual(seeds, want) {
		t.Fatalf("got %v, want %v", seeds, want)
	}

	for _, bad := range []string{"Salary", ":INCOME", "Salary:LOAN"} {
		if _, err := ParseCategorySeeds(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDefaultCategoriesAreValid(t *testing.T) {
	seen := map[CategorySeed]bool{}
	for _, c := range DefaultCategories() {
		if err := c.Validate(); err != nil {
			t.Fatalf("invalid default %v: %v", c, err)
		}
		if seen[c] {
			t.Fatalf("duplicate default %v", c)
		}
		seen[c] = true
	}
}
