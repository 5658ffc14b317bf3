package core

import "fmt"

// YearMonth is a calendar month with no day component.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// MonthlyAggregate holds the income and expense totals of one user-month.
type MonthlyAggregate struct {
	UserID  string
	Period  YearMonth
	Income  Money
	Expense Money
}

// MonthSummary is one entry of a reporting series.
type MonthSummary struct {
	Period  YearMonth
	Income  Money
	Expense Money
}

func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 {
		return fmt.Errorf("%w: month %d out of 1..12", ErrInvalidRange, ym.Month)
	}
	if ym.Year < 1 || ym.Year > 9999 {
		return fmt.Errorf("%w: year %d out of 1..9999", ErrInvalidRange, ym.Year)
	}
	return nil
}

// Index is the number of months since year 0, month 1.
func (ym YearMonth) Index() int {
	return ym.Year*12 + ym.Month - 1
}

func (ym YearMonth) Before(o YearMonth) bool {
	return ym.Index() < o.Index()
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// MonthsBetween lists every month from start to end inclusive.
//
// The walk uses integer arithmetic on 1-based months so the year rolls over
// exactly after December; there is no day component to clamp.
func MonthsBetween(start, end YearMonth) ([]YearMonth, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}
	total := (end.Year-start.Year)*12 + (end.Month - start.Month) + 1
	if total <= 0 {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	out := make([]YearMonth, total)
	for i := 0; i < total; i++ {
		out[i] = YearMonth{
			Year:  start.Year + (start.Month+i-1)/12,
			Month: (start.Month+i-1)%12 + 1,
		}
	}
	return out, nil
}

// Summary converts an aggregate to a series entry.
func (a MonthlyAggregate) Summary() MonthSummary {
	return MonthSummary{Period: a.Period, Income: a.Income, Expense: a.Expense}
}

// Net is income minus expense.
func (s MonthSummary) Net() Money {
	return s.Income.Sub(s.Expense)
}

// ConsistencyReport compares stored counters with totals recomputed from the
// transaction log.
type ConsistencyReport struct {
	UserID            string
	Transactions      int
	StoredBalance     Money
	ExpectedBalance   Money
	MismatchedPeriods []PeriodMismatch
}

// PeriodMismatch describes one aggregate that disagrees with the log.
// Stored is zero-valued when the aggregate row is missing.
type PeriodMismatch struct {
	Period   YearMonth
	Stored   MonthSummary
	Expected MonthSummary
}

// Consistent reports whether no drift was found.
func (r ConsistencyReport) Consistent() bool {
	return r.StoredBalance == r.ExpectedBalance && len(r.MismatchedPeriods) == 0
}
