package core

import (
	"errors"
	"testing"
)

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end YearMonth
		want       []YearMonth
	}{
		{
			name:  "single month",
			start: YearMonth{2024, 5},
			end:   YearMonth{2024, 5},
			want:  []YearMonth{{2024, 5}},
		},
		{
			name:  "year rollover",
			start: YearMonth{2023, 11},
			end:   YearMonth{2024, 2},
			want:  []YearMonth{{2023, 11}, {2023, 12}, {2024, 1}, {2024, 2}},
		},
		{
			name:  "december to january",
			start: YearMonth{2023, 12},
			end:   YearMonth{2024, 1},
			want:  []YearMonth{{2023, 12}, {2024, 1}},
		},
		{
			name:  "two year boundaries",
			start: YearMonth{2022, 12},
			end:   YearMonth{2024, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthsBetween(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("entry %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
			for i, ym := range got {
				if ym.Month < 1 || ym.Month > 12 {
					t.Fatalf("entry %d has month %d", i, ym.Month)
				}
				if i > 0 && ym.Index() != got[i-1].Index()+1 {
					t.Fatalf("entry %d not consecutive: %v after %v", i, ym, got[i-1])
				}
			}
			if got[0] != tt.start || got[len(got)-1] != tt.end {
				t.Fatalf("endpoints not inclusive: %v", got)
			}
		})
	}
}

func TestMonthsBetweenInvalid(t *testing.T) {
	cases := []struct{ start, end YearMonth }{
		{YearMonth{2024, 3}, YearMonth{2024, 2}},
		{YearMonth{2025, 1}, YearMonth{2024, 12}},
		{YearMonth{2024, 0}, YearMonth{2024, 2}},
		{YearMonth{2024, 1}, YearMonth{2024, 13}},
	}
	for _, tc := range cases {
		if _, err := MonthsBetween(tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("%v..%v expected ErrInvalidRange, got %v", tc.start, tc.end, err)
		}
	}
}

func TestConsistencyReport(t *testing.T) {
	r := ConsistencyReport{StoredBalance: Money{Cents: 5}, ExpectedBalance: Money{Cents: 5}}
	if !r.Consistent() {
		t.Fatal("expected consistent report")
	}
	r.MismatchedPeriods = append(r.MismatchedPeriods, PeriodMismatch{Period: YearMonth{2024, 1}})
	if r.Consistent() {
		t.Fatal("expected drift to be reported")
	}
}
