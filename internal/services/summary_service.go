package services

import (
	"context"
	"fmt"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/ports"
)

// SummaryService builds monthly income/expense series from stored aggregates.
type SummaryService struct {
	reader ports.AggregateReader
	logger *log.Logger
}

func NewSummaryService(reader ports.AggregateReader) *SummaryService {
	return &SummaryService{
		reader: reader,
		logger: log.Default(log.ComponentSummary),
	}
}

// GetSummaryRange returns one entry per month from start to end inclusive,
// oldest first. Months without an aggregate are reported as zero.
func (s *SummaryService) GetSummaryRange(ctx context.Context, userID string, startYear, startMonth, endYear, endMonth int) ([]core.MonthSummary, error) {
	if userID == "" {
		return nil, core.ErrEmptyUser
	}
	start := core.YearMonth{Year: startYear, Month: startMonth}
	end := core.YearMonth{Year: endYear, Month: endMonth}

	months, err := core.MonthsBetween(start, end)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.reader.ListAggregatesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list aggregates %s..%s: %w", start, end, err)
	}
	byPeriod := make(map[core.YearMonth]core.MonthlyAggregate, len(aggregates))
	for _, agg := range aggregates {
		byPeriod[agg.Period] = agg
	}

	series := make([]core.MonthSummary, len(months))
	for i, ym := range months {
		if agg, ok := byPeriod[ym]; ok {
			series[i] = agg.Summary()
			continue
		}
		series[i] = core.MonthSummary{Period: ym}
	}

	s.logger.DebugContext(ctx, "Summary range materialized",
		log.FieldUserID, userID,
		"from", start.String(),
		"to", end.String(),
		"months", len(series),
		"stored", len(aggregates))

	return series, nil
}

// GetAllSummaries returns every stored aggregate for the user ordered by
// period. Gaps are not filled; use GetSummaryRange for a continuous series.
func (s *SummaryService) GetAllSummaries(ctx context.Context, userID string) ([]core.MonthSummary, error) {
	if userID == "" {
		return nil, core.ErrEmptyUser
	}
	aggregates, err := s.reader.ListAggregates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	series := make([]core.MonthSummary, len(aggregates))
	for i, agg := range aggregates {
		series[i] = agg.Summary()
	}
	return series, nil
}
