package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/cryptotax/internal/domain"
)

// ReportUseCase reads stored run reports.
type ReportUseCase struct {
	reportRepo ReportRepository
	cache      Cache
	logger     zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. cache may be nil.
func NewReportUseCase(reportRepo ReportRepository, cache Cache, logger zerolog.Logger) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		cache:      cache,
		logger:     logger,
	}
}

// GetReport returns a report, from the cache when possible.
func (uc *ReportUseCase) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	if report, ok := uc.fromCache(ctx, id); ok {
		return report, nil
	}

	report, err := uc.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := uc.cache.Set(ctx, reportCacheKey(id), data, ReportCacheTTL); err != nil {
				uc.logger.Warn().Err(err).Str("report_id", id).Msg("failed to cache report")
			}
		}
	}

	return report, nil
}

// GetYear returns one financial year of a report.
func (uc *ReportUseCase) GetYear(ctx context.Context, id string, year int) (*domain.YearReport, error) {
	report, err := uc.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	yr, err := report.Year(year)
	if err != nil {
		return nil, err
	}
	return &yr, nil
}

// ListReports returns report headers, newest first.
func (uc *ReportUseCase) ListReports(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > MaxListOffset {
		offset = MaxListOffset
	}
	return uc.reportRepo.List(ctx, limit, offset)
}

func (uc *ReportUseCase) fromCache(ctx context.Context, id string) (*domain.Report, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, reportCacheKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("report_id", id).Msg("cache read failed")
		}
		return nil, false
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		uc.logger.Warn().Err(err).Str("report_id", id).Msg("dropping undecodable cached report")
		if err := uc.cache.Delete(ctx, reportCacheKey(id)); err != nil {
			uc.logger.Warn().Err(err).Str("report_id", id).Msg("failed to delete cached report")
		}
		return nil, false
	}

	return &report, true
}
