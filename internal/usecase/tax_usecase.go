package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/ledger"
)

// TaxUseCase runs operation streams through a fresh ledger and publishes the report.
type TaxUseCase struct {
	txManager  TransactionManager
	reportRepo ReportRepository
	cache      Cache
	retrier    Retrier
	idGen      IDGenerator
	metrics    MetricsRecorder
	logger     zerolog.Logger
	defaults   ledger.Config
}

// NewTaxUseCase creates a new TaxUseCase.
// txManager, reportRepo, cache, retrier and metrics may be nil; runs then
// cannot be persisted, cached or measured.
func NewTaxUseCase(
	txManager TransactionManager,
	reportRepo ReportRepository,
	cache Cache,
	retrier Retrier,
	idGen IDGenerator,
	metrics MetricsRecorder,
	logger zerolog.Logger,
	defaults ledger.Config,
) *TaxUseCase {
	return &TaxUseCase{
		txManager:  txManager,
		reportRepo: reportRepo,
		cache:      cache,
		retrier:    retrier,
		idGen:      idGen,
		metrics:    metrics,
		logger:     logger,
		defaults:   defaults,
	}
}

// CalculateInput represents input for a ledger run.
type CalculateInput struct {
	Operations []domain.Operation
	// Config overrides the default ledger configuration when set.
	Config *ledger.Config
	// Persist saves the report and fills the cache.
	Persist bool
}

// Calculate registers every operation in order and returns the resulting report.
//
// A registration failure stops the run. The report of what was registered up
// to that point is returned together with the error so the consistency log
// can still be shown; it is never persisted.
func (uc *TaxUseCase) Calculate(ctx context.Context, input CalculateInput) (*domain.Report, error) {
	start := time.Now()

	if input.Persist && (uc.reportRepo == nil || uc.txManager == nil) {
		return nil, ErrPersistenceUnavailable
	}

	cfg := uc.defaults
	if input.Config != nil {
		cfg = *input.Config
	}

	account := ledger.NewAccount(cfg, uc.logger)
	registered, regErr := account.RegisterAll(input.Operations)

	report := account.Report(uc.idGen.Generate(), time.Now().UTC())
	uc.recordOperations(input.Operations[:registered], report)

	if regErr != nil {
		uc.recordRun(runStatusFailed, start)
		uc.logger.Error().
			Err(regErr).
			Int("registered", registered).
			Int("operations", len(input.Operations)).
			Msg("ledger run stopped")
		return report, regErr
	}

	if input.Persist {
		if err := uc.save(ctx, report); err != nil {
			uc.recordRun(runStatusFailed, start)
			return nil, fmt.Errorf("save report %s: %w", report.ID, err)
		}
		if uc.metrics != nil {
			uc.metrics.RecordReportPersisted()
		}
		uc.fillCache(ctx, report)
	}

	uc.recordRun(runStatusOK, start)
	uc.logger.Info().
		Str("report_id", report.ID).
		Int("operations", report.OperationCount).
		Int("years", len(report.Years)).
		Int("consistency_entries", len(report.Consistency)).
		Msg("ledger run completed")

	return report, nil
}

func (uc *TaxUseCase) save(ctx context.Context, report *domain.Report) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.reportRepo.Save(ctx, tx, report); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

func (uc *TaxUseCase) fillCache(ctx context.Context, report *domain.Report) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		uc.logger.Warn().Err(err).Str("report_id", report.ID).Msg("failed to encode report for cache")
		return
	}

	if err := uc.cache.Set(ctx, reportCacheKey(report.ID), data, ReportCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("report_id", report.ID).Msg("failed to cache report")
	}
}

func (uc *TaxUseCase) recordOperations(ops []domain.Operation, report *domain.Report) {
	if uc.metrics == nil {
		return
	}
	for _, op := range ops {
		uc.metrics.RecordOperation(string(op.Kind()))
	}
	for _, e := range report.Consistency {
		uc.metrics.RecordConsistencyEntry(string(e.Severity), string(e.Kind))
	}
}

func (uc *TaxUseCase) recordRun(status string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordRun(status, time.Since(start))
	}
}
