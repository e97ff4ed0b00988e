package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/infrastructure/postgres/generated"
	"github.com/iho/cryptotax/internal/usecase"
)

// Amount kinds stored in tax_report_amounts.
const (
	amountBalance        = "balance"
	amountGain           = "gain"
	amountGainDiscounted = "gain_discounted"
	amountLoss           = "loss"
)

// ReportRepository implements usecase.ReportRepository.
type ReportRepository struct {
	queries *generated.Queries
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return newReportRepositoryWithDB(pool)
}

func newReportRepositoryWithDB(db generated.DBTX) *ReportRepository {
	return &ReportRepository{queries: generated.New(db)}
}

// Save writes a report with its years, amounts and consistency entries.
func (r *ReportRepository) Save(ctx context.Context, tx usecase.Transaction, report *domain.Report) error {
	pgTx, ok := tx.(*Tx)
	if !ok {
		return fmt.Errorf("unsupported transaction type %T", tx)
	}
	queries := r.queries.WithTx(pgTx.PgxTx())

	if err := queries.CreateReport(ctx, generated.CreateReportParams{
		ID:             report.ID,
		CreatedAt:      timeToPgTimestamptz(report.CreatedAt),
		Settlement:     report.Settlement,
		Strict:         report.Strict,
		OperationCount: int32(report.OperationCount),
	}); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for _, yr := range report.Years {
		if err := queries.CreateReportYear(ctx, generated.CreateReportYearParams{
			ReportID:            report.ID,
			Year:                int32(yr.Year),
			TotalGain:           decimalToNumeric(yr.TotalGain),
			TotalGainDiscounted: decimalToNumeric(yr.TotalGainDiscounted),
			TotalLoss:           decimalToNumeric(yr.TotalLoss),
		}); err != nil {
			return fmt.Errorf("insert year %d: %w", yr.Year, err)
		}

		for _, asset := range yr.Assets() {
			for _, a := range []struct {
				kind   string
				values map[string]decimal.Decimal
			}{
				{amountBalance, yr.Balances},
				{amountGain, yr.Gain},
				{amountGainDiscounted, yr.GainDiscounted},
				{amountLoss, yr.Loss},
			} {
				v, ok := a.values[asset]
				if !ok {
					continue
				}
				if err := queries.CreateReportAmount(ctx, generated.CreateReportAmountParams{
					ReportID: report.ID,
					Year:     int32(yr.Year),
					Asset:    asset,
					Kind:     a.kind,
					Amount:   decimalToNumeric(v),
				}); err != nil {
					return fmt.Errorf("insert %s %s/%d: %w", a.kind, asset, yr.Year, err)
				}
			}
		}
	}

	for _, e := range report.Consistency {
		if err := queries.CreateConsistencyEntry(ctx, generated.CreateConsistencyEntryParams{
			ReportID:    report.ID,
			Seq:         int32(e.Seq),
			Severity:    string(e.Severity),
			Kind:        string(e.Kind),
			Message:     e.Message,
			Operation:   e.OperationRef,
			Year:        int32(e.Year),
			Asset:       e.Asset,
			Discrepancy: decimalToNumeric(e.Discrepancy),
		}); err != nil {
			return fmt.Errorf("insert consistency entry %d: %w", e.Seq, err)
		}
	}

	return nil
}

// GetByID loads a full report.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row, err := r.queries.GetReportByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	report := rowToReport(row)

	years, err := r.queries.ListReportYears(ctx, id)
	if err != nil {
		return nil, err
	}
	index := make(map[int32]int, len(years))
	for _, y := range years {
		index[y.Year] = len(report.Years)
		report.Years = append(report.Years, domain.YearReport{
			Year:                int(y.Year),
			Balances:            make(map[string]decimal.Decimal),
			Gain:                make(map[string]decimal.Decimal),
			GainDiscounted:      make(map[string]decimal.Decimal),
			Loss:                make(map[string]decimal.Decimal),
			TotalGain:           numericToDecimal(y.TotalGain),
			TotalGainDiscounted: numericToDecimal(y.TotalGainDiscounted),
			TotalLoss:           numericToDecimal(y.TotalLoss),
		})
	}

	amounts, err := r.queries.ListReportAmounts(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range amounts {
		i, ok := index[a.Year]
		if !ok {
			continue
		}
		yr := &report.Years[i]
		v := numericToDecimal(a.Amount)
		switch a.Kind {
		case amountBalance:
			yr.Balances[a.Asset] = v
		case amountGain:
			yr.Gain[a.Asset] = v
		case amountGainDiscounted:
			yr.GainDiscounted[a.Asset] = v
		case amountLoss:
			yr.Loss[a.Asset] = v
		}
	}

	entries, err := r.queries.ListConsistencyEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		report.Consistency = append(report.Consistency, domain.ConsistencyEntry{
			Seq:          int(e.Seq),
			Severity:     domain.Severity(e.Severity),
			Kind:         domain.ConsistencyKind(e.Kind),
			Message:      e.Message,
			OperationRef: e.Operation,
			Year:         int(e.Year),
			Asset:        e.Asset,
			Discrepancy:  numericToDecimal(e.Discrepancy),
		})
	}

	return report, nil
}

// List returns report headers, newest first.
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	rows, err := r.queries.ListReports(ctx, generated.ListReportsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	reports := make([]*domain.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, rowToReport(row))
	}

	return reports, nil
}

func rowToReport(row generated.TaxReport) *domain.Report {
	return &domain.Report{
		ID:             row.ID,
		CreatedAt:      row.CreatedAt.Time.UTC(),
		Settlement:     row.Settlement,
		Strict:         row.Strict,
		OperationCount: int(row.OperationCount),
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
