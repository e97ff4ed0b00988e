// source: reports.sql

package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createConsistencyEntry = `-- name: CreateConsistencyEntry :exec
INSERT INTO tax_report_consistency (report_id, seq, severity, kind, message, operation, year, asset, discrepancy)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateConsistencyEntryParams struct {
	ReportID    string         `json:"report_id"`
	Seq         int32          `json:"seq"`
	Severity    string         `json:"severity"`
	Kind        string         `json:"kind"`
	Message     string         `json:"message"`
	Operation   string         `json:"operation"`
	Year        int32          `json:"year"`
	Asset       string         `json:"asset"`
	Discrepancy pgtype.Numeric `json:"discrepancy"`
}

func (q *Queries) CreateConsistencyEntry(ctx context.Context, arg CreateConsistencyEntryParams) error {
	_, err := q.db.Exec(ctx, createConsistencyEntry,
		arg.ReportID,
		arg.Seq,
		arg.Severity,
		arg.Kind,
		arg.Message,
		arg.Operation,
		arg.Year,
		arg.Asset,
		arg.Discrepancy,
	)
	return err
}

const createReport = `-- name: CreateReport :exec
INSERT INTO tax_reports (id, created_at, settlement, strict, operation_count)
VALUES ($1, $2, $3, $4, $5)
`

type CreateReportParams struct {
	ID             string             `json:"id"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	Settlement     string             `json:"settlement"`
	Strict         bool               `json:"strict"`
	OperationCount int32              `json:"operation_count"`
}

func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) error {
	_, err := q.db.Exec(ctx, createReport,
		arg.ID,
		arg.CreatedAt,
		arg.Settlement,
		arg.Strict,
		arg.OperationCount,
	)
	return err
}

const createReportAmount = `-- name: CreateReportAmount :exec
INSERT INTO tax_report_amounts (report_id, year, asset, kind, amount)
VALUES ($1, $2, $3, $4, $5)
`

type CreateReportAmountParams struct {
	ReportID string         `json:"report_id"`
	Year     int32          `json:"year"`
	Asset    string         `json:"asset"`
	Kind     string         `json:"kind"`
	Amount   pgtype.Numeric `json:"amount"`
}

func (q *Queries) CreateReportAmount(ctx context.Context, arg CreateReportAmountParams) error {
	_, err := q.db.Exec(ctx, createReportAmount,
		arg.ReportID,
		arg.Year,
		arg.Asset,
		arg.Kind,
		arg.Amount,
	)
	return err
}

const createReportYear = `-- name: CreateReportYear :exec
INSERT INTO tax_report_years (report_id, year, total_gain, total_gain_discounted, total_loss)
VALUES ($1, $2, $3, $4, $5)
`

type CreateReportYearParams struct {
	ReportID            string         `json:"report_id"`
	Year                int32          `json:"year"`
	TotalGain           pgtype.Numeric `json:"total_gain"`
	TotalGainDiscounted pgtype.Numeric `json:"total_gain_discounted"`
	TotalLoss           pgtype.Numeric `json:"total_loss"`
}

func (q *Queries) CreateReportYear(ctx context.Context, arg CreateReportYearParams) error {
	_, err := q.db.Exec(ctx, createReportYear,
		arg.ReportID,
		arg.Year,
		arg.TotalGain,
		arg.TotalGainDiscounted,
		arg.TotalLoss,
	)
	return err
}

const getReportByID = `-- name: GetReportByID :one
SELECT id, created_at, settlement, strict, operation_count FROM tax_reports
WHERE id = $1
`

func (q *Queries) GetReportByID(ctx context.Context, id string) (TaxReport, error) {
	row := q.db.QueryRow(ctx, getReportByID, id)
	var i TaxReport
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.Settlement,
		&i.Strict,
		&i.OperationCount,
	)
	return i, err
}

const listConsistencyEntries = `-- name: ListConsistencyEntries :many
SELECT report_id, seq, severity, kind, message, operation, year, asset, discrepancy FROM tax_report_consistency
WHERE report_id = $1
ORDER BY seq
`

func (q *Queries) ListConsistencyEntries(ctx context.Context, reportID string) ([]TaxReportConsistency, error) {
	rows, err := q.db.Query(ctx, listConsistencyEntries, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TaxReportConsistency
	for rows.Next() {
		var i TaxReportConsistency
		if err := rows.Scan(
			&i.ReportID,
			&i.Seq,
			&i.Severity,
			&i.Kind,
			&i.Message,
			&i.Operation,
			&i.Year,
			&i.Asset,
			&i.Discrepancy,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listReportAmounts = `-- name: ListReportAmounts :many
SELECT report_id, year, asset, kind, amount FROM tax_report_amounts
WHERE report_id = $1
ORDER BY year, asset, kind
`

func (q *Queries) ListReportAmounts(ctx context.Context, reportID string) ([]TaxReportAmount, error) {
	rows, err := q.db.Query(ctx, listReportAmounts, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TaxReportAmount
	for rows.Next() {
		var i TaxReportAmount
		if err := rows.Scan(
			&i.ReportID,
			&i.Year,
			&i.Asset,
			&i.Kind,
			&i.Amount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listReportYears = `-- name: ListReportYears :many
SELECT report_id, year, total_gain, total_gain_discounted, total_loss FROM tax_report_years
WHERE report_id = $1
ORDER BY year
`

func (q *Queries) ListReportYears(ctx context.Context, reportID string) ([]TaxReportYear, error) {
	rows, err := q.db.Query(ctx, listReportYears, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TaxReportYear
	for rows.Next() {
		var i TaxReportYear
		if err := rows.Scan(
			&i.ReportID,
			&i.Year,
			&i.TotalGain,
			&i.TotalGainDiscounted,
			&i.TotalLoss,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listReports = `-- name: ListReports :many
SELECT id, created_at, settlement, strict, operation_count FROM tax_reports
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

type ListReportsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListReports(ctx context.Context, arg ListReportsParams) ([]TaxReport, error) {
	rows, err := q.db.Query(ctx, listReports, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TaxReport
	for rows.Next() {
		var i TaxReport
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.Settlement,
			&i.Strict,
			&i.OperationCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
