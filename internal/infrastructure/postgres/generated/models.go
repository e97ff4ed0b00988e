package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type TaxReport struct {
	ID             string             `json:"id"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	Settlement     string             `json:"settlement"`
	Strict         bool               `json:"strict"`
	OperationCount int32              `json:"operation_count"`
}

type TaxReportAmount struct {
	ReportID string         `json:"report_id"`
	Year     int32          `json:"year"`
	Asset    string         `json:"asset"`
	Kind     string         `json:"kind"`
	Amount   pgtype.Numeric `json:"amount"`
}

type TaxReportConsistency struct {
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

type TaxReportYear struct {
	ReportID            string         `json:"report_id"`
	Year                int32          `json:"year"`
	TotalGain           pgtype.Numeric `json:"total_gain"`
	TotalGainDiscounted pgtype.Numeric `json:"total_gain_discounted"`
	TotalLoss           pgtype.Numeric `json:"total_loss"`
}
