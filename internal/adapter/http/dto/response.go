package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Report is the partial report of a run stopped by a registration error.
	Report *ReportResponse `json:"report,omitempty"`
}

// AssetYearResponse is one asset's figures within a financial year.
// Balance keeps full precision; settlement amounts are rendered to cents.
type AssetYearResponse struct {
	Asset          string          `json:"asset"`
	Balance        decimal.Decimal `json:"balance"`
	Gain           string          `json:"gain"`
	GainDiscounted string          `json:"gain_discounted"`
	Loss           string          `json:"loss"`
}

// YearResponse represents one financial year in API responses.
type YearResponse struct {
	Year                int                 `json:"year"`
	Assets              []AssetYearResponse `json:"assets"`
	TotalGain           string              `json:"total_gain"`
	TotalGainDiscounted string              `json:"total_gain_discounted"`
	TotalLoss           string              `json:"total_loss"`
	NetGain             string              `json:"net_gain"`
}

// ConsistencyEntryResponse represents a consistency log entry in API responses.
type ConsistencyEntryResponse struct {
	Seq         int             `json:"seq"`
	Severity    string          `json:"severity"`
	Kind        string          `json:"kind"`
	Message     string          `json:"message"`
	Operation   string          `json:"operation"`
	Year        int             `json:"year"`
	Asset       string          `json:"asset"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
}

// ReportResponse represents a full run report in API responses.
type ReportResponse struct {
	ID             string                     `json:"id"`
	CreatedAt      time.Time                  `json:"created_at"`
	Settlement     string                     `json:"settlement"`
	Strict         bool                       `json:"strict"`
	OperationCount int                        `json:"operation_count"`
	HasErrors      bool                       `json:"has_errors"`
	Years          []YearResponse             `json:"years"`
	Consistency    []ConsistencyEntryResponse `json:"consistency"`
}

// ReportSummaryResponse is a report header in listings.
type ReportSummaryResponse struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Settlement     string    `json:"settlement"`
	Strict         bool      `json:"strict"`
	OperationCount int       `json:"operation_count"`
}

// ReportListResponse is a page of report headers.
type ReportListResponse struct {
	Reports []ReportSummaryResponse `json:"reports"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// Currency renders d half-even to two fixed decimals.
func Currency(d decimal.Decimal) string {
	return domain.ToCurrency(d).StringFixed(domain.CurrencyScale)
}

// YearFromDomain converts a domain year report to response.
func YearFromDomain(y domain.YearReport) YearResponse {
	assets := y.Assets()
	resp := YearResponse{
		Year:                y.Year,
		Assets:              make([]AssetYearResponse, 0, len(assets)),
		TotalGain:           Currency(y.TotalGain),
		TotalGainDiscounted: Currency(y.TotalGainDiscounted),
		TotalLoss:           Currency(y.TotalLoss),
		NetGain:             Currency(y.NetGain()),
	}
	for _, code := range assets {
		resp.Assets = append(resp.Assets, AssetYearResponse{
			Asset:          code,
			Balance:        y.Balances[code],
			Gain:           Currency(y.Gain[code]),
			GainDiscounted: Currency(y.GainDiscounted[code]),
			Loss:           Currency(y.Loss[code]),
		})
	}
	return resp
}

// ReportFromDomain converts a domain report to response.
func ReportFromDomain(r *domain.Report) *ReportResponse {
	resp := &ReportResponse{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Settlement:     r.Settlement,
		Strict:         r.Strict,
		OperationCount: r.OperationCount,
		HasErrors:      r.HasErrors(),
		Years:          make([]YearResponse, 0, len(r.Years)),
		Consistency:    make([]ConsistencyEntryResponse, 0, len(r.Consistency)),
	}
	for _, y := range r.Years {
		resp.Years = append(resp.Years, YearFromDomain(y))
	}
	for _, e := range r.Consistency {
		resp.Consistency = append(resp.Consistency, ConsistencyEntryResponse{
			Seq:         e.Seq,
			Severity:    string(e.Severity),
			Kind:        string(e.Kind),
			Message:     e.Message,
			Operation:   e.OperationRef,
			Year:        e.Year,
			Asset:       e.Asset,
			Discrepancy: e.Discrepancy,
		})
	}
	return resp
}

// ReportsFromDomain converts report headers to a list response.
func ReportsFromDomain(reports []*domain.Report, limit, offset int) *ReportListResponse {
	resp := &ReportListResponse{
		Reports: make([]ReportSummaryResponse, len(reports)),
		Limit:   limit,
		Offset:  offset,
	}
	for i, r := range reports {
		resp.Reports[i] = ReportSummaryResponse{
			ID:             r.ID,
			CreatedAt:      r.CreatedAt,
			Settlement:     r.Settlement,
			Strict:         r.Strict,
			OperationCount: r.OperationCount,
		}
	}
	return resp
}
