package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Report is the outcome of one ledger run.
type Report struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	Settlement     string             `json:"settlement"`
	Strict         bool               `json:"strict"`
	OperationCount int                `json:"operation_count"`
	Years          []YearReport       `json:"years"`
	Consistency    []ConsistencyEntry `json:"consistency"`
}

// YearReport holds one financial year of a Report.
// Amount maps are keyed by asset code.
type YearReport struct {
	Year                int                        `json:"year"`
	Balances            map[string]decimal.Decimal `json:"balances"`
	Gain                map[string]decimal.Decimal `json:"gain"`
	GainDiscounted      map[string]decimal.Decimal `json:"gain_discounted"`
	Loss                map[string]decimal.Decimal `json:"loss"`
	TotalGain           decimal.Decimal            `json:"total_gain"`
	TotalGainDiscounted decimal.Decimal            `json:"total_gain_discounted"`
	TotalLoss           decimal.Decimal            `json:"total_loss"`
}

// Year returns the report for financial year y.
func (r *Report) Year(y int) (YearReport, error) {
	for _, yr := range r.Years {
		if yr.Year == y {
			return yr, nil
		}
	}
	return YearReport{}, ErrYearNotFound
}

// HasErrors reports whether any consistency entry has error severity.
func (r *Report) HasErrors() bool {
	for _, e := range r.Consistency {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// NetGain is gains plus discounted gains plus losses. Losses are negative.
func (y YearReport) NetGain() decimal.Decimal {
	return y.TotalGain.Add(y.TotalGainDiscounted).Add(y.TotalLoss)
}

// Assets returns every asset code mentioned in the year, sorted.
func (y YearReport) Assets() []string {
	seen := make(map[string]struct{})
	for _, m := range []map[string]decimal.Decimal{y.Balances, y.Gain, y.GainDiscounted, y.Loss} {
		for code := range m {
			seen[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
