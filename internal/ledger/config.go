package ledger

import (
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// DefaultTimezone is the zone operation dates are taken in unless configured.
const DefaultTimezone = "Australia/Sydney"

// DefaultEpsilon is the tolerance for negative balances and capital mismatches.
var DefaultEpsilon = decimal.New(1, -8)

var defaultLocation = loadDefaultLocation()

func loadDefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Config holds the numeric and policy settings of an Account.
type Config struct {
	// Scale is the number of fractional digits quantities, rates, fees and
	// capital are rounded to on registration and after every division.
	Scale int32
	// Epsilon is the tolerance for negative balances and zero-sum checks.
	Epsilon decimal.Decimal
	// FinancialYearStart is the first month of a financial year.
	FinancialYearStart time.Month
	// Strict turns a negative balance beyond Epsilon into a registration error.
	Strict bool
	// Settlement is the currency capital is expressed in. Trades into it are disposals.
	Settlement *domain.AssetType
	// Location is the zone acquisition and disposal dates are taken in. Every
	// timestamp is converted to it, so ordered input never moves back a year.
	Location *time.Location
}

// DefaultConfig returns the Australian defaults: scale 16, epsilon 1e-8,
// July start, lenient mode, AUD settlement, Sydney dates.
func DefaultConfig() Config {
	return Config{
		Scale:              domain.DefaultScale,
		Epsilon:            DefaultEpsilon,
		FinancialYearStart: time.July,
		Strict:             false,
		Settlement:         domain.AUD,
		Location:           defaultLocation,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Scale <= 0 {
		c.Scale = def.Scale
	}
	if !c.Epsilon.IsPositive() {
		c.Epsilon = def.Epsilon
	}
	if c.FinancialYearStart < time.January || c.FinancialYearStart > time.December {
		c.FinancialYearStart = def.FinancialYearStart
	}
	if c.Settlement == nil {
		c.Settlement = def.Settlement
	}
	if c.Location == nil {
		c.Location = def.Location
	}
	return c
}
