package ledger

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// yearlyAmounts accumulates realised amounts per financial year and asset.
type yearlyAmounts struct {
	byYear map[int]map[*domain.AssetType]decimal.Decimal
	totals map[int]decimal.Decimal
}

func newYearlyAmounts() *yearlyAmounts {
	return &yearlyAmounts{
		byYear: make(map[int]map[*domain.AssetType]decimal.Decimal),
		totals: make(map[int]decimal.Decimal),
	}
}

func (y *yearlyAmounts) add(year int, asset *domain.AssetType, amount decimal.Decimal) {
	perAsset, ok := y.byYear[year]
	if !ok {
		perAsset = make(map[*domain.AssetType]decimal.Decimal)
		y.byYear[year] = perAsset
	}
	perAsset[asset] = perAsset[asset].Add(amount)
	y.totals[year] = y.totals[year].Add(amount)
}

func (y *yearlyAmounts) perAsset(year int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(y.byYear[year]))
	for asset, amount := range y.byYear[year] {
		out[asset.Code] = amount
	}
	return out
}

func (y *yearlyAmounts) total(year int) decimal.Decimal {
	return y.totals[year]
}

func (y *yearlyAmounts) years() []int {
	return slices.Sorted(maps.Keys(y.totals))
}
