package ledger

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// YearlyBalances holds per-asset quantities for each financial year.
// A year is created on first access as a copy of the closest earlier year
// and evolves independently afterwards.
type YearlyBalances struct {
	years map[int]map[*domain.AssetType]decimal.Decimal
	order []int
}

// NewYearlyBalances creates an empty ledger.
func NewYearlyBalances() *YearlyBalances {
	return &YearlyBalances{years: make(map[int]map[*domain.AssetType]decimal.Decimal)}
}

// For returns the live balances of year, creating it and any missing years
// between it and the closest earlier year.
func (b *YearlyBalances) For(year int) map[*domain.AssetType]decimal.Decimal {
	if m, ok := b.years[year]; ok {
		return m
	}

	pos := sort.SearchInts(b.order, year)
	if pos == 0 {
		m := make(map[*domain.AssetType]decimal.Decimal)
		b.insert(year, m)
		return m
	}

	from := b.order[pos-1]
	prev := b.years[from]
	for y := from + 1; y <= year; y++ {
		next := make(map[*domain.AssetType]decimal.Decimal, len(prev))
		for asset, qty := range prev {
			next[asset] = qty
		}
		b.insert(y, next)
		prev = next
	}
	return prev
}

// Adjust adds delta to the asset's balance in year and returns the new balance.
func (b *YearlyBalances) Adjust(year int, asset *domain.AssetType, delta decimal.Decimal) decimal.Decimal {
	m := b.For(year)
	m[asset] = m[asset].Add(delta)
	return m[asset]
}

// Snapshot returns a copy of the balances year would have, keyed by asset code,
// without creating the year.
func (b *YearlyBalances) Snapshot(year int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)

	src, ok := b.years[year]
	if !ok {
		pos := sort.SearchInts(b.order, year)
		if pos == 0 {
			return out
		}
		src = b.years[b.order[pos-1]]
	}

	for asset, qty := range src {
		out[asset.Code] = qty
	}
	return out
}

// Years returns the created years in ascending order.
func (b *YearlyBalances) Years() []int {
	return slices.Clone(b.order)
}

func (b *YearlyBalances) insert(year int, m map[*domain.AssetType]decimal.Decimal) {
	b.years[year] = m
	pos := sort.SearchInts(b.order, year)
	b.order = slices.Insert(b.order, pos, year)
}
