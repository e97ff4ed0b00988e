package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// Lot is a quantity of an asset acquired on one date for a known capital.
// A partially consumed lot keeps its date and shrinks in place.
type Lot struct {
	Capital    decimal.Decimal
	Amount     decimal.Decimal
	AcquiredOn domain.CivilDate
}

// Rate is the capital per unit of the lot.
func (l Lot) Rate(scale int32) decimal.Decimal {
	return domain.Quo(l.Capital, l.Amount, scale)
}

// Slice is the part of a lot consumed by one disposal.
type Slice struct {
	Quantity decimal.Decimal
	// Proceeds is the share of the disposal capital attributed to this slice.
	Proceeds decimal.Decimal
	// CostBasis is the share of the lot capital consumed.
	CostBasis  decimal.Decimal
	AcquiredOn domain.CivilDate
}

// Result is the realised gain (positive) or loss (negative) of the slice.
func (s Slice) Result() decimal.Decimal {
	return s.Proceeds.Sub(s.CostBasis)
}

// lotArena stores lots of every asset in one slice; queues refer to lots by index.
type lotArena struct {
	lots []Lot
	free []int
}

func (a *lotArena) alloc(l Lot) int {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.lots[idx] = l
		return idx
	}
	a.lots = append(a.lots, l)
	return len(a.lots) - 1
}

func (a *lotArena) release(idx int) {
	a.lots[idx] = Lot{}
	a.free = append(a.free, idx)
}

// Inventory keeps acquisition lots per asset in FIFO order.
type Inventory struct {
	arena  lotArena
	queues map[*domain.AssetType][]int
	scale  int32
}

// NewInventory creates an empty inventory rounding at scale.
func NewInventory(scale int32) *Inventory {
	return &Inventory{
		queues: make(map[*domain.AssetType][]int),
		scale:  scale,
	}
}

// Known reports whether the asset was ever acquired, even if all its lots are spent.
func (inv *Inventory) Known(asset *domain.AssetType) bool {
	_, ok := inv.queues[asset]
	return ok
}

// Append adds a lot. Lots stay ordered by acquisition date and lots with the
// same date keep their insertion order.
func (inv *Inventory) Append(asset *domain.AssetType, date domain.CivilDate, amount, capital decimal.Decimal) {
	idx := inv.arena.alloc(Lot{Capital: capital, Amount: amount, AcquiredOn: date})
	queue := inv.queues[asset]

	pos := sort.Search(len(queue), func(i int) bool {
		return date.Before(inv.arena.lots[queue[i]].AcquiredOn)
	})

	queue = append(queue, 0)
	copy(queue[pos+1:], queue[pos:])
	queue[pos] = idx
	inv.queues[asset] = queue
}

// Consume takes quantity of asset from the oldest lots first and attributes
// capital to them proportionally. It returns the consumed slices and the
// quantity the inventory could not cover.
func (inv *Inventory) Consume(asset *domain.AssetType, quantity, capital decimal.Decimal) ([]Slice, decimal.Decimal) {
	queue, ok := inv.queues[asset]
	if !ok {
		return nil, quantity
	}
	remainingAmount := quantity
	remainingCapital := capital

	var slices []Slice
	for remainingAmount.IsPositive() && len(queue) > 0 {
		idx := queue[0]
		lot := &inv.arena.lots[idx]
		leftover := lot.Amount.Sub(remainingAmount)

		if leftover.Sign() <= 0 {
			attributed := remainingCapital
			if !leftover.IsZero() {
				attributed = domain.Quo(lot.Amount.Mul(remainingCapital), remainingAmount, inv.scale)
			}

			remainingCapital = remainingCapital.Sub(attributed)
			if remainingCapital.IsNegative() {
				panic(fmt.Sprintf("ledger: attributed capital %s exceeds remaining capital for %s", attributed, asset))
			}

			slices = append(slices, Slice{
				Quantity:   lot.Amount,
				Proceeds:   attributed,
				CostBasis:  lot.Capital,
				AcquiredOn: lot.AcquiredOn,
			})

			inv.arena.release(idx)
			queue = queue[1:]
			remainingAmount = leftover.Neg()
			continue
		}

		used := domain.Quo(remainingAmount.Mul(lot.Capital), lot.Amount, inv.scale)
		lot.Capital = lot.Capital.Sub(used)
		lot.Amount = leftover

		slices = append(slices, Slice{
			Quantity:   remainingAmount,
			Proceeds:   remainingCapital,
			CostBasis:  used,
			AcquiredOn: lot.AcquiredOn,
		})

		remainingCapital = decimal.Zero
		remainingAmount = decimal.Zero
	}

	inv.queues[asset] = queue

	return slices, remainingAmount
}

// Lots returns a copy of the asset's remaining lots, oldest first.
func (inv *Inventory) Lots(asset *domain.AssetType) []Lot {
	queue := inv.queues[asset]
	lots := make([]Lot, len(queue))
	for i, idx := range queue {
		lots[i] = inv.arena.lots[idx]
	}
	return lots
}

// Total returns the sum of remaining lot amounts for the asset.
func (inv *Inventory) Total(asset *domain.AssetType) decimal.Decimal {
	total := decimal.Zero
	for _, idx := range inv.queues[asset] {
		total = total.Add(inv.arena.lots[idx].Amount)
	}
	return total
}
