package ledger

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
)

// Account registers operations in chronological order and keeps lots,
// yearly balances, realised gains and losses, and the consistency log.
//
// An Account is not safe for concurrent use. Registrations are never rolled
// back: when Register fails after dispatch began, the effects applied so far stay.
type Account struct {
	cfg    Config
	logger zerolog.Logger

	inventory      *Inventory
	balances       *YearlyBalances
	gain           *yearlyAmounts
	gainDiscounted *yearlyAmounts
	loss           *yearlyAmounts

	consistency []domain.ConsistencyEntry
	last        time.Time
	registered  int
}

// NewAccount creates an empty Account. Zero config fields take their defaults.
func NewAccount(cfg Config, logger zerolog.Logger) *Account {
	cfg = cfg.withDefaults()
	return &Account{
		cfg:            cfg,
		logger:         logger.With().Str("component", "ledger").Logger(),
		inventory:      NewInventory(cfg.Scale),
		balances:       NewYearlyBalances(),
		gain:           newYearlyAmounts(),
		gainDiscounted: newYearlyAmounts(),
		loss:           newYearlyAmounts(),
		last:           time.Unix(0, 0).UTC(),
	}
}

// Config returns the effective configuration.
func (a *Account) Config() Config {
	return a.cfg
}

// Register applies one operation.
//
// Operations must arrive in non-decreasing timestamp order; an earlier
// timestamp fails with domain.ErrOutOfOrder and changes nothing.
func (a *Account) Register(op domain.Operation) error {
	op, err := concrete(op)
	if err != nil {
		return err
	}
	op = a.prepare(op)
	if err := op.Validate(); err != nil {
		return domain.NewOperationError(op, err, "")
	}

	ts := op.Timestamp()
	if ts.Before(a.last) {
		return domain.NewOperationError(op, domain.ErrOutOfOrder,
			fmt.Sprintf("last registered operation at %s", a.last.Format(time.RFC3339)))
	}
	a.last = ts

	year := domain.FinancialYear(op.Date(), a.cfg.FinancialYearStart)

	switch o := op.(type) {
	case domain.TradeLog:
		err = a.registerTrade(o, year)
	case domain.ReceiveLog:
		a.acquire(o.Asset, o.Date(), o.Amount, o.Capital, year)
	case domain.SendLog:
		err = a.dispose(o, o.Asset, o.Amount, decimal.Zero, year, false)
	}
	if err != nil {
		return err
	}

	a.registered++
	a.logger.Debug().
		Str("kind", string(op.Kind())).
		Time("timestamp", ts).
		Int("year", year).
		Msg("operation registered")

	return nil
}

// RegisterAll registers ops in order and stops at the first error.
// It returns how many operations were registered.
func (a *Account) RegisterAll(ops []domain.Operation) (int, error) {
	for i, op := range ops {
		if err := a.Register(op); err != nil {
			return i, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return len(ops), nil
}

func (a *Account) registerTrade(t domain.TradeLog, year int) error {
	if a.isSettlement(t.Incoming) {
		return a.dispose(t, t.Outgoing, t.OutgoingAmount, t.Capital, year, true)
	}

	a.acquire(t.Incoming, t.Date(), t.IncomingAmount, t.Capital, year)

	if a.isSettlement(t.Outgoing) {
		return nil
	}
	return a.dispose(t, t.Outgoing, t.OutgoingAmount, t.Capital, year, true)
}

func (a *Account) acquire(asset *domain.AssetType, date domain.CivilDate, amount, capital decimal.Decimal, year int) {
	a.inventory.Append(asset, date, amount, capital)
	a.balances.Adjust(year, asset, amount)
}

// dispose removes amount of asset from the yearly balance and the lots.
// With classify set the realised results are accumulated and the attributed
// capital is checked against capital.
func (a *Account) dispose(op domain.Operation, asset *domain.AssetType, amount, capital decimal.Decimal, year int, classify bool) error {
	if !a.inventory.Known(asset) {
		return domain.NewOperationError(op, domain.ErrInsufficientBalance,
			fmt.Sprintf("no %s was ever acquired", asset))
	}

	balance := a.balances.Adjust(year, asset, amount.Neg())
	if err := a.checkBalance(op, year, asset, balance); err != nil {
		return err
	}

	consumed, remaining := a.inventory.Consume(asset, amount, capital)

	if classify {
		attributed := decimal.Zero
		disposedOn := op.Date()
		for _, s := range consumed {
			attributed = attributed.Add(s.Proceeds)
			a.classify(year, asset, disposedOn, s)
		}

		if diff := attributed.Sub(capital); diff.Abs().GreaterThan(a.cfg.Epsilon) {
			a.record(domain.ConsistencyEntry{
				Severity:    domain.SeverityError,
				Kind:        domain.ConsistencyCapitalMismatch,
				Message:     fmt.Sprintf("capital error %s disposing %s", diff, asset),
				Operation:   op,
				Year:        year,
				Asset:       asset.Code,
				Discrepancy: diff,
			})
		}
	}

	if remaining.GreaterThan(a.cfg.Epsilon) {
		return domain.NewOperationError(op, domain.ErrInsufficientBalance,
			fmt.Sprintf("%s %s not covered by lots", remaining, asset))
	}
	return nil
}

func (a *Account) classify(year int, asset *domain.AssetType, disposedOn domain.CivilDate, s Slice) {
	result := s.Result()
	switch {
	case result.IsNegative():
		a.loss.add(year, asset, result)
	case s.AcquiredOn.Before(domain.OneYearBefore(disposedOn)):
		a.gainDiscounted.add(year, asset, result)
	default:
		a.gain.add(year, asset, result)
	}
}

func (a *Account) checkBalance(op domain.Operation, year int, asset *domain.AssetType, balance decimal.Decimal) error {
	if !balance.IsNegative() {
		return nil
	}

	entry := domain.ConsistencyEntry{
		Kind:        domain.ConsistencyNegativeBalance,
		Message:     fmt.Sprintf("negative balance %s %s", balance, asset),
		Operation:   op,
		Year:        year,
		Asset:       asset.Code,
		Discrepancy: balance,
	}

	if balance.Abs().LessThanOrEqual(a.cfg.Epsilon) {
		entry.Severity = domain.SeverityWarning
		a.record(entry)
		return nil
	}

	entry.Severity = domain.SeverityError
	a.record(entry)

	if a.cfg.Strict {
		return domain.NewOperationError(op, domain.ErrNegativeBalance, entry.Message)
	}
	return nil
}

func (a *Account) record(entry domain.ConsistencyEntry) {
	entry.Seq = len(a.consistency) + 1
	entry.OperationRef = entry.Operation.String()
	a.consistency = append(a.consistency, entry)

	ev := a.logger.Warn()
	if entry.Severity == domain.SeverityError {
		ev = a.logger.Error()
	}
	ev.Str("kind", string(entry.Kind)).
		Str("asset", entry.Asset).
		Int("year", entry.Year).
		Str("discrepancy", entry.Discrepancy.String()).
		Str("operation", entry.OperationRef).
		Msg(entry.Message)
}

func (a *Account) isSettlement(asset *domain.AssetType) bool {
	return asset == a.cfg.Settlement || asset.Code == a.cfg.Settlement.Code
}

// prepare moves the timestamp into the configured zone and rounds every
// decimal to the working scale. Dates, financial years and holding periods
// are all derived from the prepared operation.
func (a *Account) prepare(op domain.Operation) domain.Operation {
	loc, scale := a.cfg.Location, a.cfg.Scale
	switch o := op.(type) {
	case domain.TradeLog:
		o.OccurredAt = o.OccurredAt.In(loc)
		o.IncomingAmount = domain.Normalize(o.IncomingAmount, scale)
		o.OutgoingAmount = domain.Normalize(o.OutgoingAmount, scale)
		o.Rate = domain.Normalize(o.Rate, scale)
		o.Fee = domain.Normalize(o.Fee, scale)
		o.Capital = domain.Normalize(o.Capital, scale)
		return o
	case domain.ReceiveLog:
		o.OccurredAt = o.OccurredAt.In(loc)
		o.Amount = domain.Normalize(o.Amount, scale)
		o.Capital = domain.Normalize(o.Capital, scale)
		return o
	case domain.SendLog:
		o.OccurredAt = o.OccurredAt.In(loc)
		o.Amount = domain.Normalize(o.Amount, scale)
		o.Capital = domain.Normalize(o.Capital, scale)
		return o
	}
	return op
}

// concrete dereferences pointer variants so the dispatch switch sees values.
func concrete(op domain.Operation) (domain.Operation, error) {
	switch o := op.(type) {
	case domain.TradeLog, domain.ReceiveLog, domain.SendLog:
		return o, nil
	case *domain.TradeLog:
		if o != nil {
			return *o, nil
		}
	case *domain.ReceiveLog:
		if o != nil {
			return *o, nil
		}
	case *domain.SendLog:
		if o != nil {
			return *o, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", domain.ErrUnknownOperation, op)
}

// Registered returns the number of successfully registered operations.
func (a *Account) Registered() int {
	return a.registered
}

// LastTimestamp returns the timestamp of the last accepted operation.
func (a *Account) LastTimestamp() time.Time {
	return a.last
}

// Years returns every financial year with balances or realised amounts, ascending.
func (a *Account) Years() []int {
	set := make(map[int]struct{})
	for _, y := range a.balances.Years() {
		set[y] = struct{}{}
	}
	for _, agg := range []*yearlyAmounts{a.gain, a.gainDiscounted, a.loss} {
		for _, y := range agg.years() {
			set[y] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Balances returns a copy of the balances of year keyed by asset code.
// A year never touched reports the balances carried from the closest earlier year.
func (a *Account) Balances(year int) map[string]decimal.Decimal {
	return a.balances.Snapshot(year)
}

// Gain returns ordinary gains of year per asset.
func (a *Account) Gain(year int) map[string]decimal.Decimal {
	return a.gain.perAsset(year)
}

// GainTotal returns the sum of ordinary gains of year.
func (a *Account) GainTotal(year int) decimal.Decimal {
	return a.gain.total(year)
}

// GainDiscounted returns gains on lots held more than a year, per asset.
func (a *Account) GainDiscounted(year int) map[string]decimal.Decimal {
	return a.gainDiscounted.perAsset(year)
}

// GainDiscountedTotal returns the sum of discounted gains of year.
func (a *Account) GainDiscountedTotal(year int) decimal.Decimal {
	return a.gainDiscounted.total(year)
}

// Loss returns realised losses of year per asset. Losses are negative.
func (a *Account) Loss(year int) map[string]decimal.Decimal {
	return a.loss.perAsset(year)
}

// LossTotal returns the sum of losses of year.
func (a *Account) LossTotal(year int) decimal.Decimal {
	return a.loss.total(year)
}

// ConsistencyLog returns a copy of the consistency entries in registration order.
func (a *Account) ConsistencyLog() []domain.ConsistencyEntry {
	return slices.Clone(a.consistency)
}

// Lots returns a copy of the remaining lots of asset.
func (a *Account) Lots(asset *domain.AssetType) []Lot {
	return a.inventory.Lots(asset)
}

// Report assembles every year into a domain.Report.
func (a *Account) Report(id string, createdAt time.Time) *domain.Report {
	years := a.Years()
	report := &domain.Report{
		ID:             id,
		CreatedAt:      createdAt,
		Settlement:     a.cfg.Settlement.Code,
		Strict:         a.cfg.Strict,
		OperationCount: a.registered,
		Years:          make([]domain.YearReport, 0, len(years)),
		Consistency:    a.ConsistencyLog(),
	}

	for _, y := range years {
		report.Years = append(report.Years, domain.YearReport{
			Year:                y,
			Balances:            a.Balances(y),
			Gain:                a.Gain(y),
			GainDiscounted:      a.GainDiscounted(y),
			Loss:                a.Loss(y),
			TotalGain:           a.GainTotal(y),
			TotalGainDiscounted: a.GainDiscountedTotal(y),
			TotalLoss:           a.LossTotal(y),
		})
	}

	return report
}
