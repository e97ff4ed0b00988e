package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind names the variant of an Operation.
type OperationKind string

const (
	OperationKindTrade   OperationKind = "trade"
	OperationKindReceive OperationKind = "receive"
	OperationKindSend    OperationKind = "send"
)

// ParseOperationKind parses a kind name, case-insensitively.
func ParseOperationKind(s string) (OperationKind, error) {
	switch kind := OperationKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case OperationKindTrade, OperationKindReceive, OperationKindSend:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Operation is a timestamped event the ledger can register.
// The set of implementations is closed: TradeLog, ReceiveLog and SendLog.
type Operation interface {
	// Timestamp is the instant of the event, in the zone it was recorded in.
	Timestamp() time.Time
	// Date is the calendar date of Timestamp in its own zone.
	Date() CivilDate
	Kind() OperationKind
	Validate() error
	String() string

	isOperation()
}

// TradeLog is an exchange of one asset for another.
// When AUD is bought for BTC, Incoming is AUD and Outgoing is BTC.
type TradeLog struct {
	OccurredAt     time.Time
	Incoming       *AssetType
	IncomingAmount decimal.Decimal
	Outgoing       *AssetType
	OutgoingAmount decimal.Decimal
	Rate           decimal.Decimal
	Fee            decimal.Decimal
	// Capital is the settlement-currency value of the trade.
	Capital decimal.Decimal
}

// NewTradeLog builds a validated TradeLog with amounts normalised to the default scale.
func NewTradeLog(
	ts time.Time,
	incoming *AssetType, incomingAmount decimal.Decimal,
	outgoing *AssetType, outgoingAmount decimal.Decimal,
	rate, fee, capital decimal.Decimal,
) (TradeLog, error) {
	t := TradeLog{
		OccurredAt:     ts,
		Incoming:       incoming,
		IncomingAmount: Normalize(incomingAmount, DefaultScale),
		Outgoing:       outgoing,
		OutgoingAmount: Normalize(outgoingAmount, DefaultScale),
		Rate:           Normalize(rate, DefaultScale),
		Fee:            Normalize(fee, DefaultScale),
		Capital:        Normalize(capital, DefaultScale),
	}
	if err := t.Validate(); err != nil {
		return TradeLog{}, err
	}
	return t, nil
}

// ParseTradeLog builds a TradeLog from its textual fields.
func ParseTradeLog(ts, incoming, incomingAmount, outgoing, outgoingAmount, rate, fee, capital string) (TradeLog, error) {
	at, err := ParseTimestamp(ts)
	if err != nil {
		return TradeLog{}, err
	}
	values, err := parseDecimals(incomingAmount, outgoingAmount, rate, fee, capital)
	if err != nil {
		return TradeLog{}, err
	}
	in, err := parseAsset(incoming)
	if err != nil {
		return TradeLog{}, err
	}
	out, err := parseAsset(outgoing)
	if err != nil {
		return TradeLog{}, err
	}
	return NewTradeLog(at, in, values[0], out, values[1], values[2], values[3], values[4])
}

func (t TradeLog) Timestamp() time.Time { return t.OccurredAt }
func (t TradeLog) Date() CivilDate      { return DateOf(t.OccurredAt) }
func (t TradeLog) Kind() OperationKind  { return OperationKindTrade }
func (TradeLog) isOperation()           {}

// Validate checks the TradeLog invariants.
func (t TradeLog) Validate() error {
	if err := validateTimestamp(t.OccurredAt); err != nil {
		return err
	}
	if t.Incoming == nil || t.Outgoing == nil {
		return ErrMissingAsset
	}
	if !t.IncomingAmount.IsPositive() {
		return fmt.Errorf("%w: incoming amount %s", ErrInvalidAmount, t.IncomingAmount)
	}
	if !t.OutgoingAmount.IsPositive() {
		return fmt.Errorf("%w: outgoing amount %s", ErrInvalidAmount, t.OutgoingAmount)
	}
	if !t.Rate.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidRate, t.Rate)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidFee, t.Fee)
	}
	if t.Capital.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidCapital, t.Capital)
	}
	if t.Incoming == t.Outgoing {
		return fmt.Errorf("%w: %s", ErrSameAsset, t.Incoming)
	}
	return nil
}

func (t TradeLog) String() string {
	return fmt.Sprintf("trade %s: +%s %s -%s %s rate %s fee %s capital %s",
		t.OccurredAt.Format(time.RFC3339), t.IncomingAmount, t.Incoming, t.OutgoingAmount, t.Outgoing,
		t.Rate, t.Fee, t.Capital)
}

// ReceiveLog is an inbound transfer of an asset.
type ReceiveLog struct {
	OccurredAt time.Time
	Asset      *AssetType
	Amount     decimal.Decimal
	Capital    decimal.Decimal
}

// NewReceiveLog builds a validated ReceiveLog.
func NewReceiveLog(ts time.Time, asset *AssetType, amount, capital decimal.Decimal) (ReceiveLog, error) {
	r := ReceiveLog{
		OccurredAt: ts,
		Asset:      asset,
		Amount:     Normalize(amount, DefaultScale),
		Capital:    Normalize(capital, DefaultScale),
	}
	if err := r.Validate(); err != nil {
		return ReceiveLog{}, err
	}
	return r, nil
}

// ParseReceiveLog builds a ReceiveLog from its textual fields.
func ParseReceiveLog(ts, asset, amount, capital string) (ReceiveLog, error) {
	at, err := ParseTimestamp(ts)
	if err != nil {
		return ReceiveLog{}, err
	}
	values, err := parseDecimals(amount, capital)
	if err != nil {
		return ReceiveLog{}, err
	}
	a, err := parseAsset(asset)
	if err != nil {
		return ReceiveLog{}, err
	}
	return NewReceiveLog(at, a, values[0], values[1])
}

func (r ReceiveLog) Timestamp() time.Time { return r.OccurredAt }
func (r ReceiveLog) Date() CivilDate      { return DateOf(r.OccurredAt) }
func (r ReceiveLog) Kind() OperationKind  { return OperationKindReceive }
func (ReceiveLog) isOperation()           {}

// Validate checks the ReceiveLog invariants.
func (r ReceiveLog) Validate() error {
	return validateTransfer(r.OccurredAt, r.Asset, r.Amount, r.Capital)
}

func (r ReceiveLog) String() string {
	return fmt.Sprintf("receive %s: +%s %s capital %s",
		r.OccurredAt.Format(time.RFC3339), r.Amount, r.Asset, r.Capital)
}

// SendLog is an outbound transfer of an asset.
type SendLog struct {
	OccurredAt time.Time
	Asset      *AssetType
	Amount     decimal.Decimal
	Capital    decimal.Decimal
}

// NewSendLog builds a validated SendLog.
func NewSendLog(ts time.Time, asset *AssetType, amount, capital decimal.Decimal) (SendLog, error) {
	s := SendLog{
		OccurredAt: ts,
		Asset:      asset,
		Amount:     Normalize(amount, DefaultScale),
		Capital:    Normalize(capital, DefaultScale),
	}
	if err := s.Validate(); err != nil {
		return SendLog{}, err
	}
	return s, nil
}

// ParseSendLog builds a SendLog from its textual fields.
func ParseSendLog(ts, asset, amount, capital string) (SendLog, error) {
	at, err := ParseTimestamp(ts)
	if err != nil {
		return SendLog{}, err
	}
	values, err := parseDecimals(amount, capital)
	if err != nil {
		return SendLog{}, err
	}
	a, err := parseAsset(asset)
	if err != nil {
		return SendLog{}, err
	}
	return NewSendLog(at, a, values[0], values[1])
}

func (s SendLog) Timestamp() time.Time { return s.OccurredAt }
func (s SendLog) Date() CivilDate      { return DateOf(s.OccurredAt) }
func (s SendLog) Kind() OperationKind  { return OperationKindSend }
func (SendLog) isOperation()           {}

// Validate checks the SendLog invariants.
func (s SendLog) Validate() error {
	return validateTransfer(s.OccurredAt, s.Asset, s.Amount, s.Capital)
}

func (s SendLog) String() string {
	return fmt.Sprintf("send %s: -%s %s capital %s",
		s.OccurredAt.Format(time.RFC3339), s.Amount, s.Asset, s.Capital)
}

// ParseTimestamp parses an RFC 3339 timestamp optionally followed by a
// bracketed IANA zone, e.g. 2021-10-10T10:00:00+10:00[Australia/Sydney].
// With a zone the instant is moved into it; otherwise the parsed offset is kept.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	zone := ""
	if i := strings.IndexByte(s, '['); i >= 0 && strings.HasSuffix(s, "]") {
		zone = s[i+1 : len(s)-1]
		s = s[:i]
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		t = t.In(loc)
	}

	return t, nil
}

func validateTimestamp(ts time.Time) error {
	if ts.IsZero() {
		return fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
	}
	return nil
}

func validateTransfer(ts time.Time, asset *AssetType, amount, capital decimal.Decimal) error {
	if err := validateTimestamp(ts); err != nil {
		return err
	}
	if asset == nil {
		return ErrMissingAsset
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if capital.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidCapital, capital)
	}
	return nil
}

func parseAsset(code string) (*AssetType, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingAsset
	}
	return ResolveAsset(code), nil
}

func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := ParseDecimal(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
