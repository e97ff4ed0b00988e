package domain

import (
	"fmt"
	"strings"
	"time"
)

// OperationRecord is the flat textual form shared by every operation kind.
// Receives use the incoming columns and sends the outgoing columns.
type OperationRecord struct {
	Kind           string `json:"kind"`
	Timestamp      string `json:"timestamp"`
	IncomingAsset  string `json:"incoming_asset,omitempty"`
	IncomingAmount string `json:"incoming_amount,omitempty"`
	OutgoingAsset  string `json:"outgoing_asset,omitempty"`
	OutgoingAmount string `json:"outgoing_amount,omitempty"`
	Rate           string `json:"rate,omitempty"`
	Fee            string `json:"fee,omitempty"`
	Capital        string `json:"capital"`
}

// Operation parses the record into its concrete operation.
func (r OperationRecord) Operation() (Operation, error) {
	kind, err := ParseOperationKind(r.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case OperationKindTrade:
		fee := r.Fee
		if strings.TrimSpace(fee) == "" {
			fee = "0"
		}
		return ParseTradeLog(r.Timestamp, r.IncomingAsset, r.IncomingAmount,
			r.OutgoingAsset, r.OutgoingAmount, r.Rate, fee, r.Capital)
	case OperationKindReceive:
		return ParseReceiveLog(r.Timestamp, r.IncomingAsset, r.IncomingAmount, r.Capital)
	default:
		return ParseSendLog(r.Timestamp, r.OutgoingAsset, r.OutgoingAmount, r.Capital)
	}
}

// RecordOf renders an operation in its flat textual form.
func RecordOf(op Operation) (OperationRecord, error) {
	switch o := op.(type) {
	case TradeLog:
		return OperationRecord{
			Kind:           string(OperationKindTrade),
			Timestamp:      FormatTimestamp(o.OccurredAt),
			IncomingAsset:  o.Incoming.Code,
			IncomingAmount: o.IncomingAmount.String(),
			OutgoingAsset:  o.Outgoing.Code,
			OutgoingAmount: o.OutgoingAmount.String(),
			Rate:           o.Rate.String(),
			Fee:            o.Fee.String(),
			Capital:        o.Capital.String(),
		}, nil
	case ReceiveLog:
		return OperationRecord{
			Kind:           string(OperationKindReceive),
			Timestamp:      FormatTimestamp(o.OccurredAt),
			IncomingAsset:  o.Asset.Code,
			IncomingAmount: o.Amount.String(),
			Capital:        o.Capital.String(),
		}, nil
	case SendLog:
		return OperationRecord{
			Kind:           string(OperationKindSend),
			Timestamp:      FormatTimestamp(o.OccurredAt),
			OutgoingAsset:  o.Asset.Code,
			OutgoingAmount: o.Amount.String(),
			Capital:        o.Capital.String(),
		}, nil
	case *TradeLog:
		if o != nil {
			return RecordOf(*o)
		}
	case *ReceiveLog:
		if o != nil {
			return RecordOf(*o)
		}
	case *SendLog:
		if o != nil {
			return RecordOf(*o)
		}
	}
	return OperationRecord{}, fmt.Errorf("%w: %T", ErrUnknownOperation, op)
}

// FormatTimestamp is the inverse of ParseTimestamp. Named zones are appended
// in brackets so the zone survives a round trip.
func FormatTimestamp(t time.Time) string {
	s := t.Format(time.RFC3339Nano)
	if name := t.Location().String(); strings.Contains(name, "/") {
		s += "[" + name + "]"
	}
	return s
}
