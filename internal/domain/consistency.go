package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Severity grades a consistency entry.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ConsistencyKind names the check that produced an entry.
type ConsistencyKind string

const (
	ConsistencyNegativeBalance ConsistencyKind = "negative_balance"
	ConsistencyCapitalMismatch ConsistencyKind = "capital_mismatch"
)

// ConsistencyEntry records a non-fatal anomaly found while registering an operation.
type ConsistencyEntry struct {
	Seq      int             `json:"seq"`
	Severity Severity        `json:"severity"`
	Kind     ConsistencyKind `json:"kind"`
	Message  string          `json:"message"`
	// Operation is the offending operation. It is not serialised; OperationRef
	// carries its textual form instead.
	Operation    Operation       `json:"-"`
	OperationRef string          `json:"operation"`
	Year         int             `json:"year"`
	Asset        string          `json:"asset"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
}

func (e ConsistencyEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", e.Severity, e.Kind, e.Message, e.OperationRef)
}
