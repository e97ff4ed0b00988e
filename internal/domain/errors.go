package domain

import (
	"errors"
	"fmt"
)

var (
	// Registration errors
	ErrOutOfOrder          = errors.New("operation is out of order")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeBalance     = errors.New("balance is negative beyond tolerance")
	ErrUnknownOperation    = errors.New("unknown operation kind")

	// Record construction errors
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidCapital   = errors.New("capital must be non-negative")
	ErrInvalidRate      = errors.New("rate must be positive")
	ErrInvalidFee       = errors.New("fee must be non-negative")
	ErrSameAsset        = errors.New("incoming and outgoing assets must be different")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidDecimal   = errors.New("invalid decimal value")
	ErrMissingAsset     = errors.New("asset is required")

	// Asset registry errors
	ErrAssetConflict = errors.New("asset registration conflict")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
	ErrYearNotFound   = errors.New("financial year not found in report")
)

// OperationError ties a registration failure to the operation that caused it.
type OperationError struct {
	Op     Operation
	Err    error
	Detail string
}

func (e *OperationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s, after %s", e.Err, e.Detail, e.Op)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Op)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError wraps err with the offending operation.
func NewOperationError(op Operation, err error, detail string) *OperationError {
	return &OperationError{Op: op, Err: err, Detail: detail}
}
