package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/ledger"
	"github.com/iho/cryptotax/internal/usecase"
)

var (
	// ErrNoOperations is returned for a calculation request without operations.
	ErrNoOperations = errors.New("at least one operation is required")
	// ErrInvalidOptions is returned for out-of-range ledger options.
	ErrInvalidOptions = errors.New("invalid ledger options")
)

// LedgerOptions overrides parts of the server's ledger configuration for one run.
type LedgerOptions struct {
	Strict             *bool            `json:"strict,omitempty"`
	FinancialYearStart *int             `json:"financial_year_start,omitempty"`
	Epsilon            *decimal.Decimal `json:"epsilon,omitempty"`
	Settlement         string           `json:"settlement,omitempty"`
}

// Apply returns base with the options applied.
func (o *LedgerOptions) Apply(base ledger.Config) (ledger.Config, error) {
	if o == nil {
		return base, nil
	}
	if o.Strict != nil {
		base.Strict = *o.Strict
	}
	if o.FinancialYearStart != nil {
		m := *o.FinancialYearStart
		if m < 1 || m > 12 {
			return base, fmt.Errorf("%w: financial_year_start %d", ErrInvalidOptions, m)
		}
		base.FinancialYearStart = time.Month(m)
	}
	if o.Epsilon != nil {
		if !o.Epsilon.IsPositive() {
			return base, fmt.Errorf("%w: epsilon %s", ErrInvalidOptions, o.Epsilon)
		}
		base.Epsilon = *o.Epsilon
	}
	if o.Settlement != "" {
		base.Settlement = domain.ResolveAsset(o.Settlement)
	}
	return base, nil
}

// CalculateRequest represents a request to run operations through the ledger.
type CalculateRequest struct {
	Operations []domain.OperationRecord `json:"operations"`
	Options    *LedgerOptions           `json:"options,omitempty"`
	Persist    bool                     `json:"persist"`
}

// ToUseCaseInput converts to use case input.
func (r *CalculateRequest) ToUseCaseInput(defaults ledger.Config) (usecase.CalculateInput, error) {
	if len(r.Operations) == 0 {
		return usecase.CalculateInput{}, ErrNoOperations
	}

	ops := make([]domain.Operation, 0, len(r.Operations))
	for i, rec := range r.Operations {
		op, err := rec.Operation()
		if err != nil {
			return usecase.CalculateInput{}, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}

	return OperationsInput(ops, r.Options, r.Persist, defaults)
}

// OperationsInput builds use case input from already parsed operations.
func OperationsInput(ops []domain.Operation, opts *LedgerOptions, persist bool, defaults ledger.Config) (usecase.CalculateInput, error) {
	if len(ops) == 0 {
		return usecase.CalculateInput{}, ErrNoOperations
	}

	input := usecase.CalculateInput{
		Operations: ops,
		Persist:    persist,
	}
	if opts != nil {
		cfg, err := opts.Apply(defaults)
		if err != nil {
			return usecase.CalculateInput{}, err
		}
		input.Config = &cfg
	}
	return input, nil
}
