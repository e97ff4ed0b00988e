package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/cryptotax/internal/adapter/csvlog"
	"github.com/iho/cryptotax/internal/adapter/http/dto"
	"github.com/iho/cryptotax/internal/adapter/repository/postgres"
	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/ledger"
	"github.com/iho/cryptotax/internal/usecase"
)

// ledgerFlags are the per-run overrides of the configured ledger settings.
type ledgerFlags struct {
	strict     bool
	fyStart    int
	epsilon    string
	settlement string
	format     string
}

func (f *ledgerFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on negative balances beyond epsilon")
	cmd.Flags().IntVar(&f.fyStart, "fy-start", 7, "First month of the financial year")
	cmd.Flags().StringVar(&f.epsilon, "epsilon", "", "Tolerance for negative balances and capital mismatches")
	cmd.Flags().StringVar(&f.settlement, "settlement", "", "Settlement currency")
	cmd.Flags().StringVarP(&f.format, "format", "o", formatText, "Output format: text or json")
}

// options returns the overrides of the flags the user set.
func (f *ledgerFlags) options(cmd *cobra.Command) (*dto.LedgerOptions, error) {
	opts := &dto.LedgerOptions{Settlement: f.settlement}
	changed := f.settlement != ""

	if cmd.Flags().Changed("strict") {
		opts.Strict = &f.strict
		changed = true
	}
	if cmd.Flags().Changed("fy-start") {
		opts.FinancialYearStart = &f.fyStart
		changed = true
	}
	if f.epsilon != "" {
		eps, err := decimal.NewFromString(f.epsilon)
		if err != nil {
			return nil, fmt.Errorf("%w: epsilon %q", dto.ErrInvalidOptions, f.epsilon)
		}
		opts.Epsilon = &eps
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return opts, nil
}

func newCalcCmd(root *rootOptions) *cobra.Command {
	flags := &ledgerFlags{}

	cmd := &cobra.Command{
		Use:   "calc <file.csv>...",
		Short: "Calculate capital gains from canonical CSV operation logs",
		Long: `Reads one or more canonical CSV operation logs ("-" for stdin), in the order
given, and prints the per-year report and the consistency log.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.loadConfig()
			if err != nil {
				return err
			}

			ops, err := readOperationFiles(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			return runCalculation(cmd.Context(), cmd.OutOrStdout(), ops, opts, cfg.LedgerConfig(), flags.format, log)
		},
	}

	flags.register(cmd)
	return cmd
}

// runCalculation registers ops in a fresh ledger and renders the report.
// A registration failure still renders the partial report before returning.
func runCalculation(
	ctx context.Context,
	out io.Writer,
	ops []domain.Operation,
	opts *dto.LedgerOptions,
	defaults ledger.Config,
	format string,
	log zerolog.Logger,
) error {
	input, err := dto.OperationsInput(ops, opts, false, defaults)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	uc := usecase.NewTaxUseCase(nil, nil, nil, nil, postgres.NewULIDGenerator(), nil, log, defaults)
	report, calcErr := uc.Calculate(ctx, input)
	if report == nil {
		return calcErr
	}

	if err := renderReport(out, dto.ReportFromDomain(report), format); err != nil {
		return err
	}
	return calcErr
}

func readOperationFiles(stdin io.Reader, paths []string) ([]domain.Operation, error) {
	var ops []domain.Operation

	for _, path := range paths {
		fileOps, err := readOperationFile(stdin, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ops = append(ops, fileOps...)
	}

	if len(ops) == 0 {
		return nil, errors.New("no operations found")
	}
	return ops, nil
}

func readOperationFile(stdin io.Reader, path string) ([]domain.Operation, error) {
	if path == "-" {
		return csvlog.Read(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return csvlog.Read(f)
}
