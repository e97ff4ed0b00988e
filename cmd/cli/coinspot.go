package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cryptotax/internal/adapter/csvlog"
	"github.com/iho/cryptotax/internal/connector/coinspot"
	"github.com/iho/cryptotax/internal/domain"
)

func newCoinspotCmd(root *rootOptions) *cobra.Command {
	var (
		ordersPath    string
		transfersPath string
		outputPath    string
		calc          bool
	)
	flags := &ledgerFlags{}

	cmd := &cobra.Command{
		Use:   "coinspot",
		Short: "Convert Coinspot order and transfer history",
		Long: `Converts Coinspot order history and send/receive history JSON responses into
one chronological canonical CSV operation log, or calculates it directly with --calc.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ordersPath == "" && transfersPath == "" {
				return fmt.Errorf("at least one of --orders or --transfers is required")
			}

			cfg, log, err := root.loadConfig()
			if err != nil {
				return err
			}

			ops, err := convertCoinspot(cfg.Location(), ordersPath, transfersPath)
			if err != nil {
				return err
			}
			log.Info().Int("operations", len(ops)).Msg("converted coinspot history")

			if calc {
				opts, err := flags.options(cmd)
				if err != nil {
					return err
				}
				return runCalculation(cmd.Context(), cmd.OutOrStdout(), ops, opts, cfg.LedgerConfig(), flags.format, log)
			}

			out := cmd.OutOrStdout()
			if outputPath != "" && outputPath != "-" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeOperations(out, ops)
		},
	}

	cmd.Flags().StringVar(&ordersPath, "orders", "", "Order history JSON file")
	cmd.Flags().StringVar(&transfersPath, "transfers", "", "Send/receive history JSON file")
	cmd.Flags().StringVar(&outputPath, "output", "-", "CSV output file")
	cmd.Flags().BoolVar(&calc, "calc", false, "Calculate the converted operations instead of writing CSV")
	flags.register(cmd)

	return cmd
}

func convertCoinspot(loc *time.Location, ordersPath, transfersPath string) ([]domain.Operation, error) {
	converter, err := coinspot.NewConverter(loc)
	if err != nil {
		return nil, err
	}

	var orders *coinspot.OrderHistory
	if ordersPath != "" {
		f, err := os.Open(ordersPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if orders, err = coinspot.DecodeOrderHistory(f); err != nil {
			return nil, fmt.Errorf("%s: %w", ordersPath, err)
		}
	}

	var transfers *coinspot.TransferHistory
	if transfersPath != "" {
		f, err := os.Open(transfersPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if transfers, err = coinspot.DecodeTransferHistory(f); err != nil {
			return nil, fmt.Errorf("%s: %w", transfersPath, err)
		}
	}

	return converter.Convert(orders, transfers)
}

func writeOperations(out io.Writer, ops []domain.Operation) error {
	return csvlog.NewWriter(out).WriteAll(ops)
}
