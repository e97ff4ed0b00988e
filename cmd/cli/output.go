package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/iho/cryptotax/internal/adapter/http/dto"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// renderReport writes a report as aligned tables or indented JSON.
func renderReport(out io.Writer, report *dto.ReportResponse, format string) error {
	switch format {
	case formatJSON:
		return printJSON(out, report)
	case formatText, "":
		return printReport(out, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(out io.Writer, report *dto.ReportResponse) error {
	mode := "lenient"
	if report.Strict {
		mode = "strict"
	}
	fmt.Fprintf(out, "Report %s: %d operations, settlement %s, %s\n", report.ID, report.OperationCount, report.Settlement, mode)

	for _, year := range report.Years {
		fmt.Fprintf(out, "\nFinancial year %d\n", year.Year)
		printYear(out, year)
	}

	if len(report.Consistency) > 0 {
		fmt.Fprintf(out, "\nConsistency log\n")
		w := tabwriter.NewWriter(out, 4, 8, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tSEVERITY\tKIND\tYEAR\tASSET\tDISCREPANCY\tMESSAGE")
		for _, e := range report.Consistency {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
				e.Seq, e.Severity, e.Kind, e.Year, e.Asset, e.Discrepancy, truncate(e.Message, 80))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if report.HasErrors {
		fmt.Fprintf(out, "\nWARNING: the consistency log contains errors\n")
	}
	return nil
}

func printYear(out io.Writer, year dto.YearResponse) {
	w := tabwriter.NewWriter(out, 4, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ASSET\tBALANCE\tGAIN\tDISCOUNTED\tLOSS\t")
	for _, a := range year.Assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", a.Asset, a.Balance, a.Gain, a.GainDiscounted, a.Loss)
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t%s\t%s\t\n", year.TotalGain, year.TotalGainDiscounted, year.TotalLoss)
	w.Flush()

	fmt.Fprintf(out, "Net gain: %s\n", year.NetGain)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
