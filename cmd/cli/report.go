package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/cryptotax/internal/adapter/http/dto"
)

// apiClient talks to the cryptotax HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends a request and decodes a 2xx JSON body into out.
func (c *apiClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func newReportCmd(root *rootOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Submit and read reports stored by the cryptotax API",
	}

	reportCmd.AddCommand(
		newReportSubmitCmd(root),
		newReportGetCmd(root),
		newReportListCmd(root),
	)
	return reportCmd
}

func newReportSubmitCmd(root *rootOptions) *cobra.Command {
	var (
		persist bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "submit <file.csv>",
		Short: "Calculate a canonical CSV operation log on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			query := url.Values{}
			query.Set("persist", strconv.FormatBool(persist))

			var report dto.ReportResponse
			client := newAPIClient(root.baseURL, root.timeout)
			if err := client.do(cmd.Context(), http.MethodPost, "/api/v1/reports?"+query.Encode(), "text/csv", f, &report); err != nil {
				return err
			}
			return renderReport(cmd.OutOrStdout(), &report, format)
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", true, "Store the report on the server")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text or json")
	return cmd
}

func newReportGetCmd(root *rootOptions) *cobra.Command {
	var (
		year   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "get <report-id>",
		Short: "Show a stored report, or one financial year of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(root.baseURL, root.timeout)
			path := "/api/v1/reports/" + url.PathEscape(args[0])

			if year == 0 {
				var report dto.ReportResponse
				if err := client.do(cmd.Context(), http.MethodGet, path, "", nil, &report); err != nil {
					return err
				}
				return renderReport(cmd.OutOrStdout(), &report, format)
			}

			var yr dto.YearResponse
			if err := client.do(cmd.Context(), http.MethodGet, path+"/years/"+strconv.Itoa(year), "", nil, &yr); err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), yr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Financial year %d\n", yr.Year)
			printYear(cmd.OutOrStdout(), yr)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Financial year to show")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text or json")
	return cmd
}

func newReportListCmd(root *rootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			var list dto.ReportListResponse
			client := newAPIClient(root.baseURL, root.timeout)
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/reports?"+query.Encode(), "", nil, &list); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range list.Reports {
				fmt.Fprintf(out, "%s\t%s\t%d operations\t%s\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.OperationCount, r.Settlement)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reports")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of reports to skip")
	return cmd
}
