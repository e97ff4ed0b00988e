package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cryptotax/internal/adapter/csvlog"
	"github.com/iho/cryptotax/internal/adapter/http/dto"
	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/ledger"
	"github.com/iho/cryptotax/internal/usecase"
)

// DefaultMaxBodyBytes bounds calculation request bodies.
const DefaultMaxBodyBytes int64 = 10 << 20

var errMalformedBody = errors.New("malformed request body")

// Calculator runs operation streams through the ledger.
type Calculator interface {
	Calculate(ctx context.Context, input usecase.CalculateInput) (*domain.Report, error)
}

// ReportReader reads stored reports.
type ReportReader interface {
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	GetYear(ctx context.Context, id string, year int) (*domain.YearReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]*domain.Report, error)
}

// ReportHandler handles report-related HTTP requests.
type ReportHandler struct {
	calc         Calculator
	reports      ReportReader
	defaults     ledger.Config
	maxBodyBytes int64
}

// NewReportHandler creates a new ReportHandler. A non-positive maxBodyBytes
// uses DefaultMaxBodyBytes.
func NewReportHandler(calc Calculator, reports ReportReader, defaults ledger.Config, maxBodyBytes int64) *ReportHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ReportHandler{
		calc:         calc,
		reports:      reports,
		defaults:     defaults,
		maxBodyBytes: maxBodyBytes,
	}
}

// Create runs the posted operations and returns the report.
//
// A JSON body is a dto.CalculateRequest. A text/csv body is a canonical
// operation log; ledger options and persist are then read from the query.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	input, err := h.decodeInput(r)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid request body", err.Error())
		return
	}

	report, err := h.calc.Calculate(r.Context(), input)
	if err != nil {
		resp := dto.ErrorResponse{Error: "calculation failed", Message: err.Error()}
		if report != nil {
			resp.Report = dto.ReportFromDomain(report)
		}
		writeJSON(w, mapDomainError(err), resp)
		return
	}

	status := http.StatusOK
	if input.Persist {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/v1/reports/"+report.ID)
	}
	writeJSON(w, status, dto.ReportFromDomain(report))
}

// Get retrieves a stored report by ID.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing report ID", "")
		return
	}

	report, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromDomain(report))
}

// GetYear retrieves one financial year of a stored report.
func (h *ReportHandler) GetYear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if id == "" || err != nil {
		writeError(w, http.StatusBadRequest, "invalid report ID or year", "")
		return
	}

	yr, err := h.reports.GetYear(r.Context(), id, year)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get financial year", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.YearFromDomain(*yr))
}

// List lists stored report headers, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	reports, err := h.reports.ListReports(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list reports", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportsFromDomain(reports, limit, offset))
}

func (h *ReportHandler) decodeInput(r *http.Request) (usecase.CalculateInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "text/csv" {
		ops, err := csvlog.Read(r.Body)
		if err != nil {
			return usecase.CalculateInput{}, err
		}
		opts, persist, err := optionsFromQuery(r)
		if err != nil {
			return usecase.CalculateInput{}, err
		}
		return dto.OperationsInput(ops, opts, persist, h.defaults)
	}

	var req dto.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return usecase.CalculateInput{}, err
		}
		return usecase.CalculateInput{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return req.ToUseCaseInput(h.defaults)
}

func optionsFromQuery(r *http.Request) (*dto.LedgerOptions, bool, error) {
	q := r.URL.Query()
	opts := &dto.LedgerOptions{Settlement: q.Get("settlement")}

	if v := q.Get("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, false, fmt.Errorf("%w: strict %q", dto.ErrInvalidOptions, v)
		}
		opts.Strict = &strict
	}
	if v := q.Get("financial_year_start"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, fmt.Errorf("%w: financial_year_start %q", dto.ErrInvalidOptions, v)
		}
		opts.FinancialYearStart = &month
	}
	if v := q.Get("epsilon"); v != "" {
		eps, err := decimal.NewFromString(v)
		if err != nil {
			return nil, false, fmt.Errorf("%w: epsilon %q", dto.ErrInvalidOptions, v)
		}
		opts.Epsilon = &eps
	}

	persist := false
	if v := q.Get("persist"); v != "" {
		var err error
		if persist, err = strconv.ParseBool(v); err != nil {
			return nil, false, fmt.Errorf("%w: persist %q", dto.ErrInvalidOptions, v)
		}
	}

	if opts.Strict == nil && opts.FinancialYearStart == nil && opts.Epsilon == nil && opts.Settlement == "" {
		opts = nil
	}
	return opts, persist, nil
}
