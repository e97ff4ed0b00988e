package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/cryptotax/internal/adapter/csvlog"
	"github.com/iho/cryptotax/internal/adapter/http/dto"
	"github.com/iho/cryptotax/internal/domain"
	"github.com/iho/cryptotax/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrYearNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfOrder),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNegativeBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownOperation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCapital),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidFee),
		errors.Is(err, domain.ErrSameAsset),
		errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrInvalidDecimal),
		errors.Is(err, domain.ErrMissingAsset),
		errors.Is(err, csvlog.ErrMissingColumn),
		errors.Is(err, dto.ErrNoOperations),
		errors.Is(err, dto.ErrInvalidOptions),
		errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, usecase.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
