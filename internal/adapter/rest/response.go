package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/etfguard-backend/internal/domain"
)

// now is replaced in tests
var now = time.Now

// APIResponse wraps every successful response body
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"errorCode"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidState    = "INVALID_STATE"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: code,
		Timestamp: now().UTC(),
	})
}

// writeDomainError maps an error to its status; unknown errors are logged and hidden
func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unexpected error")
		writeError(w, status, code, "internal server error")
		return
	}

	log.Warn().Err(err).Str("code", code).Msg("Request rejected")
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrInstrumentNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrUserAlreadyRegistered),
		errors.Is(err, domain.ErrDuplicatePosition):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrMissingPrice),
		errors.Is(err, domain.ErrEmptyPortfolio),
		errors.Is(err, domain.ErrNotificationUnavailable):
		return http.StatusBadRequest, CodeInvalidState
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientQuantity),
		errors.Is(err, domain.ErrMalformedValue),
		errors.Is(err, domain.ErrUnsupportedInstrument),
		errors.Is(err, domain.ErrDivisionByZero):
		return http.StatusBadRequest, CodeInvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeInternal
	}
	return http.StatusInternalServerError, CodeInternal
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
