package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/company"
	"tripmanager/quotation"
	"tripmanager/triprequest"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps domain sentinels onto HTTP statuses. Anything unmapped
// is an internal error; its detail is logged, not leaked.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		status = http.StatusInternalServerError
		code   = "INTERNAL_ERROR"
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, company.ErrForbidden), errors.Is(err, triprequest.ErrForbidden),
		errors.Is(err, quotation.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrTokenNotFound),
		errors.Is(err, company.ErrNotFound), errors.Is(err, company.ErrUserNotFound),
		errors.Is(err, triprequest.ErrNotFound),
		errors.Is(err, quotation.ErrNotFound), errors.Is(err, quotation.ErrTripRequestNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, auth.ErrDuplicateEmail), errors.Is(err, company.ErrDuplicateSlug):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, quotation.ErrInvalidState):
		status, code = http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, quotation.ErrExpired):
		status, code = http.StatusConflict, "EXPIRED"
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, company.ErrInvalidInput),
		errors.Is(err, triprequest.ErrInvalidInput), errors.Is(err, quotation.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrCompanyRequired),
		errors.Is(err, auth.ErrCompanyNotFound), errors.Is(err, auth.ErrTokenExpired):
		status, code = http.StatusBadRequest, "BAD_REQUEST"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = "an unexpected error occurred"
	}

	writeJSON(w, logger, status, errorResponse{Error: code, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{
			Error:   "BAD_REQUEST",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}
