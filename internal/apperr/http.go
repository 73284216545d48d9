package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type body struct {
	Code   Code   `json:"code"`
	Detail string `json:"detail"`
}

// Status maps an error to the HTTP status of the public contract.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		// already-paid is part of the 400 contract of the payment endpoints
		if e.Code == CodeAlreadyPaid {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as {"code","detail"}. Errors outside the taxonomy are
// logged and hidden behind a generic message.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	status := Status(err)
	out := body{Code: CodeInternal, Detail: "internal error"}

	var e *Error
	if errors.As(err, &e) {
		out = body{Code: e.Code, Detail: e.Message}
		if e.Kind == KindGateway && e.Cause != nil {
			out.Detail = e.Message + ": " + e.Cause.Error()
		}
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}
