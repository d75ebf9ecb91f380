package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adrian-inthe/events7/internal/domain"
	"go.uber.org/zap"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeIDMismatch          = "id_mismatch"
	codeValidationFailed    = "validation_failed"
	codeEventNotFound       = "event_not_found"
	codeAdsPermissionDenied = "ads_permission_denied"
	codeEventChanged        = "event_changed"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors; anything unknown is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrIDMismatch):
		writeError(w, http.StatusBadRequest, codeIDMismatch, domain.ErrIDMismatch.Violations[0].Message)
	case errors.As(err, &verr):
		details := make([]string, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			details = append(details, v.String())
		}
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid event", details...)
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrAdsPermissionDenied):
		writeError(w, http.StatusForbidden, codeAdsPermissionDenied, err.Error())
	case errors.Is(err, domain.ErrEventChanged):
		writeError(w, http.StatusConflict, codeEventChanged, err.Error())
	default:
		loggerFromContext(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
