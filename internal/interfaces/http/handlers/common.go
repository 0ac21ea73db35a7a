package handlers

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, DataResponse{Data: data})
}

// errorWriter maps errors onto HTTP replies. Server-side failures are logged
// in full and masked in the response body.
type errorWriter struct {
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	reqID := chimw.GetReqID(r.Context())

	resp := ErrorResponse{Code: string(code), RequestID: reqID}
	if status >= http.StatusInternalServerError {
		resp.Message = errors.DefaultMessageForCode(code)
		if e.logger != nil {
			e.logger.Error("request failed",
				logging.String("path", r.URL.Path),
				logging.String("code", string(code)),
				logging.String("request_id", reqID),
				logging.Err(err))
		}
	} else {
		resp.Message, resp.Detail = clientMessage(err, code)
	}
	e.metrics.RecordError("http", string(code))
	writeJSON(w, status, resp)
}

func clientMessage(err error, code errors.ErrorCode) (string, string) {
	if appErr, ok := errors.AsAppError(err); ok && appErr.Message != "" {
		return appErr.Message, appErr.Detail
	}
	return errors.DefaultMessageForCode(code), ""
}

//Personal.AI order the ending
