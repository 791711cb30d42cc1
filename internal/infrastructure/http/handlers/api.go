// Package handlers contains the JSON API handlers. Handlers decode and
// validate requests, call application services, and encode responses;
// all policy lives below them.
package handlers

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/pkg/errors"
)

var validate = validator.New()

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

// writeError maps any error to the single error response shape. Unknown
// errors surface as 500 without leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := errors.Wrap(err, "request failed")
	requestID := chimiddleware.GetReqID(r.Context())

	if appErr.StatusCode() >= 500 {
		logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}

// decodeJSON decodes the request body into v, enforcing the byte limit
// and rejecting unknown shapes early with a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewBadRequestError("Invalid request body")
	}
	return nil
}
