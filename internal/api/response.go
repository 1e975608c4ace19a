// internal/api/response.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	commonerrors "listing-photos/internal/common/errors"
	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"
)

// ErrorBody is the payload of every failed photo request.
type ErrorBody struct {
	Error string `json:"erro"`
}

// Render turns a pipeline result into a status code and JSON body. It is
// shared by the HTTP server and the Lambda adapter.
func Render(record *models.OutputRecord, err error) (int, []byte) {
	if err != nil {
		status := commonerrors.HTTPStatus(err)
		body, _ := json.Marshal(ErrorBody{Error: commonerrors.Normalize(err).Error()})
		return status, body
	}
	body, err := json.Marshal(record)
	if err != nil {
		return Render(nil, commonerrors.NewInternalError(fmt.Errorf("encode record: %w", err)))
	}
	return http.StatusOK, body
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status, body = Render(nil, commonerrors.NewInternalError(err))
	}
	writeBody(w, status, body)
}

func respondError(w http.ResponseWriter, err error) {
	status, body := Render(nil, err)
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// recoverer answers 500 with the usual error body when a handler panics.
func recoverer(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("handler panicked", map[string]interface{}{
					"panic": fmt.Sprint(rec),
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				})
				respondError(w, commonerrors.NewInternalError(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
