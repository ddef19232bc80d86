package api

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error    string `json:"error"`
	Estimate any    `json:"estimate,omitempty"`
}

func badRequest(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), errBadRequest)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, common.ErrUnsupportedSource),
		errors.Is(err, common.ErrMalformedRecord):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrSyncInProgress),
		errors.Is(err, common.ErrAuthExpired):
		return http.StatusConflict
	case errors.Is(err, common.ErrConfirmationMissing):
		return http.StatusPreconditionFailed
	case errors.Is(err, common.ErrTransientProvider):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	if errors.Is(err, errBadRequest) {
		return err.Error()
	}

	return common.UserMessage(err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	writeJSON(w, status, errorResponse{Error: messageFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
