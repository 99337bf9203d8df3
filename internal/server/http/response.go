package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/result"
)

type errorBody struct {
	Code    errs.Code           `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

const internalMessage = "internal server error"

// StatusFor maps an error code to its HTTP status.
func StatusFor(code errs.Code) int {
	switch code {
	case errs.CodeValidation, errs.CodeEmailAlreadyExists, errs.CodeInvalidCredentials:
		return http.StatusBadRequest
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeInvalidToken, errs.CodeTokenExpired:
		return http.StatusUnauthorized
	case errs.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders {code, message, details?}. Server-side failures keep
// their code but get a generic message; causes are never rendered.
func writeError(w http.ResponseWriter, err error) {
	e := errs.From(err)
	status := StatusFor(e.Code)
	body := errorBody{Code: e.Code, Message: e.Message, Details: e.Details}
	if status >= http.StatusInternalServerError || body.Message == "" {
		body.Message = internalMessage
		body.Details = nil
	}
	writeJSON(w, status, body)
}

// respond writes the Ok value with status or the Err as an error body.
func respond[T any](w http.ResponseWriter, status int, r result.Result[T]) {
	result.Match(r,
		func(v T) struct{} {
			writeJSON(w, status, v)
			return struct{}{}
		},
		func(err error) struct{} {
			writeError(w, err)
			return struct{}{}
		},
	)
}
