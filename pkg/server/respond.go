package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
)

type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	respond(w, apperrors.HTTPStatus(err), errorResponse{Error: apperrors.UserMessage(err), Code: code})
}

// decode reads exactly one JSON value from the body into v.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", limit)
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request: %v", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "request body must contain a single JSON value")
	}
	return nil
}
