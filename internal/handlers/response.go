package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cricketbet/internal/apperr"
	"cricketbet/internal/middleware"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError maps err's kind to a status code. Internal errors are
// logged with the request id and answered with a generic message.
func respondWithError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)
		logger.Error().Err(err).
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	respondWithJSON(w, apperr.HTTPStatus(kind), errorBody{
		Error:   string(kind),
		Message: apperr.MessageOf(err),
	})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	return nil
}

// callerID returns the authenticated user id. Routes that call it sit behind
// the Authentication middleware.
func callerID(r *http.Request) (string, error) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		return "", apperr.New(apperr.KindUnauthorized, "User not authenticated")
	}
	return userID, nil
}
