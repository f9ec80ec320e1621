package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"blog/pkg/generate"
	"blog/pkg/storage"
	"blog/pkg/uploader"
)

// apiError carries the HTTP status a handler failure should map to.
// Handlers return these through writeError so every failure leaves the
// server in the same envelope shape.
type apiError struct {
	code int
	msg  string
}

func (e *apiError) Error() string { return e.msg }

var (
	errUnauthorized = &apiError{http.StatusUnauthorized, "please login first"}
	errForbidden    = &apiError{http.StatusForbidden, "you do not have permission to perform this action"}
)

func validationError(msg string) *apiError {
	return &apiError{http.StatusBadRequest, msg}
}

func notFoundError(msg string) *apiError {
	return &apiError{http.StatusNotFound, msg}
}

func conflictError(msg string) *apiError {
	return &apiError{http.StatusConflict, msg}
}

func dependencyError(msg string) *apiError {
	return &apiError{http.StatusBadGateway, msg}
}

// errorEnvelope is the body every failed request gets.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeError translates an error into a status code and a JSON error
// envelope. Storage sentinels map onto 404/409, outbound dependency
// failures onto 502, everything unrecognised onto 500.
func (api *API) writeError(w http.ResponseWriter, err error, handler, reqID string) {
	var ae *apiError
	if errors.As(err, &ae) {
		writeJSON(w, ae.code, errorEnvelope{Status: "error", Message: ae.msg})
		return
	}

	var code int
	var msg string
	switch {
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrPostNotFound),
		errors.Is(err, storage.ErrCommentNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, storage.ErrEmailTaken):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, generate.ErrUnavailable), errors.Is(err, uploader.ErrUnavailable):
		code, msg = http.StatusBadGateway, err.Error()
	case errors.Is(err, storage.ErrDBNotResponding):
		code, msg = http.StatusInternalServerError, "storage is not responding"
	default:
		code, msg = http.StatusInternalServerError, "internal server error"
	}

	if code == http.StatusInternalServerError {
		log.Errorf("[%s][%s] %v", handler, shorten(reqID), err)
	} else {
		log.Debugf("[%s][%s] %v", handler, shorten(reqID), err)
	}

	writeJSON(w, code, errorEnvelope{Status: "error", Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("[writeJSON] encode response: %v", err)
	}
}
