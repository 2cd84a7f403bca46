package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"yatube/internal/common"
)

const (
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgForbidden        = "You do not have permission to perform this action."
	msgNotFound         = "Not found."
	msgServerError      = "A server error occurred."
	msgSelfFollow       = "You cannot follow yourself."
	msgAlreadyFollowing = "The fields user, author must make a unique set."
)

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

// writeError maps service errors onto status codes and bodies.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := common.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, msgNotAuthenticated)
	case errors.Is(err, common.ErrForbidden):
		writeDetail(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, common.ErrNotFound):
		writeDetail(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, common.ErrSelfFollow):
		writeJSON(w, http.StatusBadRequest, map[string][]string{common.NonFieldErrors: {msgSelfFollow}})
	case errors.Is(err, common.ErrAlreadyFollowing):
		writeJSON(w, http.StatusBadRequest, map[string][]string{common.NonFieldErrors: {msgAlreadyFollowing}})
	default:
		h.log.Error("api request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", common.RequestIDFromContext(r.Context()),
		)
		writeDetail(w, http.StatusInternalServerError, msgServerError)
	}
}

// decode reads a JSON body into dst. A malformed body is a validation error.
func decode(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return common.NewValidationError(common.NonFieldErrors, fmt.Sprintf("JSON parse error - %v", err))
	}
	return nil
}
