package api

import (
	"errors"
	"net/http"
	"strings"

	"yatube/internal/common"
)

type followRequest struct {
	Author *string `json:"author"`
}

func (h *Handler) listFollows(w http.ResponseWriter, r *http.Request) {
	list, err := h.follows.ListFollows(r.Context(), common.UserFromContext(r.Context()), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]followJSON, 0, len(list))
	for _, f := range list {
		out = append(out, newFollowJSON(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Author == nil || strings.TrimSpace(*req.Author) == "" {
		h.writeError(w, r, common.NewValidationError("author", "This field is required."))
		return
	}

	f, err := h.follows.FollowStrict(r.Context(), common.UserFromContext(r.Context()), *req.Author)
	if errors.Is(err, common.ErrNotFound) {
		h.writeError(w, r, common.NewValidationError("author", "Object with username="+*req.Author+" does not exist."))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFollowJSON(f))
}
