package api

import (
	"net/http"
	"strconv"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/posts"
)

type postRequest struct {
	Text  *string    `json:"text"`
	Group OptionalID `json:"group"`
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	var filter posts.PostFilter
	if raw := r.URL.Query().Get("group"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusOK, []postJSON{})
			return
		}
		groupID := uint(id)
		filter.GroupID = &groupID
	}

	list, err := h.posts.ListPosts(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]postJSON, 0, len(list))
	for _, p := range list {
		out = append(out, newPostJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.input(nil, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.posts.CreatePost(r.Context(), common.UserFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPostJSON(post))
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostJSON(post))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor := common.UserFromContext(r.Context())
	if actor.ID != post.AuthorID {
		h.writeError(w, r, common.ErrForbidden)
		return
	}

	var req postRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.input(post, r.Method == http.MethodPatch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.posts.EditPost(r.Context(), actor, post, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPostJSON(updated))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.posts.DeletePost(r.Context(), common.UserFromContext(r.Context()), post); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// input fills the fields the request left out from current when partial is set.
// Without partial, only the text is required; an absent group keeps the current one.
func (req postRequest) input(current *db.Post, partial bool) (posts.PostInput, error) {
	var in posts.PostInput
	if current != nil {
		in.Text = current.Text
		in.GroupID = current.GroupID
	}

	switch {
	case req.Text != nil:
		in.Text = *req.Text
	case !partial:
		in.Text = ""
	}

	if req.Group.Set {
		if msg := req.Group.Invalid(); msg != "" {
			return in, common.NewValidationError("group", msg)
		}
		in.GroupID = req.Group.Value
	}
	return in, nil
}
