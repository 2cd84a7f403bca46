package api

import (
	"net/http"

	"yatube/internal/common"
	"yatube/internal/db"
)

type commentRequest struct {
	Text *string `json:"text"`
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.posts.ListComments(r.Context(), post.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]commentJSON, 0, len(list))
	for _, c := range list {
		out = append(out, newCommentJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.posts.CreateComment(r.Context(), common.UserFromContext(r.Context()), post, req.text())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommentJSON(comment))
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comment(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentJSON(comment))
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comment(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor := common.UserFromContext(r.Context())
	if actor.ID != comment.AuthorID {
		h.writeError(w, r, common.ErrForbidden)
		return
	}

	var req commentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	text := req.text()
	if req.Text == nil && r.Method == http.MethodPatch {
		text = comment.Text
	}

	updated, err := h.posts.EditComment(r.Context(), actor, comment, text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentJSON(updated))
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.comment(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.posts.DeleteComment(r.Context(), common.UserFromContext(r.Context()), comment); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// comment loads the path's comment, which must belong to the path's post.
func (h *Handler) comment(r *http.Request) (*db.Comment, error) {
	post, err := h.posts.PostByID(r.Context(), pathID(r, "post_id"))
	if err != nil {
		return nil, err
	}
	return h.posts.CommentForPost(r.Context(), post.ID, pathID(r, "id"))
}

func (req commentRequest) text() string {
	if req.Text == nil {
		return ""
	}
	return *req.Text
}
