package api

import (
	"net/http"

	"yatube/internal/posts"
)

type groupRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.ListGroups(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]groupJSON, 0, len(list))
	for _, g := range list {
		out = append(out, newGroupJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	group, err := h.posts.CreateGroup(r.Context(), req.input(groupJSON{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGroupJSON(group))
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.posts.GroupByID(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupJSON(group))
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.posts.GroupByID(r.Context(), pathID(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req groupRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var base groupJSON
	if r.Method == http.MethodPatch {
		base = newGroupJSON(group)
	}
	updated, err := h.posts.UpdateGroup(r.Context(), group, req.input(base))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupJSON(updated))
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeleteGroup(r.Context(), pathID(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// input overlays the sent fields on base.
func (req groupRequest) input(base groupJSON) posts.GroupInput {
	in := posts.GroupInput{Title: base.Title, Slug: base.Slug, Description: base.Description}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Slug != nil {
		in.Slug = *req.Slug
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	return in
}
