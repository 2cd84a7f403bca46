// Package api is the JSON REST interface under /api/v1.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"yatube/internal/common"
	"yatube/internal/follow"
	"yatube/internal/posts"
	"yatube/internal/user"
)

type Handler struct {
	posts   posts.PostService
	follows follow.FollowService
	users   user.UserService
	tokens  *common.TokenIssuer
	log     *slog.Logger
}

func NewHandler(postSvc posts.PostService, followSvc follow.FollowService, userSvc user.UserService, tokens *common.TokenIssuer, log *slog.Logger) *Handler {
	return &Handler{
		posts:   postSvc,
		follows: followSvc,
		users:   userSvc,
		tokens:  tokens,
		log:     log,
	}
}

// Register mounts the API on router, which is expected to be the /api/v1 subrouter.
func (h *Handler) Register(router *mux.Router) {
	router.Use(h.Authenticate)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, msgNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method \""+r.Method+"\" not allowed.")
	})

	router.HandleFunc("/token/", h.obtainToken).Methods(http.MethodPost)
	router.HandleFunc("/token/refresh/", h.refreshToken).Methods(http.MethodPost)

	router.Handle("/posts/", writesNeedAuth(http.HandlerFunc(h.listPosts))).Methods(http.MethodGet)
	router.Handle("/posts/", writesNeedAuth(http.HandlerFunc(h.createPost))).Methods(http.MethodPost)
	router.Handle("/posts/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.getPost))).Methods(http.MethodGet)
	router.Handle("/posts/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.updatePost))).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/posts/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.deletePost))).Methods(http.MethodDelete)

	router.Handle("/posts/{post_id:[0-9]+}/comments/", writesNeedAuth(http.HandlerFunc(h.listComments))).Methods(http.MethodGet)
	router.Handle("/posts/{post_id:[0-9]+}/comments/", writesNeedAuth(http.HandlerFunc(h.createComment))).Methods(http.MethodPost)
	router.Handle("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.getComment))).Methods(http.MethodGet)
	router.Handle("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.updateComment))).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.deleteComment))).Methods(http.MethodDelete)

	router.Handle("/group/", writesNeedAuth(http.HandlerFunc(h.listGroups))).Methods(http.MethodGet)
	router.Handle("/group/", writesNeedAuth(http.HandlerFunc(h.createGroup))).Methods(http.MethodPost)
	router.Handle("/group/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.getGroup))).Methods(http.MethodGet)
	router.Handle("/group/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.updateGroup))).Methods(http.MethodPut, http.MethodPatch)
	router.Handle("/group/{id:[0-9]+}/", writesNeedAuth(http.HandlerFunc(h.deleteGroup))).Methods(http.MethodDelete)

	router.Handle("/follow/", needAuth(http.HandlerFunc(h.listFollows))).Methods(http.MethodGet)
	router.Handle("/follow/", needAuth(http.HandlerFunc(h.createFollow))).Methods(http.MethodPost)
}

func pathID(r *http.Request, name string) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	return uint(id)
}
