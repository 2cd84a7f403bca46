// Package web serves the HTML pages.
package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"yatube/internal/cache"
	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/feed"
	"yatube/internal/follow"
	"yatube/internal/posts"
	"yatube/internal/user"
)

type Handler struct {
	posts     posts.PostService
	feed      feed.FeedUsecase
	follows   follow.FollowService
	users     user.UserService
	sessions  *Sessions
	cache     *cache.PageCache
	render    *Renderer
	log       *slog.Logger
	maxUpload int64
}

func NewHandler(
	postSvc posts.PostService,
	feedSvc feed.FeedUsecase,
	followSvc follow.FollowService,
	userSvc user.UserService,
	sessions *Sessions,
	pageCache *cache.PageCache,
	renderer *Renderer,
	log *slog.Logger,
	maxUploadMB int,
) *Handler {
	return &Handler{
		posts:     postSvc,
		feed:      feedSvc,
		follows:   followSvc,
		users:     userSvc,
		sessions:  sessions,
		cache:     pageCache,
		render:    renderer,
		log:       log,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Register mounts the page routes. Fixed paths go first so they win over /{username}/.
func (h *Handler) Register(router *mux.Router) {
	get := []string{http.MethodGet}
	form := []string{http.MethodGet, http.MethodPost}
	// state changes only on POST so a cross-site link cannot trigger them
	post := []string{http.MethodPost}

	h.handle(router, "/", h.cache.Handler("index", http.HandlerFunc(h.index)), get)
	h.handle(router, "/group/{slug}/", h.cache.Handler("group", http.HandlerFunc(h.groupPosts)), get)
	h.handle(router, "/new/", h.requireLogin(http.HandlerFunc(h.newPost)), form)
	h.handle(router, "/follow/", h.requireLogin(h.cache.Handler("follow", http.HandlerFunc(h.followIndex))), get)

	h.handle(router, "/about/author/", h.static("about/author.html"), get)
	h.handle(router, "/about/tech/", h.static("about/tech.html"), get)

	h.handle(router, "/auth/login/", http.HandlerFunc(h.login), form)
	h.handle(router, "/auth/logout/", http.HandlerFunc(h.logout), post)
	h.handle(router, "/auth/signup/", http.HandlerFunc(h.signup), form)

	h.handle(router, "/{username}/", http.HandlerFunc(h.profile), get)
	h.handle(router, "/{username}/follow/", h.requireLogin(http.HandlerFunc(h.profileFollow)), post)
	h.handle(router, "/{username}/unfollow/", h.requireLogin(http.HandlerFunc(h.profileUnfollow)), post)
	h.handle(router, "/{username}/{post_id:[0-9]+}/", http.HandlerFunc(h.postView), get)
	h.handle(router, "/{username}/{post_id:[0-9]+}/edit/", http.HandlerFunc(h.postEdit), form)
	h.handle(router, "/{username}/{post_id:[0-9]+}/delete/", http.HandlerFunc(h.postDelete), post)
	h.handle(router, "/{username}/{post_id:[0-9]+}/comment/", h.requireLogin(http.HandlerFunc(h.addComment)), form)
	h.handle(router, "/{username}/{post_id:[0-9]+}/{comment_id:[0-9]+}/delete_comment/", h.requireLogin(http.HandlerFunc(h.deleteComment)), post)

	router.NotFoundHandler = h.Recoverer(h.sessions.Middleware(http.HandlerFunc(h.notFoundPage)))
}

// handle wraps a page in panic recovery and the session lookup. The session runs
// before the page cache so cached pages are keyed by viewer.
func (h *Handler) handle(router *mux.Router, path string, next http.Handler, methods []string) {
	router.Handle(path, h.Recoverer(h.sessions.Middleware(next))).Methods(methods...)
}

// --------- LISTINGS ---------

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	list, err := h.feed.GlobalFeed(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, http.StatusOK, "index.html", map[string]interface{}{"Page": list})
}

func (h *Handler) groupPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.feed.GroupFeed(r.Context(), mux.Vars(r)["slug"], r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, http.StatusOK, "group.html", map[string]interface{}{
		"Group": list.Group,
		"Page":  &list.PostPage,
	})
}

func (h *Handler) followIndex(w http.ResponseWriter, r *http.Request) {
	list, err := h.feed.FollowFeed(r.Context(), common.UserFromContext(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, http.StatusOK, "follow.html", map[string]interface{}{"Page": list})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	viewer := common.UserFromContext(r.Context())
	profile, err := h.feed.ProfileFeed(r.Context(), viewer, mux.Vars(r)["username"], r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, http.StatusOK, "posts/profile.html", map[string]interface{}{"Profile": profile})
}

func (h *Handler) postView(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookupPost(w, r)
	if !ok {
		return
	}
	h.renderPost(w, r, post, "", nil)
}

func (h *Handler) renderPost(w http.ResponseWriter, r *http.Request, post *db.Post, commentText string, errs map[string][]string) {
	comments, err := h.feed.PostComments(r.Context(), post, r.URL.Query().Get("page"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count, err := h.feed.AuthorPostCount(r.Context(), post.AuthorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := map[string]interface{}{
		"Post":        post,
		"PostCount":   count,
		"Comments":    comments,
		"CommentText": commentText,
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.page(w, r, http.StatusOK, "posts/post.html", data)
}

// --------- POSTS ---------

type postForm struct {
	Text  string
	Group string
}

func (h *Handler) newPost(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPostForm(w, r, postForm{}, nil, "", false)
		return
	}

	form, in, err := h.readPostForm(w, r)
	defer closeUpload(r, in)
	if err == nil {
		_, err = h.posts.CreatePost(r.Context(), common.UserFromContext(r.Context()), in)
	}
	if ve, ok := common.IsValidation(err); ok {
		h.renderPostForm(w, r, form, ve.Fields, "", false)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) postEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookupPost(w, r)
	if !ok {
		return
	}
	viewer := common.UserFromContext(r.Context())
	if viewer == nil || viewer.ID != post.AuthorID {
		h.redirectToPost(w, r, post)
		return
	}

	if r.Method == http.MethodGet {
		form := postForm{Text: post.Text}
		if post.GroupID != nil {
			form.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		h.renderPostForm(w, r, form, nil, post.Image, true)
		return
	}

	form, in, err := h.readPostForm(w, r)
	defer closeUpload(r, in)
	if err == nil {
		_, err = h.posts.EditPost(r.Context(), viewer, post, in)
	}
	if ve, ok := common.IsValidation(err); ok {
		h.renderPostForm(w, r, form, ve.Fields, post.Image, true)
		return
	}
	if errors.Is(err, common.ErrForbidden) {
		h.redirectToPost(w, r, post)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.redirectToPost(w, r, post)
}

func (h *Handler) postDelete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookupPost(w, r)
	if !ok {
		return
	}
	err := h.posts.DeletePost(r.Context(), common.UserFromContext(r.Context()), post)
	switch {
	case errors.Is(err, common.ErrForbidden), errors.Is(err, common.ErrUnauthenticated):
		h.redirectToPost(w, r, post)
	case err != nil:
		h.fail(w, r, err)
	default:
		http.Redirect(w, r, "/"+post.Author.Username+"/", http.StatusFound)
	}
}

func (h *Handler) readPostForm(w http.ResponseWriter, r *http.Request) (postForm, posts.PostInput, error) {
	if err := h.parseForm(w, r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return postForm{}, posts.PostInput{}, common.NewValidationError("image",
				fmt.Sprintf("The uploaded file is too large. The limit is %d MB.", h.maxUpload>>20))
		}
		return postForm{}, posts.PostInput{}, common.NewValidationError(common.NonFieldErrors, "The submitted form could not be read.")
	}

	form := postForm{Text: r.PostFormValue("text"), Group: r.PostFormValue("group")}
	in := posts.PostInput{Text: form.Text, ClearImage: r.PostFormValue("image-clear") != ""}

	if form.Group != "" {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			return form, in, common.NewValidationError("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		groupID := uint(id)
		in.GroupID = &groupID
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			in.Image = &posts.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Content:     file,
			}
		}
	}
	return form, in, nil
}

// closeUpload releases the uploaded image and any temporary files of the form.
func closeUpload(r *http.Request, in posts.PostInput) {
	if in.Image != nil {
		if c, ok := in.Image.Content.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, form postForm, errs map[string][]string, currentImage string, isEdit bool) {
	groups, err := h.posts.ListGroups(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := map[string]interface{}{
		"Form":         form,
		"Groups":       groups,
		"CurrentImage": currentImage,
		"IsEdit":       isEdit,
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.page(w, r, http.StatusOK, "posts/new_post.html", data)
}

// --------- COMMENTS ---------

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookupPost(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		if err := h.parseForm(w, r); err != nil {
			h.redirectToPost(w, r, post)
			return
		}
		_, err := h.posts.CreateComment(r.Context(), common.UserFromContext(r.Context()), post, r.PostFormValue("text"))
		if _, invalid := common.IsValidation(err); err != nil && !invalid {
			h.fail(w, r, err)
			return
		}
	}
	h.redirectToPost(w, r, post)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	post, ok := h.lookupPost(w, r)
	if !ok {
		return
	}
	commentID, _ := strconv.ParseUint(mux.Vars(r)["comment_id"], 10, 64)
	comment, err := h.posts.CommentForPost(r.Context(), post.ID, uint(commentID))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	err = h.posts.DeleteComment(r.Context(), common.UserFromContext(r.Context()), comment)
	if err != nil && !errors.Is(err, common.ErrForbidden) {
		h.fail(w, r, err)
		return
	}
	h.redirectToPost(w, r, post)
}

// --------- FOLLOW ---------

func (h *Handler) profileFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	_, _, err := h.follows.Follow(r.Context(), common.UserFromContext(r.Context()), username)
	if err != nil && !errors.Is(err, common.ErrSelfFollow) {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+username+"/", http.StatusFound)
}

func (h *Handler) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := h.follows.Unfollow(r.Context(), common.UserFromContext(r.Context()), username); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/"+username+"/", http.StatusFound)
}

// --------- AUTH ---------

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if r.Method == http.MethodGet {
		h.page(w, r, http.StatusOK, "auth/login.html", map[string]interface{}{"Next": next})
		return
	}

	if err := h.parseForm(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	username := r.PostFormValue("username")
	if formNext := r.PostFormValue("next"); formNext != "" {
		next = formNext
	}

	u, err := h.users.Authenticate(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, user.ErrInvalidCredentials) {
		h.page(w, r, http.StatusOK, "auth/login.html", map[string]interface{}{
			"Next":     next,
			"Username": username,
			"Failed":   true,
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.sessions.Login(w, u.ID, u.Username); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user logged in", "username", u.Username)
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.page(w, r, http.StatusOK, "auth/signup.html", map[string]interface{}{"Form": user.SignupInput{}})
		return
	}

	if err := h.parseForm(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	in := user.SignupInput{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	_, err := h.users.Register(r.Context(), in)
	if ve, ok := common.IsValidation(err); ok {
		in.Password1, in.Password2 = "", ""
		h.page(w, r, http.StatusOK, "auth/signup.html", map[string]interface{}{"Form": in, "Errors": ve.Fields})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/auth/login/", http.StatusFound)
}

// --------- HELPERS ---------

func (h *Handler) static(page string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.page(w, r, http.StatusOK, page, nil)
	})
}

// requireLogin sends anonymous visitors to the login page with a way back.
func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if common.UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.EscapedPath()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) lookupPost(w http.ResponseWriter, r *http.Request) (*db.Post, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["post_id"], 10, 64)
	if err != nil {
		h.notFoundPage(w, r)
		return nil, false
	}
	post, err := h.posts.PostByAuthor(r.Context(), vars["username"], uint(id))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return post, true
}

func (h *Handler) redirectToPost(w http.ResponseWriter, r *http.Request, post *db.Post) {
	http.Redirect(w, r, "/"+post.Author.Username+"/"+strconv.FormatUint(uint64(post.ID), 10)+"/", http.StatusFound)
}

// formOverhead is room for the text fields next to an upload of maxUpload bytes.
const formOverhead = 1 << 20

// parseForm caps the whole body at the upload limit plus formOverhead.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	err := r.ParseMultipartForm(h.maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	if err := h.render.Render(w, r, status, name, data); err != nil {
		h.log.Error("template failed", "template", name, "error", err, "request_id", common.RequestIDFromContext(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrNotFound) {
		h.notFoundPage(w, r)
		return
	}
	h.ServerError(w, r, err)
}

func (h *Handler) notFoundPage(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, "misc/404.html", map[string]interface{}{"Path": r.URL.Path})
}

// ServerError logs err and renders the 500 page.
func (h *Handler) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", common.RequestIDFromContext(r.Context()),
	)
	h.page(w, r, http.StatusInternalServerError, "misc/500.html", nil)
}

// Recoverer turns a panic in a page handler into the 500 page.
func (h *Handler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.ServerError(w, r, panicError{rec})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type panicError struct{ value interface{} }

func (p panicError) Error() string {
	return "panic: " + strings.TrimSpace(stringify(p.value))
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case string:
		return x
	}
	return "unexpected value"
}

// safeNext only follows local redirects.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
