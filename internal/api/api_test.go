package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/follow"
	"yatube/internal/media"
	"yatube/internal/posts"
	"yatube/internal/user"
)

type testAPI struct {
	gdb    *gorm.DB
	tokens *common.TokenIssuer
	users  user.UserService
	posts  posts.PostService
	router *mux.Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := media.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	userRepo := user.NewUserRepository(gdb)
	repo := posts.NewRepository(gdb)
	users := user.NewUserService(userRepo, store, log)
	postSvc := posts.NewPostService(repo, repo, repo, store, log)
	follows := follow.NewFollowService(follow.NewFollowRepository(gdb), userRepo, log)
	tokens := common.NewTokenIssuer("test-secret", time.Minute, time.Hour, time.Hour)

	router := mux.NewRouter().StrictSlash(true)
	NewHandler(postSvc, follows, users, tokens, log).Register(router.PathPrefix("/api/v1").Subrouter())

	return &testAPI{gdb: gdb, tokens: tokens, users: users, posts: postSvc, router: router}
}

func (a *testAPI) user(t *testing.T, username string) *db.User {
	t.Helper()
	u := &db.User{Username: username, PasswordHash: "x"}
	require.NoError(t, a.gdb.Create(u).Error)
	return u
}

func (a *testAPI) post(t *testing.T, author *db.User, text string, group *db.Group) *db.Post {
	t.Helper()
	in := posts.PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := a.posts.CreatePost(context.Background(), author, in)
	require.NoError(t, err)
	return p
}

func (a *testAPI) group(t *testing.T, title, slug string) *db.Group {
	t.Helper()
	g, err := a.posts.CreateGroup(context.Background(), posts.GroupInput{Title: title, Slug: slug, Description: "about " + title})
	require.NoError(t, err)
	return g
}

func (a *testAPI) do(t *testing.T, method, target string, body interface{}, as *db.User) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		pair, err := a.tokens.IssuePair(as.ID, as.Username)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestAPI_Token(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.users.Register(context.Background(), user.SignupInput{
		Username: "alice", Password1: "long-enough-pass", Password2: "long-enough-pass",
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodPost, "/api/v1/token/", map[string]string{"username": "alice", "password": "long-enough-pass"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pair common.TokenPair
	decodeBody(t, rec, &pair)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	rec = a.do(t, http.MethodPost, "/api/v1/token/refresh/", map[string]string{"refresh": pair.Refresh}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]string
	decodeBody(t, rec, &refreshed)
	claims, err := a.tokens.Validate(refreshed["access"], common.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	rec = a.do(t, http.MethodPost, "/api/v1/token/refresh/", map[string]string{"refresh": pair.Access}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/token/", map[string]string{"username": "alice", "password": "wrong-password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/token/", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string][]string
	decodeBody(t, rec, &fields)
	assert.Equal(t, []string{"This field is required."}, fields["username"])
}

func TestAPI_InvalidBearer(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Posts(t *testing.T) {
	a := newTestAPI(t)
	alice := a.user(t, "alice")
	cats := a.group(t, "Cats", "cats")

	rec := a.do(t, http.MethodPost, "/api/v1/posts/", map[string]interface{}{"text": "anon"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/posts/", map[string]interface{}{"text": "hello", "group": cats.ID}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created postJSON
	decodeBody(t, rec, &created)
	assert.Equal(t, "alice", created.Author)
	require.NotNil(t, created.Group)
	assert.Equal(t, cats.ID, *created.Group)
	assert.Nil(t, created.Image)

	a.post(t, alice, "ungrouped", nil)

	rec = a.do(t, http.MethodGet, "/api/v1/posts/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []postJSON
	decodeBody(t, rec, &all)
	assert.Len(t, all, 2)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/?group=%d", cats.ID), nil, nil)
	var filtered []postJSON
	decodeBody(t, rec, &filtered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "hello", filtered[0].Text)

	rec = a.do(t, http.MethodPost, "/api/v1/posts/", map[string]interface{}{"text": ""}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/posts/", map[string]interface{}{"text": "x", "group": 999}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string][]string
	decodeBody(t, rec, &fields)
	assert.Equal(t, []string{`Invalid pk "999" - object does not exist.`}, fields["group"])

	rec = a.do(t, http.MethodGet, "/api/v1/posts/12345/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_PostUpdate(t *testing.T) {
	a := newTestAPI(t)
	alice := a.user(t, "alice")
	bob := a.user(t, "bob")
	cats := a.group(t, "Cats", "cats")
	post := a.post(t, alice, "original", cats)
	target := fmt.Sprintf("/api/v1/posts/%d/", post.ID)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec := a.do(t, method, target, map[string]interface{}{"text": "hijacked"}, bob)
		assert.Equal(t, http.StatusForbidden, rec.Code, method)
	}

	rec := a.do(t, http.MethodPatch, target, map[string]interface{}{"text": "patched"}, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched postJSON
	decodeBody(t, rec, &patched)
	assert.Equal(t, "patched", patched.Text)
	require.NotNil(t, patched.Group)
	assert.True(t, post.PubDate.Equal(patched.PubDate))

	rec = a.do(t, http.MethodPatch, target, map[string]interface{}{"group": nil}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &patched)
	assert.Equal(t, "patched", patched.Text)
	assert.Nil(t, patched.Group)

	rec = a.do(t, http.MethodPut, target, map[string]interface{}{"group": cats.ID}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPatch, target, map[string]interface{}{"group": "cats"}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodDelete, target, nil, alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, target, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Comments(t *testing.T) {
	a := newTestAPI(t)
	alice := a.user(t, "alice")
	bob := a.user(t, "bob")
	post := a.post(t, alice, "hello", nil)
	base := fmt.Sprintf("/api/v1/posts/%d/comments/", post.ID)

	rec := a.do(t, http.MethodPost, base, map[string]interface{}{"text": "first!"}, bob)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created commentJSON
	decodeBody(t, rec, &created)
	assert.Equal(t, "bob", created.Author)
	assert.Equal(t, post.ID, created.Post)

	rec = a.do(t, http.MethodGet, base, nil, nil)
	var list []commentJSON
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	item := fmt.Sprintf("%s%d/", base, created.ID)
	rec = a.do(t, http.MethodPatch, item, map[string]interface{}{"text": "edited"}, alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPatch, item, map[string]interface{}{"text": "edited"}, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &created)
	assert.Equal(t, "edited", created.Text)

	other := a.post(t, alice, "other", nil)
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments/%d/", other.ID, created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, item, nil, bob)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/posts/999/comments/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Groups(t *testing.T) {
	a := newTestAPI(t)
	alice := a.user(t, "alice")

	rec := a.do(t, http.MethodPost, "/api/v1/group/", map[string]interface{}{"title": "Cats", "slug": "cats", "description": "meow"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var g groupJSON
	decodeBody(t, rec, &g)
	assert.Equal(t, "cats", g.Slug)

	rec = a.do(t, http.MethodPost, "/api/v1/group/", map[string]interface{}{"title": "Cats", "slug": "cats", "description": "again"}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/group/%d/", g.ID), map[string]interface{}{"description": "purr"}, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &g)
	assert.Equal(t, "purr", g.Description)
	assert.Equal(t, "Cats", g.Title)

	rec = a.do(t, http.MethodGet, "/api/v1/group/", nil, nil)
	var list []groupJSON
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/group/%d/", g.ID), nil, alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/v1/group/%d/", g.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Follow(t *testing.T) {
	a := newTestAPI(t)
	alice := a.user(t, "alice")
	a.user(t, "bob")
	a.user(t, "carol")

	rec := a.do(t, http.MethodGet, "/api/v1/follow/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/follow/", map[string]string{"author": "alice"}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string][]string
	decodeBody(t, rec, &fields)
	assert.NotEmpty(t, fields[common.NonFieldErrors])

	var count int64
	require.NoError(t, a.gdb.Model(&db.Follow{}).Count(&count).Error)
	assert.Zero(t, count)

	rec = a.do(t, http.MethodPost, "/api/v1/follow/", map[string]string{"author": "bob"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var f followJSON
	decodeBody(t, rec, &f)
	assert.Equal(t, "alice", f.User)
	assert.Equal(t, "bob", f.Author)

	rec = a.do(t, http.MethodPost, "/api/v1/follow/", map[string]string{"author": "bob"}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields = nil
	decodeBody(t, rec, &fields)
	assert.NotEmpty(t, fields[common.NonFieldErrors])

	rec = a.do(t, http.MethodPost, "/api/v1/follow/", map[string]string{"author": "nobody"}, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields = nil
	decodeBody(t, rec, &fields)
	assert.NotEmpty(t, fields["author"])

	rec = a.do(t, http.MethodPost, "/api/v1/follow/", map[string]string{"author": "carol"}, alice)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/follow/?search=car", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []followJSON
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "carol", list[0].Author)
}

func TestOptionalID(t *testing.T) {
	var req postRequest
	require.NoError(t, json.Unmarshal([]byte(`{"text":"x"}`), &req))
	assert.False(t, req.Group.Set)

	req = postRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"group":null}`), &req))
	assert.True(t, req.Group.Set)
	assert.Nil(t, req.Group.Value)

	req = postRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"group":"7"}`), &req))
	require.NotNil(t, req.Group.Value)
	assert.EqualValues(t, 7, *req.Group.Value)

	req = postRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"group":true}`), &req))
	assert.Equal(t, "Incorrect type. Expected pk value, received bool.", req.Group.Invalid())
}
