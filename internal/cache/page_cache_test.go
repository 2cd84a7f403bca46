package cache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/common"
	"yatube/internal/db"
)

func countingHandler(calls *int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, "render %d", n)
	})
}

func TestPageCache_ServesStoredPageUntilExpiry(t *testing.T) {
	var calls int32
	c := NewPageCache(16, 80*time.Millisecond)
	h := c.Handler("index", countingHandler(&calls, http.StatusOK))

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?page=1", nil))
		return rec
	}

	first := get()
	assert.Equal(t, "render 1", first.Body.String())

	second := get()
	assert.Equal(t, "render 1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "render 2", get().Body.String())
}

func TestPageCache_KeyParts(t *testing.T) {
	var calls int32
	c := NewPageCache(16, time.Minute)
	h := c.Handler("index", countingHandler(&calls, http.StatusOK))

	serve := func(r *http.Request) string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Body.String()
	}

	assert.Equal(t, "render 1", serve(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "render 2", serve(httptest.NewRequest(http.MethodGet, "/?page=2", nil)))

	signedIn := httptest.NewRequest(http.MethodGet, "/", nil)
	signedIn = signedIn.WithContext(common.WithUser(signedIn.Context(), &db.User{ID: 4}))
	assert.Equal(t, "render 3", serve(signedIn))

	assert.Equal(t, "render 1", serve(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, 3, c.Len())
}

func TestPageCache_SkipsErrorsAndWrites(t *testing.T) {
	var calls int32
	c := NewPageCache(16, time.Minute)

	notFound := c.Handler("group", countingHandler(&calls, http.StatusNotFound))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		notFound.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/group/none/", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	post := c.Handler("index", countingHandler(&calls, http.StatusOK))
	post.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Zero(t, c.Len())
}

func TestKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/group/cats/?page=3", nil)
	assert.Equal(t, "group|/group/cats/?page=3|0", Key("group", r))
}
