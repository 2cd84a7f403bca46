// Package cache keeps rendered listing pages for a short, fixed time.
// Entries are never invalidated by writes; they only expire.
package cache

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"yatube/internal/common"
)

// Entry is a stored response.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

type PageCache struct {
	lru *expirable.LRU[string, *Entry]
}

func NewPageCache(size int, ttl time.Duration) *PageCache {
	if size < 1 {
		size = 1
	}
	return &PageCache{lru: expirable.NewLRU[string, *Entry](size, nil, ttl)}
}

func (c *PageCache) Get(key string) (*Entry, bool) {
	return c.lru.Get(key)
}

func (c *PageCache) Set(key string, e *Entry) {
	c.lru.Add(key, e)
}

func (c *PageCache) Len() int {
	return c.lru.Len()
}

func (c *PageCache) Purge() {
	c.lru.Purge()
}

// headers that belong to one request and are never replayed from the cache
var perRequestHeaders = []string{"X-Request-ID", "Set-Cookie", "X-Cache"}

// Key identifies a rendered page: the view, the path with its query and the viewer.
func Key(view string, r *http.Request) string {
	viewer := "0"
	if u := common.UserFromContext(r.Context()); u != nil {
		viewer = strconv.FormatUint(uint64(u.ID), 10)
	}
	return view + "|" + r.URL.Path + "?" + r.URL.RawQuery + "|" + viewer
}

// Handler serves GET requests for view from the cache and stores fresh 200 responses.
func (c *PageCache) Handler(view string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := Key(view, r)
		if e, ok := c.Get(key); ok {
			for k, v := range e.Header {
				w.Header()[k] = v
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(e.Status)
			_, _ = w.Write(e.Body)
			return
		}

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status == http.StatusOK {
			header := rec.Header().Clone()
			for _, h := range perRequestHeaders {
				header.Del(h)
			}
			c.Set(key, &Entry{
				Status: rec.status,
				Header: header,
				Body:   rec.body.Bytes(),
			})
		}
	})
}

// recorder writes through to the client while keeping a copy of the body.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
