// Package server assembles the HTTP and gRPC entry points.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"yatube/internal/api"
	"yatube/internal/media"
	"yatube/internal/web"
)

// Pinger is satisfied by *sql.DB and the GridFS media store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type pingers []Pinger

// PingAll combines several dependencies into one Pinger that fails on the
// first unreachable one.
func PingAll(ps ...Pinger) Pinger {
	return pingers(ps)
}

func (ps pingers) PingContext(ctx context.Context) error {
	for _, p := range ps {
		if err := p.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NewRouter mounts health, media, the REST API and the pages, in that order,
// so the page catch-all /{username}/ never shadows the others.
func NewRouter(pages *web.Handler, rest *api.Handler, files *media.HTTPServer, db Pinger, log *slog.Logger) http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/health", healthCheckHandler(db)).Methods(http.MethodGet)
	files.Register(router)
	rest.Register(router.PathPrefix("/api/v1").Subrouter())
	pages.Register(router)

	apiCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(router)

	routed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiCORS.ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	})
	return RequestLogger(log)(routed)
}

func healthCheckHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable","service":"yatube"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"yatube"}`))
	}
}
