package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"yatube/internal/api"
	"yatube/internal/cache"
	"yatube/internal/common"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/dbmongo"
	"yatube/internal/feed"
	"yatube/internal/follow"
	"yatube/internal/media"
	"yatube/internal/posts"
	"yatube/internal/server"
	"yatube/internal/user"
	"yatube/internal/web"
)

// Application is everything cmd/yatube needs to run.
type Application struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB
	HTTP   http.Handler
	GRPC   *server.GRPCServer
}

// Admin is the service set used by cmd/yatube-admin.
type Admin struct {
	Config *config.Config
	Log    *slog.Logger
	Users  user.UserService
	Posts  posts.PostService
}

func ProvideConfig() *config.Config {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	log, err := common.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	gdb, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return gdb, cleanup, nil
}

// ProvidePinger checks the SQL database, plus MongoDB when images live in GridFS.
func ProvidePinger(gdb *gorm.DB, store media.Store) (server.Pinger, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	if p, ok := store.(server.Pinger); ok {
		return server.PingAll(sqlDB, p), nil
	}
	return sqlDB, nil
}

// ProvideMediaStore picks the image backend: files under Media.Root, or GridFS.
func ProvideMediaStore(cfg *config.Config, log *slog.Logger) (media.Store, func(), error) {
	switch cfg.Media.Backend {
	case "gridfs":
		client, err := dbmongo.Connect(context.Background(), cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("media stored in gridfs", "bucket", cfg.MongoDB.Bucket)
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(ctx)
		}
		return dbmongo.NewMediaStorage(client), cleanup, nil
	case "disk", "":
		store, err := media.NewDiskStorage(cfg.Media.Root)
		if err != nil {
			return nil, nil, err
		}
		log.Info("media stored on disk", "root", cfg.Media.Root)
		return store, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported media backend %q", cfg.Media.Backend)
}

func ProvideUserLookup(repo user.UserRepository) follow.UserLookup {
	return repo
}

func ProvideTokenIssuer(cfg *config.Config) *common.TokenIssuer {
	return common.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.SessionTTL)
}

func ProvidePageCache(cfg *config.Config) *cache.PageCache {
	return cache.NewPageCache(cfg.Cache.Size, cfg.Cache.TTL)
}

func ProvideRenderer(cfg *config.Config) (*web.Renderer, error) {
	return web.NewRenderer(cfg.Server.TemplatesDir)
}

func ProvideSessions(cfg *config.Config, tokens *common.TokenIssuer, users user.UserService, log *slog.Logger) *web.Sessions {
	return web.NewSessions(tokens, users, cfg.Auth.CookieName, cfg.Server.Environment == "production", log)
}

func ProvideWebHandler(
	cfg *config.Config,
	postSvc posts.PostService,
	feeds feed.FeedUsecase,
	follows follow.FollowService,
	users user.UserService,
	sessions *web.Sessions,
	pageCache *cache.PageCache,
	renderer *web.Renderer,
	log *slog.Logger,
) *web.Handler {
	return web.NewHandler(postSvc, feeds, follows, users, sessions, pageCache, renderer, log, cfg.Media.MaxUploadMB)
}

func ProvideAPIHandler(postSvc posts.PostService, follows follow.FollowService, users user.UserService, tokens *common.TokenIssuer, log *slog.Logger) *api.Handler {
	return api.NewHandler(postSvc, follows, users, tokens, log)
}
