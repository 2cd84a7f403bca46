//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"yatube/internal/feed"
	"yatube/internal/follow"
	"yatube/internal/media"
	"yatube/internal/posts"
	"yatube/internal/server"
	"yatube/internal/user"
)

var storageSet = wire.NewSet(
	ProvideDatabase,
	ProvideMediaStore,
	user.NewUserRepository,
	posts.NewRepository,
	follow.NewFollowRepository,
	ProvideUserLookup,
	wire.Bind(new(posts.Posts), new(*posts.Repository)),
	wire.Bind(new(posts.Groups), new(*posts.Repository)),
	wire.Bind(new(posts.Comments), new(*posts.Repository)),
)

var serviceSet = wire.NewSet(
	user.NewUserService,
	posts.NewPostService,
	follow.NewFollowService,
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		storageSet,
		serviceSet,
		feed.NewFeedService,
		wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
		ProvideTokenIssuer,
		ProvidePageCache,
		ProvideRenderer,
		ProvideSessions,
		ProvideWebHandler,
		ProvideAPIHandler,
		media.NewHTTPServer,
		ProvidePinger,
		server.NewRouter,
		server.NewGRPCServer,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}

func InitializeAdmin() (*Admin, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		storageSet,
		serviceSet,
		wire.Struct(new(Admin), "*"),
	)
	return nil, nil, nil
}
