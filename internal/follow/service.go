package follow

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/common"
	"yatube/internal/db"
)

type FollowService interface {
	Follow(ctx context.Context, actor *db.User, targetUsername string) (*db.Follow, bool, error)
	FollowStrict(ctx context.Context, actor *db.User, targetUsername string) (*db.Follow, error)
	Unfollow(ctx context.Context, actor *db.User, targetUsername string) error
	IsFollowing(ctx context.Context, user, author *db.User) (bool, error)
	ListFollows(ctx context.Context, user *db.User, search string) ([]*db.Follow, error)
	Counts(ctx context.Context, user *db.User) (followers, following int64, err error)
}

type followService struct {
	follows FollowRepository
	users   UserLookup
	log     *slog.Logger
}

func NewFollowService(follows FollowRepository, users UserLookup, log *slog.Logger) FollowService {
	return &followService{follows: follows, users: users, log: log}
}

// Follow subscribes actor to target. Following twice is not an error.
func (s *followService) Follow(ctx context.Context, actor *db.User, targetUsername string) (*db.Follow, bool, error) {
	if actor == nil {
		return nil, false, common.ErrUnauthenticated
	}
	target, err := s.target(ctx, targetUsername)
	if err != nil {
		return nil, false, err
	}
	if target.ID == actor.ID {
		return nil, false, common.ErrSelfFollow
	}

	follow, created, err := s.follows.GetOrCreate(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, false, fmt.Errorf("follow %s: %w", targetUsername, err)
	}
	if created {
		s.log.Info("follow created", "user", actor.Username, "author", target.Username)
	}
	follow.User = *actor
	follow.Author = *target
	return follow, created, nil
}

// FollowStrict is Follow that rejects an existing subscription with ErrAlreadyFollowing.
func (s *followService) FollowStrict(ctx context.Context, actor *db.User, targetUsername string) (*db.Follow, error) {
	follow, created, err := s.Follow(ctx, actor, targetUsername)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, common.ErrAlreadyFollowing
	}
	return follow, nil
}

func (s *followService) Unfollow(ctx context.Context, actor *db.User, targetUsername string) error {
	if actor == nil {
		return common.ErrUnauthenticated
	}
	target, err := s.target(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return nil
	}
	return s.follows.DeleteFollow(ctx, actor.ID, target.ID)
}

func (s *followService) IsFollowing(ctx context.Context, user, author *db.User) (bool, error) {
	if user == nil || author == nil {
		return false, nil
	}
	_, err := s.follows.GetFollow(ctx, user.ID, author.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *followService) ListFollows(ctx context.Context, user *db.User, search string) ([]*db.Follow, error) {
	if user == nil {
		return nil, common.ErrUnauthenticated
	}
	return s.follows.ListFollows(ctx, user.ID, search)
}

func (s *followService) Counts(ctx context.Context, user *db.User) (int64, int64, error) {
	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return 0, 0, err
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

func (s *followService) target(ctx context.Context, username string) (*db.User, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return target, nil
}
