// Package feed builds the paginated post and comment listings.
package feed

import (
	"context"
	"fmt"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/follow"
	"yatube/internal/posts"
)

type PostPage struct {
	Page
	Posts []*db.Post
}

type GroupPage struct {
	PostPage
	Group *db.Group
}

type ProfilePage struct {
	PostPage
	Author         *db.User
	PostCount      int64
	Following      bool
	FollowerCount  int64
	FollowingCount int64
}

type CommentPage struct {
	Page
	Comments []*db.Comment
}

type FeedUsecase interface {
	GlobalFeed(ctx context.Context, page string) (*PostPage, error)
	GroupFeed(ctx context.Context, slug, page string) (*GroupPage, error)
	ProfileFeed(ctx context.Context, viewer *db.User, username, page string) (*ProfilePage, error)
	FollowFeed(ctx context.Context, viewer *db.User, page string) (*PostPage, error)
	PostComments(ctx context.Context, post *db.Post, page string) (*CommentPage, error)
	AuthorPostCount(ctx context.Context, authorID uint) (int64, error)
}

var _ FeedUsecase = (*FeedService)(nil)

type FeedService struct {
	posts    posts.Posts
	groups   posts.Groups
	comments posts.Comments
	users    follow.UserLookup
	follows  follow.FollowService
}

func NewFeedService(p posts.Posts, g posts.Groups, c posts.Comments, users follow.UserLookup, follows follow.FollowService) *FeedService {
	return &FeedService{
		posts:    p,
		groups:   g,
		comments: c,
		users:    users,
		follows:  follows,
	}
}

func (s *FeedService) GlobalFeed(ctx context.Context, page string) (*PostPage, error) {
	return s.listPosts(ctx, posts.PostFilter{}, PostsPerPage, page)
}

func (s *FeedService) GroupFeed(ctx context.Context, slug, page string) (*GroupPage, error) {
	group, err := s.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	list, err := s.listPosts(ctx, posts.PostFilter{GroupID: &group.ID}, PostsPerPage, page)
	if err != nil {
		return nil, err
	}
	return &GroupPage{PostPage: *list, Group: group}, nil
}

// ProfileFeed lists an author's posts. Following is only set for a signed-in viewer.
func (s *FeedService) ProfileFeed(ctx context.Context, viewer *db.User, username, page string) (*ProfilePage, error) {
	author, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	list, err := s.listPosts(ctx, posts.PostFilter{AuthorID: &author.ID}, ProfilePerPage, page)
	if err != nil {
		return nil, err
	}

	profile := &ProfilePage{PostPage: *list, Author: author, PostCount: list.Total}
	if profile.Following, err = s.follows.IsFollowing(ctx, viewer, author); err != nil {
		return nil, err
	}
	if profile.FollowerCount, profile.FollowingCount, err = s.follows.Counts(ctx, author); err != nil {
		return nil, err
	}
	return profile, nil
}

// FollowFeed lists posts by every author the viewer follows.
func (s *FeedService) FollowFeed(ctx context.Context, viewer *db.User, page string) (*PostPage, error) {
	if viewer == nil {
		return nil, common.ErrUnauthenticated
	}
	return s.listPosts(ctx, posts.PostFilter{FollowerID: &viewer.ID}, PostsPerPage, page)
}

func (s *FeedService) PostComments(ctx context.Context, post *db.Post, page string) (*CommentPage, error) {
	total, err := s.comments.CountComments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	p := Paginate(total, CommentsPerPage, page)
	comments, err := s.comments.ListComments(ctx, post.ID, p.Offset, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &CommentPage{Page: p, Comments: comments}, nil
}

func (s *FeedService) AuthorPostCount(ctx context.Context, authorID uint) (int64, error) {
	return s.posts.CountPosts(ctx, posts.PostFilter{AuthorID: &authorID})
}

func (s *FeedService) listPosts(ctx context.Context, filter posts.PostFilter, size int, page string) (*PostPage, error) {
	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	p := Paginate(total, size, page)
	list, err := s.posts.ListPosts(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &PostPage{Page: p, Posts: list}, nil
}

func notFound(err error) error {
	if db.IsNotFound(err) {
		return common.ErrNotFound
	}
	return err
}
