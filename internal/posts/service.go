package posts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/media"
)

// ImageUpload is a file attached to a post form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// PostInput is the editable part of a post.
type PostInput struct {
	Text    string `json:"text" validate:"required"`
	GroupID *uint  `json:"group"`

	Image      *ImageUpload `json:"-"`
	ClearImage bool         `json:"-"`
}

type GroupInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=250,slug"`
	Description string `json:"description" validate:"required"`
}

type PostService interface {
	CreatePost(ctx context.Context, author *db.User, in PostInput) (*db.Post, error)
	EditPost(ctx context.Context, actor *db.User, post *db.Post, in PostInput) (*db.Post, error)
	DeletePost(ctx context.Context, actor *db.User, post *db.Post) error
	PostByAuthor(ctx context.Context, username string, postID uint) (*db.Post, error)
	PostByID(ctx context.Context, postID uint) (*db.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]*db.Post, error)

	CreateComment(ctx context.Context, author *db.User, post *db.Post, text string) (*db.Comment, error)
	EditComment(ctx context.Context, actor *db.User, comment *db.Comment, text string) (*db.Comment, error)
	DeleteComment(ctx context.Context, actor *db.User, comment *db.Comment) error
	CommentForPost(ctx context.Context, postID, commentID uint) (*db.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]*db.Comment, error)

	GroupBySlug(ctx context.Context, slug string) (*db.Group, error)
	GroupByID(ctx context.Context, id uint) (*db.Group, error)
	ListGroups(ctx context.Context) ([]*db.Group, error)
	CreateGroup(ctx context.Context, in GroupInput) (*db.Group, error)
	UpdateGroup(ctx context.Context, group *db.Group, in GroupInput) (*db.Group, error)
	DeleteGroup(ctx context.Context, id uint) error
}

type postService struct {
	posts    Posts
	groups   Groups
	comments Comments
	media    media.Store
	log      *slog.Logger
	now      func() time.Time
}

func NewPostService(p Posts, g Groups, c Comments, store media.Store, log *slog.Logger) PostService {
	return &postService{
		posts:    p,
		groups:   g,
		comments: c,
		media:    store,
		log:      log,
		now:      time.Now,
	}
}

// --------- POSTS ---------

func (s *postService) CreatePost(ctx context.Context, author *db.User, in PostInput) (*db.Post, error) {
	if author == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}

	post := &db.Post{
		Text:     in.Text,
		PubDate:  s.now(),
		AuthorID: author.ID,
		GroupID:  in.GroupID,
	}

	if in.Image != nil {
		fileID, err := s.storeImage(ctx, author, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = fileID
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.dropImage(ctx, post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info("post created", "post_id", post.ID, "author", author.Username)
	return s.PostByID(ctx, post.ID)
}

func (s *postService) EditPost(ctx context.Context, actor *db.User, post *db.Post, in PostInput) (*db.Post, error) {
	if actor == nil {
		return nil, common.ErrUnauthenticated
	}
	if post.AuthorID != actor.ID {
		return nil, common.ErrForbidden
	}
	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}

	previousImage := post.Image
	updated := *post
	updated.Text = in.Text
	updated.GroupID = in.GroupID

	switch {
	case in.Image != nil:
		fileID, err := s.storeImage(ctx, actor, in.Image)
		if err != nil {
			return nil, err
		}
		updated.Image = fileID
	case in.ClearImage:
		updated.Image = ""
	}

	if err := s.posts.UpdatePost(ctx, &updated); err != nil {
		if updated.Image != previousImage {
			s.dropImage(ctx, updated.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if updated.Image != previousImage {
		s.dropImage(ctx, previousImage)
	}

	return s.PostByID(ctx, post.ID)
}

// DeletePost removes the post, its comments and its image. Staff may delete any post.
func (s *postService) DeletePost(ctx context.Context, actor *db.User, post *db.Post) error {
	if actor == nil {
		return common.ErrUnauthenticated
	}
	if post.AuthorID != actor.ID && !actor.IsStaff {
		return common.ErrForbidden
	}

	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return translate(err)
	}
	s.dropImage(ctx, post.Image)

	s.log.Info("post deleted", "post_id", post.ID, "by", actor.Username)
	return nil
}

// PostByAuthor finds a post only under its own author's username.
func (s *postService) PostByAuthor(ctx context.Context, username string, postID uint) (*db.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, translate(err)
	}
	if post.Author.Username != username {
		return nil, common.ErrNotFound
	}
	return post, nil
}

func (s *postService) PostByID(ctx context.Context, postID uint) (*db.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, translate(err)
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, filter PostFilter) ([]*db.Post, error) {
	return s.posts.ListPosts(ctx, filter, 0, -1)
}

func (s *postService) validatePost(ctx context.Context, in *PostInput) error {
	in.Text = strings.TrimSpace(in.Text)
	ve := &common.ValidationError{}
	if err := common.ValidateStruct(in); err != nil {
		fieldErrs, ok := common.IsValidation(err)
		if !ok {
			return err
		}
		ve = fieldErrs
	}

	if in.GroupID != nil {
		if _, err := s.groups.GetGroupByID(ctx, *in.GroupID); err != nil {
			if !db.IsNotFound(err) {
				return fmt.Errorf("load group: %w", err)
			}
			ve.Add("group", fmt.Sprintf("Invalid pk %q - object does not exist.", strconv.FormatUint(uint64(*in.GroupID), 10)))
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func (s *postService) storeImage(ctx context.Context, uploader *db.User, img *ImageUpload) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(img.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	sniffed := http.DetectContentType(head)
	if n == 0 || !common.DetectFileType(sniffed).IsValid() {
		return "", common.NewValidationError("image",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	file, err := s.media.UploadFile(ctx, img.Filename, sniffed, strconv.FormatUint(uint64(uploader.ID), 10),
		io.MultiReader(bytes.NewReader(head), img.Content))
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return file.ID, nil
}

func (s *postService) dropImage(ctx context.Context, fileID string) {
	if fileID == "" {
		return
	}
	if err := s.media.DeleteFile(ctx, fileID); err != nil && !errors.Is(err, media.ErrFileNotFound) {
		s.log.Warn("failed to delete post image", "file_id", fileID, "error", err)
	}
}

// --------- COMMENTS ---------

func (s *postService) CreateComment(ctx context.Context, author *db.User, post *db.Post, text string) (*db.Comment, error) {
	if author == nil {
		return nil, common.ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("text", "This field is required.")
	}

	comment := &db.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
		Created:  s.now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *author
	return comment, nil
}

func (s *postService) EditComment(ctx context.Context, actor *db.User, comment *db.Comment, text string) (*db.Comment, error) {
	if actor == nil {
		return nil, common.ErrUnauthenticated
	}
	if comment.AuthorID != actor.ID {
		return nil, common.ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("text", "This field is required.")
	}

	updated := *comment
	updated.Text = text
	if err := s.comments.UpdateComment(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &updated, nil
}

func (s *postService) DeleteComment(ctx context.Context, actor *db.User, comment *db.Comment) error {
	if actor == nil {
		return common.ErrUnauthenticated
	}
	if comment.AuthorID != actor.ID {
		return common.ErrForbidden
	}
	return translate(s.comments.DeleteComment(ctx, comment.ID))
}

// CommentForPost returns the comment only if it belongs to the post.
func (s *postService) CommentForPost(ctx context.Context, postID, commentID uint) (*db.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, translate(err)
	}
	if comment.PostID != postID {
		return nil, common.ErrNotFound
	}
	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, postID uint) ([]*db.Comment, error) {
	return s.comments.ListComments(ctx, postID, 0, -1)
}

// --------- GROUPS ---------

func (s *postService) GroupBySlug(ctx context.Context, slug string) (*db.Group, error) {
	group, err := s.groups.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, translate(err)
	}
	return group, nil
}

func (s *postService) GroupByID(ctx context.Context, id uint) (*db.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return group, nil
}

func (s *postService) ListGroups(ctx context.Context) ([]*db.Group, error) {
	return s.groups.ListGroups(ctx)
}

func (s *postService) CreateGroup(ctx context.Context, in GroupInput) (*db.Group, error) {
	if err := s.validateGroup(ctx, &in, 0); err != nil {
		return nil, err
	}
	group := &db.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, common.NewValidationError(common.NonFieldErrors, "Group with this title or slug already exists.")
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.log.Info("group created", "slug", group.Slug)
	return group, nil
}

func (s *postService) UpdateGroup(ctx context.Context, group *db.Group, in GroupInput) (*db.Group, error) {
	if err := s.validateGroup(ctx, &in, group.ID); err != nil {
		return nil, err
	}
	updated := *group
	updated.Title = in.Title
	updated.Slug = in.Slug
	updated.Description = in.Description
	if err := s.groups.UpdateGroup(ctx, &updated); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, common.NewValidationError(common.NonFieldErrors, "Group with this title or slug already exists.")
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	return &updated, nil
}

// DeleteGroup keeps the group's posts; they lose their group.
func (s *postService) DeleteGroup(ctx context.Context, id uint) error {
	if err := s.groups.DeleteGroup(ctx, id); err != nil {
		return translate(err)
	}
	s.log.Info("group deleted", "group_id", id)
	return nil
}

func (s *postService) validateGroup(ctx context.Context, in *GroupInput, selfID uint) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if in.Slug == "" && in.Title != "" {
		in.Slug = common.Slugify(in.Title)
	}

	ve := &common.ValidationError{}
	if err := common.ValidateStruct(in); err != nil {
		fieldErrs, ok := common.IsValidation(err)
		if !ok {
			return err
		}
		ve = fieldErrs
	}

	for _, field := range []struct{ column, value string }{{"title", in.Title}, {"slug", in.Slug}} {
		if _, bad := ve.Fields[field.column]; bad {
			continue
		}
		taken, err := s.groups.GroupTaken(ctx, field.column, field.value, selfID)
		if err != nil {
			return fmt.Errorf("check group %s: %w", field.column, err)
		}
		if taken {
			ve.Add(field.column, fmt.Sprintf("group with this %s already exists.", field.column))
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if db.IsNotFound(err) {
		return common.ErrNotFound
	}
	return err
}
