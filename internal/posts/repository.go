package posts

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/db"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=posts

// PostFilter narrows a post listing. Nil fields are not applied.
type PostFilter struct {
	AuthorID   *uint
	GroupID    *uint
	FollowerID *uint // posts by authors this user follows
	Search     string
}

type Posts interface {
	CreatePost(ctx context.Context, post *db.Post) error
	GetPostByID(ctx context.Context, id uint) (*db.Post, error)
	UpdatePost(ctx context.Context, post *db.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]*db.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
}

type Groups interface {
	CreateGroup(ctx context.Context, group *db.Group) error
	GetGroupByID(ctx context.Context, id uint) (*db.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*db.Group, error)
	UpdateGroup(ctx context.Context, group *db.Group) error
	DeleteGroup(ctx context.Context, id uint) error
	ListGroups(ctx context.Context) ([]*db.Group, error)
	GroupTaken(ctx context.Context, column, value string, excludeID uint) (bool, error)
}

type Comments interface {
	CreateComment(ctx context.Context, comment *db.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*db.Comment, error)
	UpdateComment(ctx context.Context, comment *db.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	ListComments(ctx context.Context, postID uint, offset, limit int) ([]*db.Comment, error)
	CountComments(ctx context.Context, postID uint) (int64, error)
}

// Repository implements Posts, Groups and Comments on one connection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --------- POSTS ---------

func (r *Repository) CreatePost(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *Repository) GetPostByID(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost writes the mutable columns only; pub_date and author never change.
func (r *Repository) UpdatePost(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).
		Model(&db.Post{ID: post.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

func (r *Repository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&db.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]*db.Post, error) {
	var posts []*db.Post
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *Repository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *Repository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&db.Post{})
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.GroupID != nil {
		q = q.Where("group_id = ?", *filter.GroupID)
	}
	if filter.FollowerID != nil {
		following := r.db.Model(&db.Follow{}).Select("author_id").Where("user_id = ?", *filter.FollowerID)
		q = q.Where("author_id IN (?)", following)
	}
	if filter.Search != "" {
		q = q.Where("text LIKE ?", "%"+filter.Search+"%")
	}
	return q
}

// --------- GROUPS ---------

func (r *Repository) CreateGroup(ctx context.Context, group *db.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *Repository) GetGroupByID(ctx context.Context, id uint) (*db.Group, error) {
	var group db.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *Repository) GetGroupBySlug(ctx context.Context, slug string) (*db.Group, error) {
	var group db.Group
	if err := r.db.WithContext(ctx).First(&group, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *Repository) UpdateGroup(ctx context.Context, group *db.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// DeleteGroup detaches the group's posts before removing it.
func (r *Repository) DeleteGroup(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&db.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error
		if err != nil {
			return err
		}
		res := tx.Delete(&db.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) ListGroups(ctx context.Context) ([]*db.Group, error) {
	var groups []*db.Group
	err := r.db.WithContext(ctx).Order("title").Find(&groups).Error
	return groups, err
}

// GroupTaken reports whether another group already uses value in column (title or slug).
func (r *Repository) GroupTaken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&db.Group{}).Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// --------- COMMENTS ---------

func (r *Repository) CreateComment(ctx context.Context, comment *db.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *Repository) GetCommentByID(ctx context.Context, id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment rewrites the text only.
func (r *Repository) UpdateComment(ctx context.Context, comment *db.Comment) error {
	return r.db.WithContext(ctx).
		Model(&db.Comment{ID: comment.ID}).
		Update("text", comment.Text).Error
}

func (r *Repository) DeleteComment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&db.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListComments returns a post's comments newest first; a negative limit returns all of them.
func (r *Repository) ListComments(ctx context.Context, postID uint, offset, limit int) ([]*db.Comment, error) {
	var comments []*db.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *Repository) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
