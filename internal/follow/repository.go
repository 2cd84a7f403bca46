package follow

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/db"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=follow

type FollowRepository interface {
	GetFollow(ctx context.Context, userID, authorID uint) (*db.Follow, error)
	// GetOrCreate reports created=false when the pair already existed, including when a concurrent insert won.
	GetOrCreate(ctx context.Context, userID, authorID uint) (*db.Follow, bool, error)
	DeleteFollow(ctx context.Context, userID, authorID uint) error
	ListFollows(ctx context.Context, userID uint, search string) ([]*db.Follow, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// UserLookup resolves follow targets by username.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) GetFollow(ctx context.Context, userID, authorID uint) (*db.Follow, error) {
	var follow db.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&follow).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) GetOrCreate(ctx context.Context, userID, authorID uint) (*db.Follow, bool, error) {
	existing, err := r.GetFollow(ctx, userID, authorID)
	if err == nil {
		return existing, false, nil
	}
	if !db.IsNotFound(err) {
		return nil, false, err
	}

	follow := &db.Follow{UserID: userID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error; err != nil {
		if !db.IsDuplicateKey(err) {
			return nil, false, err
		}
		existing, err := r.GetFollow(ctx, userID, authorID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return follow, true, nil
}

func (r *followRepository) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&db.Follow{}).Error
}

// ListFollows returns the user's subscriptions; search matches either username.
func (r *followRepository) ListFollows(ctx context.Context, userID uint, search string) ([]*db.Follow, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Author").
		Where("follows.user_id = ?", userID)
	if search != "" {
		pattern := "%" + search + "%"
		matching := r.db.Model(&db.User{}).Select("id").Where("username LIKE ?", pattern)
		q = q.Where(r.db.Where("follows.author_id IN (?)", matching).Or("follows.user_id IN (?)", matching))
	}

	var follows []*db.Follow
	err := q.Order("follows.id").Find(&follows).Error
	return follows, err
}

func (r *followRepository) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Follow{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
