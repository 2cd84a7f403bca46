package user

import (
	"context"

	"gorm.io/gorm"

	"yatube/internal/db"
)

//go:generate mockgen -source=user_repository.go -destination=mock_user_repository.go -package=user

// UserRepository holds every query that touches the users table.
type UserRepository interface {
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByID(ctx context.Context, userID uint) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	UpdateUser(ctx context.Context, user *db.User) error
	CheckUserExists(ctx context.Context, username string) (bool, error)

	// DeleteUser removes the user with every post, comment and follow that depends on it.
	DeleteUser(ctx context.Context, userID uint) error
	ListImagesByAuthor(ctx context.Context, userID uint) ([]string, error)
	ListUsers(ctx context.Context) ([]*db.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, userID uint) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) CheckUserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) DeleteUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&db.Post{}).Select("id").Where("author_id = ?", userID)

		// children first, so the result is the same with or without enforced foreign keys
		if err := tx.Where("post_id IN (?)", authored).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", userID, userID).Delete(&db.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&db.Post{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&db.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) ListImagesByAuthor(ctx context.Context, userID uint) ([]string, error) {
	var images []string
	err := r.db.WithContext(ctx).Model(&db.Post{}).
		Where("author_id = ? AND image <> ''", userID).
		Pluck("image", &images).Error
	return images, err
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*db.User, error) {
	var users []*db.User
	err := r.db.WithContext(ctx).Order("username").Find(&users).Error
	return users, err
}
