package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yatube/internal/common"
	"yatube/internal/db"
	"yatube/internal/media"
)

var ErrInvalidCredentials = errors.New("no active account found with the given credentials")

// SignupInput is the signup form, also accepted as JSON.
type SignupInput struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password1 string `json:"password1" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

type UserService interface {
	Register(ctx context.Context, in SignupInput) (*db.User, error)
	Authenticate(ctx context.Context, username, password string) (*db.User, error)
	GetByID(ctx context.Context, userID uint) (*db.User, error)
	GetByUsername(ctx context.Context, username string) (*db.User, error)
	ListUsers(ctx context.Context) ([]*db.User, error)
	DeleteUser(ctx context.Context, username string) error
	SetStaff(ctx context.Context, username string, staff bool) error
}

type userService struct {
	userRepo UserRepository
	media    media.Store
	log      *slog.Logger
}

func NewUserService(userRepo UserRepository, store media.Store, log *slog.Logger) UserService {
	return &userService{userRepo: userRepo, media: store, log: log}
}

func (s *userService) Register(ctx context.Context, in SignupInput) (*db.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := common.ValidateStruct(in); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.CheckUserExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, common.NewValidationError("username", "A user with that username already exists.")
	}

	hashed, err := common.HashPassword(in.Password1)
	if errors.Is(err, common.ErrPasswordTooLong) {
		return nil, common.NewValidationError("password1", "Ensure this field has no more than 72 characters.")
	}
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Username:     in.Username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PasswordHash: hashed,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, common.NewValidationError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "username", user.Username, "user_id", user.ID)
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, common.ErrPasswordMismatch) {
			s.log.Warn("stored password hash is unreadable", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if common.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}
	return user, nil
}

// upgradeHash re-hashes a password stored with an outdated cost. Failures are
// logged and never block the login.
func (s *userService) upgradeHash(ctx context.Context, user *db.User, password string) {
	hashed, err := common.HashPassword(password)
	if err != nil {
		s.log.Warn("rehash password", "user_id", user.ID, "error", err)
		return
	}
	updated := *user
	updated.PasswordHash = hashed
	if err := s.userRepo.UpdateUser(ctx, &updated); err != nil {
		s.log.Warn("store rehashed password", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hashed
}

func (s *userService) GetByID(ctx context.Context, userID uint) (*db.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	return user, translate(err)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	return user, translate(err)
}

func (s *userService) ListUsers(ctx context.Context) ([]*db.User, error) {
	return s.userRepo.ListUsers(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}

	images, err := s.userRepo.ListImagesByAuthor(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}

	if err := s.userRepo.DeleteUser(ctx, user.ID); err != nil {
		return translate(err)
	}

	// image cleanup is best effort
	for _, image := range images {
		if err := s.media.DeleteFile(ctx, image); err != nil && !errors.Is(err, media.ErrFileNotFound) {
			s.log.Warn("failed to delete post image", "file_id", image, "error", err)
		}
	}

	s.log.Info("user deleted", "username", username, "images", len(images))
	return nil
}

func (s *userService) SetStaff(ctx context.Context, username string, staff bool) error {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return translate(err)
	}
	user.IsStaff = staff
	return s.userRepo.UpdateUser(ctx, user)
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
