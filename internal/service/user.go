package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrybook/backend/internal/model"
)

// ErrUserNotFound is returned when no user row matches the given id.
var ErrUserNotFound = errors.New("user not found")

// UserService handles user identity records
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser inserts the user or, when a row with the same id already
// exists, updates its profile fields and refreshes updated_at.
func (s *UserService) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	user.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "first_name", "last_name", "profile_image_url", "updated_at",
		}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
