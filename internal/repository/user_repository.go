package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careercompass/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, skills []string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Roadmap").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Roadmap").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkGoogleID attaches a Google subject to an account that has none yet.
func (r *userRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND google_id IS NULL", id).
		Update("google_id", googleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateProfile marks the profile completed and replaces the skills list.
func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, skills []string) error {
	res := r.db.WithContext(ctx).Model(&model.User{ID: id}).
		Select("profile_completed", "skills").
		Updates(&model.User{ProfileCompleted: true, Skills: skills})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
