package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lilo-planner/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user when the id is unseen, otherwise merges the
// non-empty profile fields into the existing row. Same id never yields a
// second row.
func (r *UserRepository) Upsert(ctx context.Context, input *model.User) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("id = ?", input.ID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{}
		if input.Email != "" {
			updates["email"] = input.Email
		}
		if input.FirstName != "" {
			updates["first_name"] = input.FirstName
		}
		if input.LastName != "" {
			updates["last_name"] = input.LastName
		}
		if input.College != "" {
			updates["college"] = input.College
		}
		if input.Timezone != "" {
			updates["timezone"] = input.Timezone
		}
		if input.TelegramID != 0 {
			updates["telegram_id"] = input.TelegramID
		}
		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = *input
		if user.Timezone == "" {
			user.Timezone = "UTC"
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// ListWithTelegram returns users reachable over the Telegram gateway.
func (r *UserRepository) ListWithTelegram(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("telegram_id <> 0").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list telegram users: %w", err)
	}
	return users, nil
}
