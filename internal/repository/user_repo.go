package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// UserRepository exposes the slice of user state the social core owns: the
// ban flag and basic lookups. Profile management lives elsewhere.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	SetBanned(ctx context.Context, id uint, banned bool, reason string, actorID uint) error
	IsBanned(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, err
}

func (r *userRepository) SetBanned(ctx context.Context, id uint, banned bool, reason string, actorID uint) error {
	updates := map[string]interface{}{
		"banned":     banned,
		"ban_reason": "",
		"banned_at":  nil,
		"banned_by_id": nil,
		"updated_at": time.Now().UTC(),
	}
	if banned {
		now := time.Now().UTC()
		updates["ban_reason"] = reason
		updates["banned_at"] = now
		updates["banned_by_id"] = actorID
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) IsBanned(ctx context.Context, id uint) (bool, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("banned").First(&user, id).Error; err != nil {
		return false, err
	}
	return user.Banned, nil
}
