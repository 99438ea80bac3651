package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// FollowService maintains the follow graph the feed assembler reads from.
type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
}

type followService struct {
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifications NotificationService
	logger        zerolog.Logger
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, notifications NotificationService, logger zerolog.Logger) FollowService {
	return &followService{
		follows:       follows,
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "follow_service").Logger(),
	}
}

// Follow is idempotent: repeating it is a no-op and dispatches nothing.
func (s *followService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followeeID == 0 || followeeID == followerID {
		return ErrValidation
	}

	followee, err := s.users.FindByID(ctx, followeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find followee: %w", err)
	}
	if followee.Banned {
		return ErrNotFound
	}

	created, err := s.follows.Follow(ctx, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	if !created {
		return nil
	}

	if err := s.notifications.Dispatch(ctx, followeeID, followerID, models.NotificationKindFollow, "user", followerID); err != nil {
		s.logger.Warn().Err(err).Uint("followee_id", followeeID).Msg("failed to dispatch follow notification")
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followeeID == 0 || followeeID == followerID {
		return ErrValidation
	}
	if _, err := s.follows.Unfollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

func (s *followService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.follows.IsFollowing(ctx, followerID, followeeID)
}
