package services

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

type FollowAction string

const (
	ActionFollow   FollowAction = "follow"
	ActionUnfollow FollowAction = "unfollow"
)

type FollowService struct {
	db      *gorm.DB
	counter FollowCounter
}

func NewFollowService(db *gorm.DB, counter FollowCounter) *FollowService {
	return &FollowService{db: db, counter: counter}
}

// Toggle applies action from requester to the account with accountID.
// Both directions are idempotent. The result reports whether requester
// follows the target afterwards.
func (s *FollowService) Toggle(ctx context.Context, requester *models.Profile, accountID uint, action FollowAction) (bool, error) {
	if requester == nil {
		return false, ErrAuthenticationRequired
	}

	var target models.Profile
	err := s.db.WithContext(ctx).Preload("Account").Where("account_id = ?", accountID).First(&target).Error
	if err != nil {
		if isNotFound(err) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to find profile: %w", err)
	}

	switch action {
	case ActionFollow:
		return true, s.Follow(ctx, requester, &target)
	case ActionUnfollow:
		return false, s.Unfollow(ctx, requester, &target)
	default:
		return false, validationError("unknown action %q", action)
	}
}

// Follow creates the edge requester -> target and, when the edge is new,
// records a Follow event for target.
func (s *FollowService) Follow(ctx context.Context, requester, target *models.Profile) error {
	if requester == nil {
		return ErrAuthenticationRequired
	}
	if requester.ID == target.ID {
		return validationError("you cannot follow yourself")
	}

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Follower{}).
			Where("from_id = ? AND to_id = ?", requester.ID, target.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		edge := models.Follower{FromID: requester.ID, ToID: target.ID}
		if err := tx.Omit("From", "To").Create(&edge).Error; err != nil {
			return err
		}
		created = true

		return recordEvent(tx, &models.Follow{
			ActorID:     requester.ID,
			Actor:       *requester,
			RecipientID: target.ID,
			Recipient:   *target,
		})
	})
	if err != nil {
		if isUniqueViolation(err) {
			// a concurrent request created the same edge
			return nil
		}
		return fmt.Errorf("failed to follow: %w", err)
	}
	if created {
		s.counter.Followed(ctx, requester.ID, target.ID)
	}
	return nil
}

// Unfollow deletes the edge requester -> target if present.
func (s *FollowService) Unfollow(ctx context.Context, requester, target *models.Profile) error {
	if requester == nil {
		return ErrAuthenticationRequired
	}
	res := s.db.WithContext(ctx).
		Where("from_id = ? AND to_id = ?", requester.ID, target.ID).
		Delete(&models.Follower{})
	if res.Error != nil {
		return fmt.Errorf("failed to unfollow: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.counter.Unfollowed(ctx, requester.ID, target.ID)
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, fromID, toID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follower{}).
		Where("from_id = ? AND to_id = ?", fromID, toID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}

// Followers lists the profiles following username, newest edge first.
func (s *FollowService) Followers(ctx context.Context, username string) ([]models.Profile, error) {
	return s.list(ctx, username, "to_id", "From")
}

// Following lists the profiles username follows, newest edge first.
func (s *FollowService) Following(ctx context.Context, username string) ([]models.Profile, error) {
	return s.list(ctx, username, "from_id", "To")
}

func (s *FollowService) list(ctx context.Context, username, column, other string) ([]models.Profile, error) {
	profile, err := profileByUsername(s.db.WithContext(ctx), username)
	if err != nil {
		return nil, err
	}

	var edges []models.Follower
	err = s.db.WithContext(ctx).
		Preload(other+".Account").
		Where(column+" = ?", profile.ID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}

	profiles := make([]models.Profile, 0, len(edges))
	for _, e := range edges {
		if other == "From" {
			profiles = append(profiles, e.From)
		} else {
			profiles = append(profiles, e.To)
		}
	}
	return profiles, nil
}

// Counts returns follower and following totals for a profile.
func (s *FollowService) Counts(ctx context.Context, profileID uint) (followers, following int64, err error) {
	return s.counter.Counts(ctx, profileID)
}
