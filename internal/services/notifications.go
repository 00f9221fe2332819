package services

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// recordEvent stores an event row and its notification on the same
// transaction. Callers must pass the transaction handle, never the root DB.
// The event's Actor, Recipient and Post must already be loaded because the
// notification text is rendered from them.
func recordEvent(tx *gorm.DB, event models.Notifiable) error {
	kind := event.AsEvent().Kind
	if err := tx.Omit(clause.Associations).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create %s event: %w", kind, err)
	}
	return dispatchNotification(tx, event.AsEvent())
}

// dispatchNotification materialises the notification for ev's recipient.
func dispatchNotification(tx *gorm.DB, ev models.Event) error {
	if ev.Recipient == nil || ev.Recipient.ID == 0 {
		return fmt.Errorf("failed to notify: %s event has no recipient", ev.Kind)
	}

	notification := models.Notification{
		ProfileID: ev.Recipient.ID,
		Kind:      ev.Kind,
		Message:   truncate(ev.Message(), models.MaxNotificationLength),
	}
	if err := tx.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the requester's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, requester *models.Profile, limit int) ([]models.Notification, error) {
	if requester == nil {
		return nil, ErrAuthenticationRequired
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", requester.ID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) Count(ctx context.Context, requester *models.Profile) (int64, error) {
	if requester == nil {
		return 0, ErrAuthenticationRequired
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("profile_id = ?", requester.ID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// Delete removes one of the requester's notifications. Someone else's
// notification is reported as missing.
func (s *NotificationService) Delete(ctx context.Context, requester *models.Profile, id uint) error {
	if requester == nil {
		return ErrAuthenticationRequired
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, requester.ID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
