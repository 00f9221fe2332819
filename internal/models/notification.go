package models

import (
	"time"
)

// Notification is written once, when its event is recorded, and never
// updated afterwards. It outlives the event that produced it.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"not null;index" json:"profile_id"` // Receiver
	Profile   Profile   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Kind      EventKind `gorm:"type:varchar(20);not null" json:"kind"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

const MaxNotificationLength = 255
