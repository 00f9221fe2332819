package models

import (
	"time"
)

// Follower is a directed edge: From follows To. The reverse edge is a
// separate row.
type Follower struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FromID    uint      `gorm:"not null;uniqueIndex:idx_follower_pair" json:"from_id"`
	From      Profile   `gorm:"foreignKey:FromID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ToID      uint      `gorm:"not null;index;uniqueIndex:idx_follower_pair" json:"to_id"`
	To        Profile   `gorm:"foreignKey:ToID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
