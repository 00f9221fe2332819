package models

import (
	"time"
)

type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	Actor       Profile   `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"` // post author
	Recipient   Profile   `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	Post        Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Comment) AsEvent() Event {
	return Event{
		Kind:      EventComment,
		Actor:     &c.Actor,
		Recipient: &c.Recipient,
		Post:      &c.Post,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}
