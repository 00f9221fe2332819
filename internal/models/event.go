package models

import (
	"fmt"
	"time"
)

type EventKind string

const (
	EventFollow  EventKind = "follow"
	EventLike    EventKind = "like"
	EventComment EventKind = "comment"
)

// Event is the common shape of a social action: Actor did something that
// concerns Recipient. Post is set for like and comment, Body for comment.
type Event struct {
	Kind      EventKind
	Actor     *Profile
	Recipient *Profile
	Post      *Post
	Body      string
	CreatedAt time.Time
}

// Notifiable is implemented by every persisted event variant. Anything
// that can describe itself as an Event gets a notification when it is
// recorded.
type Notifiable interface {
	AsEvent() Event
}

// Message renders the notification text for the recipient. Actor and Post
// must be loaded (Actor with its Account).
func (e Event) Message() string {
	actor := e.Actor.Account.Username
	switch e.Kind {
	case EventFollow:
		return fmt.Sprintf("%s followed you.", actor)
	case EventLike:
		return fmt.Sprintf("%s liked %s.", actor, e.Post.Title)
	case EventComment:
		return fmt.Sprintf("%s commented on %s.", actor, e.Post.Title)
	default:
		return fmt.Sprintf("%s interacted with you.", actor)
	}
}

// Follow is the event recorded when a new follower edge is created.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	Actor       Profile   `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Recipient   Profile   `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follow_events"
}

func (f *Follow) AsEvent() Event {
	return Event{
		Kind:      EventFollow,
		Actor:     &f.Actor,
		Recipient: &f.Recipient,
		CreatedAt: f.CreatedAt,
	}
}

type Like struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     uint      `gorm:"not null;index;uniqueIndex:idx_like_actor_post" json:"actor_id"`
	Actor       Profile   `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Recipient   Profile   `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID      uint      `gorm:"not null;index;uniqueIndex:idx_like_actor_post" json:"post_id"`
	Post        Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l *Like) AsEvent() Event {
	return Event{
		Kind:      EventLike,
		Actor:     &l.Actor,
		Recipient: &l.Recipient,
		Post:      &l.Post,
		CreatedAt: l.CreatedAt,
	}
}
