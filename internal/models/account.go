package models

import (
	"time"
)

// Account is the authentication identity. Its social and editorial
// side lives on Profile.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"-"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"` // lowercased
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}
