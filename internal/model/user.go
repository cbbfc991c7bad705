package model

import (
	"time"
)

// User is the identity record. The recipe subsystem only ever sees its
// opaque string ID; the row itself is owned by the auth layer and upserted
// by id, never created twice.
type User struct {
	ID              string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName       string    `gorm:"size:100" json:"first_name"`
	LastName        string    `gorm:"size:100" json:"last_name"`
	ProfileImageURL string    `gorm:"size:255" json:"profile_image_url"`
	PasswordHash    string    `gorm:"not null" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
