package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record the auth service authenticates against:
// uuid primary key with a default generator, indexed foreign-facing
// columns.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	Name         string    `gorm:"size:255;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	PushToken    string    `gorm:"size:255"`
	PrefEmail    bool      `gorm:"column:pref_email;not null;default:true"`
	PrefPush     bool      `gorm:"column:pref_push;not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Preferences is the JSON shape of a user's channel preferences, the
// projection of PrefEmail/PrefPush for the user:preferences:{id} cache
// key. No code in this repository reads or writes that key.
type Preferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}
