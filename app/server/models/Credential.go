package models

import (
	"github.com/google/uuid"
	"time"
)

// Credential holds the login secret of a profile. Profile reads and the profile cache never load it.
type Credential struct {
	ProfileID    uuid.UUID `gorm:"column:profile_id;type:uuid;primaryKey"`
	PasswordHash string    `gorm:"column:password_hash"` // argon2id
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}
