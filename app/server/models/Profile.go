package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type Profile struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`

	// identity and display fields
	Email        string `gorm:"column:email;uniqueIndex" json:"email"` // always stored lower-cased
	DisplayName  string `gorm:"column:display_name" json:"display_name"`
	Nickname     string `gorm:"column:nickname" json:"nickname"`
	SocialHandle string `gorm:"column:social_handle" json:"social_handle"`

	// access control
	Role      string `gorm:"column:role;index;default:user" json:"role"` // admin | user
	IsBanned  bool   `gorm:"column:is_banned;index" json:"is_banned"`
	BanReason string `gorm:"column:ban_reason" json:"ban_reason,omitempty"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
