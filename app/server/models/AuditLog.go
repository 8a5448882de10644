package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

const (
	AuditActionRoleChange = "role_change"
	AuditActionBan        = "ban"
	AuditActionUnban      = "unban"
	AuditActionPromote    = "promote"
)

type AuditLog struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ActorID   string    `gorm:"column:actor_id;index" json:"actor_id"` // profile id, or "cli" for operator commands
	Action    string    `gorm:"column:action" json:"action"`
	TargetID  uuid.UUID `gorm:"column:target_id;type:uuid;index" json:"target_id"`
	Detail    string    `gorm:"column:detail" json:"detail"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
