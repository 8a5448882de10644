package profiles

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"membership-dashboard/app/server/metrics"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
)

// ActorCLI marks audit entries written by operator commands.
const ActorCLI = "cli"

var ErrBanReasonRequired = errors.New("ban reason required")

// SetRole changes the role of a profile and records who did it.
func (s *Store) SetRole(ctx context.Context, actor string, id uuid.UUID, role permissions.Role) (*models.Profile, error) {
	profile, err := s.mutate(ctx, id, func(tx *gorm.DB, profile *models.Profile) (*models.AuditLog, error) {
		if err := tx.Model(profile).Update("role", string(role)).Error; err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		return &models.AuditLog{
			Action: models.AuditActionRoleChange,
			Detail: string(role),
		}, nil
	}, actor)
	if err != nil {
		return nil, err
	}

	s.l.Info("profile role changed", zap.String("actor", actor), zap.Stringer("id", id), zap.String("role", string(role)))
	return profile, nil
}

// SetBan bans or unbans a profile. Banning needs a reason; unbanning clears it.
func (s *Store) SetBan(ctx context.Context, actor string, id uuid.UUID, banned bool, reason string) (*models.Profile, error) {
	if banned && reason == "" {
		return nil, ErrBanReasonRequired
	}
	if !banned {
		reason = ""
	}

	profile, err := s.mutate(ctx, id, func(tx *gorm.DB, profile *models.Profile) (*models.AuditLog, error) {
		if err := tx.Model(profile).Updates(map[string]interface{}{
			"is_banned":  banned,
			"ban_reason": reason,
		}).Error; err != nil {
			return nil, fmt.Errorf("update ban: %w", err)
		}
		action := models.AuditActionUnban
		if banned {
			action = models.AuditActionBan
		}
		return &models.AuditLog{
			Action: action,
			Detail: reason,
		}, nil
	}, actor)
	if err != nil {
		return nil, err
	}

	s.l.Info("profile ban changed", zap.String("actor", actor), zap.Stringer("id", id), zap.Bool("banned", banned))
	return profile, nil
}

// PromoteByEmail makes the profile registered under email an admin.
// Promoting an existing admin is a no-op that is still audited.
func (s *Store) PromoteByEmail(ctx context.Context, actor string, email string) (*models.Profile, error) {
	target, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	profile, err := s.mutate(ctx, target.ID, func(tx *gorm.DB, profile *models.Profile) (*models.AuditLog, error) {
		previous := profile.Role
		if err := tx.Model(profile).Update("role", string(permissions.RoleAdmin)).Error; err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		return &models.AuditLog{
			Action: models.AuditActionPromote,
			Detail: fmt.Sprintf("%s -> %s", previous, permissions.RoleAdmin),
		}, nil
	}, actor)
	if err != nil {
		return nil, err
	}

	s.l.Info("profile promoted to admin", zap.String("actor", actor), zap.String("email", profile.Email))
	return profile, nil
}

func (s *Store) AuditTrail(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var list []models.AuditLog
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return list, nil
}

// mutate locks the profile row, applies change and writes its audit entry in one transaction.
func (s *Store) mutate(
	ctx context.Context,
	id uuid.UUID,
	change func(tx *gorm.DB, profile *models.Profile) (*models.AuditLog, error),
	actor string,
) (*models.Profile, error) {
	var (
		profile models.Profile
		action  string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock profile %s: %w", id, err)
		}

		entry, err := change(tx, &profile)
		if err != nil {
			return err
		}

		entry.ActorID = actor
		entry.TargetID = profile.ID
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		action = entry.Action

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AdminActionsTotal.WithLabelValues(action).Inc()

	return s.refresh(ctx, id)
}
