// Package profiles is the profile store: profile rows and credentials in
// Postgres, with a Redis read-through cache in front of profile reads.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"membership-dashboard/app/server/constants"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("profile not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Store struct {
	l   *zap.Logger
	db  *gorm.DB
	rdb redis.Cmdable // optional
}

func New(l *zap.Logger, db *gorm.DB, rdb *redis.Client) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Store{l: l, db: db}
	if rdb != nil {
		s.rdb = rdb
	}
	return s
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile

	// cache first
	cacheKey := fmt.Sprintf(constants.CacheKeyProfile, id)
	if s.rdb != nil {
		if cacheBytes, err := s.rdb.Get(ctx, cacheKey).Bytes(); err != nil {
			if !errors.Is(err, redis.Nil) {
				s.l.Error("failed to query cache for profile", zap.Stringer("id", id), zap.Error(err))
			}
		} else if err = json.Unmarshal(cacheBytes, &profile); err != nil {
			s.l.Error("failed to unmarshal cached profile", zap.Stringer("id", id), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
			s.rdb.Del(ctx, cacheKey)
		} else {
			return &profile, nil
		}
	}

	loaded, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// never replaces an entry stored by a write that committed meanwhile
	s.fill(ctx, loaded)

	return loaded, nil
}

func (s *Store) load(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &profile, nil
}

// refresh reloads a profile after a write and overwrites its cache entry.
func (s *Store) refresh(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.load(ctx, id)
	if err != nil {
		s.invalidate(ctx, id)
		return nil, err
	}
	s.store(ctx, profile)
	return profile, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "email = ?", NormalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return &profile, nil
}

// Create inserts a profile and its credential together.
func (s *Store) Create(ctx context.Context, profile *models.Profile, passwordHash string) error {
	profile.Email = NormalizeEmail(profile.Email)
	if profile.Role == "" {
		profile.Role = string(permissions.RoleUser)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("email = ?", profile.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("count email: %w", err)
		} else if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(profile).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create profile: %w", err)
		}

		if err := tx.Create(&models.Credential{
			ProfileID:    profile.ID,
			PasswordHash: passwordHash,
		}).Error; err != nil {
			return fmt.Errorf("create credential: %w", err)
		}

		return nil
	})
}

// Fields holds the member-editable profile columns; nil means unchanged.
type Fields struct {
	DisplayName  *string `json:"display_name"`
	Nickname     *string `json:"nickname"`
	SocialHandle *string `json:"social_handle"`
}

func (f *Fields) updates() map[string]interface{} {
	m := make(map[string]interface{})
	if f.DisplayName != nil {
		m["display_name"] = strings.TrimSpace(*f.DisplayName)
	}
	if f.Nickname != nil {
		m["nickname"] = strings.TrimSpace(*f.Nickname)
	}
	if f.SocialHandle != nil {
		m["social_handle"] = strings.TrimPrefix(strings.TrimSpace(*f.SocialHandle), "@")
	}
	return m
}

func (s *Store) UpdateFields(ctx context.Context, id uuid.UUID, fields *Fields) (*models.Profile, error) {
	if updates := fields.updates(); len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update profile %s: %w", id, res.Error)
		} else if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
		return s.refresh(ctx, id)
	}

	return s.Get(ctx, id)
}

func (s *Store) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("last_login_at", at).Error; err != nil {
		return fmt.Errorf("touch last login %s: %w", id, err)
	}
	_, err := s.refresh(ctx, id)
	return err
}

func (s *Store) PasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	var cred models.Credential
	if err := s.db.WithContext(ctx).First(&cred, "profile_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get credential %s: %w", id, err)
	}
	return cred.PasswordHash, nil
}

func (s *Store) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.Credential{}).Where("profile_id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("set password %s: %w", id, res.Error)
	} else if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFilter narrows List; zero values mean no filtering.
type ListFilter struct {
	Query  string // substring of email, display name or nickname
	Role   string
	Banned *bool
	Offset int
	Limit  int // negative lists everything
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Profile, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Profile{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := containsPattern(q)
		query = query.Where("email LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(nickname) LIKE ?", like, like, like)
	}
	if filter.Role != "" {
		query = query.Where("LOWER(role) = ?", strings.ToLower(filter.Role))
	}
	if filter.Banned != nil {
		query = query.Where("is_banned = ?", *filter.Banned)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	var list []models.Profile
	if filter.Limit >= 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	return list, count, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern matching q literally anywhere in a lowercased column.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

// fill caches a profile read from the database unless an entry exists already.
func (s *Store) fill(ctx context.Context, profile *models.Profile) {
	if s.rdb == nil {
		return
	}
	if cacheBytes, err := json.Marshal(profile); err != nil {
		s.l.Error("failed to marshal profile", zap.Stringer("id", profile.ID), zap.Error(err))
	} else if err = s.rdb.SetNX(ctx, fmt.Sprintf(constants.CacheKeyProfile, profile.ID), cacheBytes, constants.CacheExpireProfile).Err(); err != nil {
		s.l.Error("failed to cache profile", zap.Stringer("id", profile.ID), zap.Error(err))
	}
}

func (s *Store) store(ctx context.Context, profile *models.Profile) {
	if s.rdb == nil {
		return
	}
	cacheKey := fmt.Sprintf(constants.CacheKeyProfile, profile.ID)
	if cacheBytes, err := json.Marshal(profile); err != nil {
		s.l.Error("failed to marshal profile", zap.Stringer("id", profile.ID), zap.Error(err))
		s.invalidate(ctx, profile.ID)
	} else if err = s.rdb.Set(ctx, cacheKey, cacheBytes, constants.CacheExpireProfile).Err(); err != nil {
		s.l.Error("failed to cache profile", zap.Stringer("id", profile.ID), zap.Error(err))
		s.invalidate(ctx, profile.ID)
	}
}

func (s *Store) invalidate(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, fmt.Sprintf(constants.CacheKeyProfile, id)).Err(); err != nil {
		s.l.Error("failed to invalidate cached profile", zap.Stringer("id", id), zap.Error(err))
	}
}
