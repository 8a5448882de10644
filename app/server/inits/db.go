package inits

import (
	"fmt"
	"github.com/alexedwards/argon2id"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"membership-dashboard/app/server/config"
	"membership-dashboard/app/server/models"
	"membership-dashboard/app/server/permissions"
	"membership-dashboard/app/server/profiles"
)

func DB(conn string) (db *gorm.DB, err error) {
	// open
	if db, err = gorm.Open(postgres.Open(conn), &gorm.Config{
		TranslateError: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// migrate
	if err = mig(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func mig(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Credential{},
		&models.Post{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the bootstrap admin when no profile exists yet.
// It does nothing when no bootstrap credentials are configured.
func SeedAdmin(db *gorm.DB, admin config.BootstrapAdmin) (err error) {
	if admin.Email == "" {
		return nil
	}

	var counter int64
	if err = db.Model(&models.Profile{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get profile count: %w", err)
	} else if counter > 0 {
		return nil
	}

	var password string
	if password, err = argon2id.CreateHash(admin.Password, argon2id.DefaultParams); err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		profile := models.Profile{
			Email:       profiles.NormalizeEmail(admin.Email),
			DisplayName: "Admin",
			Role:        string(permissions.RoleAdmin),
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create admin profile: %w", err)
		}
		if err := tx.Create(&models.Credential{
			ProfileID:    profile.ID,
			PasswordHash: password,
		}).Error; err != nil {
			return fmt.Errorf("failed to create admin credential: %w", err)
		}
		return nil
	})
}
