package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	"github.com/estatedesk/estatedesk/internal/db/models"
)

// Defaults for the bootstrap admin account.
const (
	AdminEmail    = "admin@gmail.com"
	AdminName     = "Super Admin"
	AdminPassword = "Admin@123"
)

// seed makes sure the permission catalogue, the Super Admin role and
// the bootstrap admin account exist. It is idempotent and runs on
// every startup.
func seed(db *gorm.DB, authService *auth.Service) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range auth.All {
			permission := models.Permission{Name: name, GuardName: "api"}

			err := tx.Where(models.Permission{Name: name, GuardName: "api"}).
				FirstOrCreate(&permission).Error
			if err != nil {
				return err
			}
		}

		var permissions []models.Permission
		if err := tx.Find(&permissions).Error; err != nil {
			return err
		}

		role := models.Role{Name: models.SuperAdminRoleName}

		err := tx.Where(models.Role{Name: models.SuperAdminRoleName}).
			FirstOrCreate(&role).Error
		if err != nil {
			return err
		}

		// Super Admin always holds the full catalogue
		if err := tx.Model(&role).Association("Permissions").Replace(permissions); err != nil {
			return err
		}

		var admin models.User
		err = tx.Where(models.User{Email: AdminEmail}).
			Attrs(models.User{
				Name:     AdminName,
				Password: models.HashPassword(AdminPassword),
				Status:   models.StatusActive,
			}).
			FirstOrCreate(&admin).Error
		if err != nil {
			return err
		}

		userRole := models.UserRole{UserID: admin.ID, RoleID: role.ID}

		if err := tx.Where(userRole).FirstOrCreate(&userRole).Error; err != nil {
			return err
		}

		if authService != nil {
			authService.InvalidateCache()
		}

		log.Info().Msg("seeded permissions, Super Admin role and admin user")

		return nil
	})
}

// Seed opens the configured database, migrates it and runs the seeder.
// Used by the seed command.
func Seed(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	return seed(db, nil)
}
