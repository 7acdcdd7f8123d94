// Package role provides CRUD operations for roles and the transactional
// replacement of their permission sets.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameTaken is returned when another role already carries the requested name.
	ErrRoleNameTaken = errors.New("role name already taken")
	// ErrUnknownPermission is returned when a permission name does not resolve to a known permission.
	ErrUnknownPermission = errors.New("unknown permission name")
	// ErrSuperAdminProtected is returned when attempting to delete the reserved super-administrator role.
	ErrSuperAdminProtected = errors.New("super admin role cannot be deleted")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// List retrieves all roles with their permissions preloaded.
func List(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	if err := db.Preload("Permissions").Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// Get retrieves one role by id with its permissions preloaded.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role

	result := db.Preload("Permissions").First(&r, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, result.Error
	}

	return &r, nil
}

// ListPermissions retrieves all known permissions.
func ListPermissions(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Order("id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// resolvePermissions maps permission names to rows. Any name that does
// not resolve aborts the whole operation.
func resolvePermissions(tx *gorm.DB, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var perms []models.Permission
	if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, err
	}

	if len(perms) != len(uniqueNames(names)) {
		return nil, ErrUnknownPermission
	}

	return perms, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))

	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}

// Create inserts a role and assigns its permission set as a single
// atomic unit. A partial failure (e.g. an unknown permission name mid
// list) leaves zero new state.
func Create(db *gorm.DB, name string, permissionNames []string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var count int64
	if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrRoleNameTaken
	}

	r := models.Role{Name: name}

	err := db.Transaction(func(tx *gorm.DB) error {
		perms, err := resolvePermissions(tx, permissionNames)
		if err != nil {
			return err
		}

		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		return tx.Model(&r).Association("Permissions").Replace(perms)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, r.ID)
}

// Update renames a role and replaces its permission set under the same
// atomicity contract as Create.
func Update(db *gorm.DB, id uint, name string, permissionNames []string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	// uniqueness check excludes the role's own id
	var count int64
	if err = db.Model(&models.Role{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrRoleNameTaken
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		perms, err := resolvePermissions(tx, permissionNames)
		if err != nil {
			return err
		}

		err = tx.Model(&models.Role{}).Where("id = ?", id).
			Update("name", name).Error
		if err != nil {
			return err
		}

		return tx.Model(r).Association("Permissions").Replace(perms)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// Delete removes a role and its permission associations. The reserved
// super-administrator role is refused unconditionally.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	r, err := Get(db, id)
	if err != nil {
		return err
	}

	if r.IsSuperAdmin() {
		return ErrSuperAdminProtected
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(r).Association("Permissions").Clear(); err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, id).Error
	})
}
