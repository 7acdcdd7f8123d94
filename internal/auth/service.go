// Package auth provides authentication (bearer tokens) and
// authorization (role-based permission checks) for the API.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/db/models"
)

// Service provides authentication and authorization functionality.
// It carries a process-wide cache of effective permission sets, keyed by
// user id. The cache is explicitly invalidated by every role or
// permission mutation and by the seeder.
type Service struct {
	db     *gorm.DB
	secret string
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[uint]map[string]struct{}
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, secret string, ttl time.Duration) *Service {
	return &Service{
		db:     db,
		secret: secret,
		ttl:    ttl,
		cache:  make(map[uint]map[string]struct{}),
	}
}

// Authenticate verifies an email/password pair and returns the matching
// active user with roles preloaded.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	if user.Status != models.StatusActive {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}

// HasPermission checks if a user has a specific permission. The
// effective permission set is the union across the user's roles.
func (s *Service) HasPermission(userID uint, permission string) (bool, error) {
	perms, err := s.permissionSet(userID)
	if err != nil {
		return false, err
	}

	_, ok := perms[permission]

	return ok, nil
}

// GetUserPermissions retrieves all permission names for a user.
func (s *Service) GetUserPermissions(userID uint) ([]string, error) {
	perms, err := s.permissionSet(userID)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(perms))
	for p := range perms {
		result = append(result, p)
	}

	return result, nil
}

// permissionSet returns the cached effective permission set for a user,
// loading it from the database on a cache miss.
func (s *Service) permissionSet(userID uint) (map[string]struct{}, error) {
	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()

	if ok {
		return cached, nil
	}

	var names []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user permissions: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	s.mu.Lock()
	s.cache[userID] = set
	s.mu.Unlock()

	return set, nil
}

// InvalidateCache drops every cached permission set. Must be called
// after any write to roles, permissions or role memberships.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	s.cache = make(map[uint]map[string]struct{})
	s.mu.Unlock()
}

// SyncUserRoles replaces a user's role memberships with the given role
// names inside the supplied transaction handle. Unknown role names abort
// the operation.
func (s *Service) SyncUserRoles(tx *gorm.DB, userID uint, roleNames []string) error {
	var roles []models.Role
	if err := tx.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
		return fmt.Errorf("failed to resolve roles: %w", err)
	}

	if len(roles) != len(roleNames) {
		return fmt.Errorf("%w: unresolved role name", gorm.ErrRecordNotFound)
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("failed to clear role memberships: %w", err)
	}

	for _, r := range roles {
		if err := tx.Create(&models.UserRole{UserID: userID, RoleID: r.ID}).Error; err != nil {
			return fmt.Errorf("failed to add role membership: %w", err)
		}
	}

	s.InvalidateCache()

	return nil
}

// LoadUser fetches a user with roles preloaded.
func (s *Service) LoadUser(userID uint) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Roles").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &user, nil
}
