package models

import "time"

// SuperAdminRoleName is the reserved role name that can never be deleted.
// Users holding this role are likewise protected from deletion.
const SuperAdminRoleName = "Super Admin"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions assigned to users.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique name of the role (e.g. "Super Admin", "Editor").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Permissions are the permissions granted by this role.
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// IsSuperAdmin reports whether this role is the protected super-administrator role.
func (r *Role) IsSuperAdmin() bool {
	return r.Name == SuperAdminRoleName
}
