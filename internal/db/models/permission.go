package models

import "time"

// Permission represents a named permission gating one action on one resource type.
// Names use the resource-action form (e.g. "builder-create", "property-edit").
// Permissions are assigned to roles; users receive them through role membership.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique permission identifier in resource-action format.
	Name string `gorm:"uniqueIndex:idx_perm_name_guard;size:100;not null" json:"name"`
	// GuardName is the authentication scope label the permission belongs to.
	GuardName string `gorm:"uniqueIndex:idx_perm_name_guard;size:50;not null;default:'api'" json:"guard_name"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
