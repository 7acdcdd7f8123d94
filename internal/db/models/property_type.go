package models

import "time"

// PropertyType is a sub-classification inside a category (e.g. "Apartment" under "Residential").
type PropertyType struct {
	// ID is the unique identifier for the property type.
	ID uint `gorm:"primaryKey" json:"id"`
	// CategoryID references the owning category.
	CategoryID *uint `json:"category_id"`
	// Name is the type name, unique only in practice, not enforced.
	Name string `gorm:"size:255;not null" json:"name"`
	// Status is either active or inactive.
	Status Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// Category is the owning category (loaded via foreign key).
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	// CreatedAt is the timestamp when the property type was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the property type was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the PropertyType model.
func (PropertyType) TableName() string {
	return "property_types"
}
