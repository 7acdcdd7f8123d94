package models

import "time"

// Category groups properties by market segment (e.g. "Residential", "Commercial").
type Category struct {
	// ID is the unique identifier for the category.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the globally unique category name.
	Name string `gorm:"unique;size:255;not null" json:"name"`
	// Status is either active or inactive.
	Status Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// PropertyTypes are the types declared under this category.
	PropertyTypes []PropertyType `gorm:"foreignKey:CategoryID" json:"property_types,omitempty"`
	// CreatedAt is the timestamp when the category was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the category was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Category model.
func (Category) TableName() string {
	return "categories"
}
