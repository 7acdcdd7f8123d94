package models

import "time"

// Builder represents a construction company whose projects are listed as properties.
type Builder struct {
	// ID is the unique identifier for the builder.
	ID uint `gorm:"primaryKey" json:"id"`
	// CompanyName is the registered company name.
	CompanyName string `gorm:"size:255;not null" json:"company_name"`
	// Name is the contact person's name.
	Name string `gorm:"size:255;not null" json:"name"`
	// CompanyLogo is the stored filename of the uploaded logo, empty when none was uploaded.
	CompanyLogo string `gorm:"size:255" json:"company_logo"`
	// Experience is a free-form experience description (e.g. "12 years").
	Experience string `gorm:"size:255" json:"experience"`
	// Status is either active or inactive.
	Status Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// ContactNumber is the primary phone number.
	ContactNumber string `gorm:"size:20;not null" json:"contact_number"`
	// Email is the globally unique contact email.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Website is an optional company website URL.
	Website string `gorm:"size:255" json:"website"`
	// OfficeAddress is the office street address.
	OfficeAddress string `gorm:"type:text" json:"office_address"`
	// TotalProjectCompleted counts finished projects.
	TotalProjectCompleted int `gorm:"default:0" json:"total_project_completed"`
	// OngoingProjects counts projects currently under construction.
	OngoingProjects int `gorm:"default:0" json:"ongoing_projects"`
	// Properties are the properties developed by this builder.
	Properties []Property `gorm:"foreignKey:BuilderID" json:"properties,omitempty"`
	// CreatedAt is the timestamp when the builder was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the builder was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Builder model.
func (Builder) TableName() string {
	return "builders"
}
