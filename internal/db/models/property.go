package models

import "time"

// Property represents a real-estate listing developed by a builder.
type Property struct {
	// ID is the unique identifier for the property.
	ID uint `gorm:"primaryKey" json:"id"`
	// BuilderID references the builder developing this property.
	BuilderID uint `gorm:"not null" json:"builder_id"`
	// CategoryID references the category, nulled when the category is deleted.
	CategoryID *uint `json:"category_id"`
	// PropertyTypeID references the property type, nulled when the type is deleted.
	PropertyTypeID *uint `json:"property_type_id"`
	// Name is the listing name.
	Name string `gorm:"size:255;not null" json:"name"`
	// SqFeet is a free-form area description (e.g. "1250 sqft").
	SqFeet string `gorm:"size:100" json:"sq_feet"`
	// StartingPrice is the lowest unit price.
	StartingPrice float64 `gorm:"not null" json:"starting_price"`
	// EndingPrice is the highest unit price, nil when open ended.
	// No ordering against StartingPrice is enforced.
	EndingPrice *float64 `json:"ending_price"`
	// Image is the stored filename of the uploaded listing image.
	Image string `gorm:"size:255" json:"image"`
	// Address is the street address of the project.
	Address string `gorm:"type:text" json:"address"`
	// Latitude as decimal string to keep the upstream precision untouched.
	Latitude string `gorm:"size:50" json:"latitude"`
	// Longitude as decimal string.
	Longitude string `gorm:"size:50" json:"longitude"`
	// YoutubeLink is an optional promo video URL.
	YoutubeLink string `gorm:"size:255" json:"youtube_link"`
	// Brochure is the stored filename of the uploaded brochure document.
	Brochure string `gorm:"size:255" json:"brochure"`
	// AdditionalNote is optional free text shown with the listing.
	AdditionalNote string `gorm:"type:text" json:"additional_note"`
	// Status is either active or inactive.
	Status Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// Builder is the developing builder (loaded via foreign key).
	Builder *Builder `gorm:"foreignKey:BuilderID" json:"builder,omitempty"`
	// Category is the market segment (loaded via foreign key).
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	// PropertyType is the sub-classification (loaded via foreign key).
	PropertyType *PropertyType `gorm:"foreignKey:PropertyTypeID;constraint:OnDelete:SET NULL" json:"property_type,omitempty"`
	// CreatedAt is the timestamp when the property was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the property was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Property model.
func (Property) TableName() string {
	return "properties"
}
