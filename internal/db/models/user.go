package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a CRM operator account.
// Users authenticate with email and password and receive permissions
// through their role memberships.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the display name.
	Name string `gorm:"size:255;not null" json:"name"`
	// Email is the globally unique login email.
	Email string `gorm:"unique;size:255;not null" json:"email"`
	// Password is the Argon2id hashed password. Never serialized.
	Password string `gorm:"size:255;not null" json:"-"`
	// ContactNumber is an optional 10 digit phone number.
	ContactNumber string `gorm:"size:10" json:"contact_number"`
	// Address is an optional postal address.
	Address string `gorm:"type:text" json:"address"`
	// Status is either active or inactive.
	Status Status `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// ProfileImage is the stored filename of the uploaded profile image.
	ProfileImage string `gorm:"size:255" json:"profile_image"`
	// Roles are the roles assigned to this user.
	Roles []Role `gorm:"many2many:user_roles" json:"roles,omitempty"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user holds a role with the given name.
// Roles must have been loaded (preloaded) on the receiver.
func (u *User) HasRole(name string) bool {
	for i := range u.Roles {
		if u.Roles[i].Name == name {
			return true
		}
	}

	return false
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
