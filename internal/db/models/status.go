// Package models contains database model definitions.
package models

// Status represents the publication state of a record.
// Every CRM entity carries one and only the two literal values are valid.
type Status string

const (
	// StatusActive marks a record as visible/usable.
	StatusActive Status = "active"
	// StatusInactive marks a record as hidden/disabled.
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the declared literals.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}
