package repositories

import "errors"

var (
	// ErrNotFound is returned when a referenced entity row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateRelationship is returned when an insert collides with the
	// unique (subject, object, relationship_type, relationship_key) constraint.
	ErrDuplicateRelationship = errors.New("relationship already exists")

	// ErrDuplicateEmail is returned when a user insert or update collides with
	// the unique email constraint.
	ErrDuplicateEmail = errors.New("email already taken")
)
