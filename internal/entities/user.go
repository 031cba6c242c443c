package entities

import (
	"fmt"
	"strings"
	"time"
)

// User represents an account that can own todos. Association to todos flows
// exclusively through general relationship rows; there is no foreign key in
// either direction.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks if the user record is valid.
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(u.Name) > 255 {
		return fmt.Errorf("name exceeds 255 characters")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("email is not valid")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}
