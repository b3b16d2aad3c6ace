package domain

import "time"

// User is a standard (client) account. Standard accounts carry no lockout
// state; repeated failures only ever yield invalid-credential responses.
type User struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	PasswordHash    string
	IsActive        bool
	IsEmailVerified bool
	ProfileImage    string // storage object key, empty when unset
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
