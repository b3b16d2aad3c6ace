package domain

import "time"

// RoleSuperAdmin is the role the boot seeder assigns to the first admin.
const RoleSuperAdmin = "super_admin"

// Admin is a back-office account. Admins authenticate through their own
// endpoint and never participate in the unified user/expert resolution.
type Admin struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Permission is one entry of the seeded permission catalog.
type Permission struct {
	ID          string
	Name        string
	Description string
	Module      string
	CreatedAt   time.Time
}
