package domain

import "time"

// VerificationStatus tracks an expert's vetting state.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Expert is a practitioner account: every User field plus the practice
// profile and the lockout counters maintained on failed logins.
type Expert struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	PasswordHash       string
	IsActive           bool
	IsEmailVerified    bool
	ProfileImage       string
	Specialization     string
	ExperienceYears    int
	Rating             float64
	VerificationStatus VerificationStatus
	LoginAttempts      int
	LockUntil          *time.Time
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Locked reports whether the account is inside an active lockout window.
func (e *Expert) Locked(now time.Time) bool {
	return e.LockUntil != nil && now.Before(*e.LockUntil)
}
