package domain

import "time"

// Plan is a purchasable wellness plan.
type Plan struct {
	ID           string
	Name         string
	Description  string
	PriceCents   int64
	DurationDays int
	Features     []string
	IsActive     bool
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription links a standard user to a plan for a bounded period.
type Subscription struct {
	ID        string
	UserID    string
	PlanID    string
	Status    SubscriptionStatus
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}
