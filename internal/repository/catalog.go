package repository

import (
	"context"
	"time"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
)

// PermissionRepository persists the seeded permission catalog.
type PermissionRepository interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, perm *domain.Permission) error
	List(ctx context.Context) ([]domain.Permission, error)
}

// PlanRepository manages wellness plan definitions.
type PlanRepository interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	ListActive(ctx context.Context) ([]domain.Plan, error)
}

// SubscriptionRepository manages user plan subscriptions.
type SubscriptionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, sub *domain.Subscription) error
	GetActiveByUser(ctx context.Context, userID string, now time.Time) (*domain.Subscription, error)
}
