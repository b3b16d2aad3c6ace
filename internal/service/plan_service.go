package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

var (
	// ErrPlanNotFound is returned when the requested plan does not exist or
	// is no longer offered.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrAlreadySubscribed is returned when the user already has a running
	// subscription.
	ErrAlreadySubscribed = errors.New("an active subscription already exists")
	// ErrNoSubscription is returned when the user has no running subscription.
	ErrNoSubscription = errors.New("no active subscription")
)

// PlanService lists the plan catalog and manages user subscriptions.
type PlanService interface {
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	Subscribe(ctx context.Context, userID, planID string) (*domain.Subscription, error)
	CurrentSubscription(ctx context.Context, userID string) (*domain.Subscription, error)
}

type planService struct {
	plans repository.PlanRepository
	subs  repository.SubscriptionRepository
}

func NewPlanService(plans repository.PlanRepository, subs repository.SubscriptionRepository) PlanService {
	return &planService{plans: plans, subs: subs}
}

func (s *planService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Subscribe starts a subscription running from now for the plan's duration.
// A user holds at most one running subscription at a time.
func (s *planService) Subscribe(ctx context.Context, userID, planID string) (*domain.Subscription, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	now := time.Now().UTC()
	if _, err := s.subs.GetActiveByUser(ctx, userID, now); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check subscription: %w", err)
	}

	sub := &domain.Subscription{
		ID:       uuid.NewString(),
		UserID:   userID,
		PlanID:   plan.ID,
		Status:   domain.SubscriptionActive,
		StartsAt: now,
		EndsAt:   now.AddDate(0, 0, plan.DurationDays),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *planService) CurrentSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	sub, err := s.subs.GetActiveByUser(ctx, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return sub, nil
}
