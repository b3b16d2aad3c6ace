package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

// Seeder applies the baseline records the platform expects at boot: the
// super admin, the permission catalog, and the default plan catalog. Every
// step is idempotent so it can run on each start.
type Seeder struct {
	admins      repository.AdminRepository
	permissions repository.PermissionRepository
	plans       repository.PlanRepository
	logger      *logrus.Logger
}

func New(
	admins repository.AdminRepository,
	permissions repository.PermissionRepository,
	plans repository.PlanRepository,
	logger *logrus.Logger,
) *Seeder {
	return &Seeder{
		admins:      admins,
		permissions: permissions,
		plans:       plans,
		logger:      logger,
	}
}

func (s *Seeder) Run(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.seedAdmin(ctx, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.seedPermissions(ctx); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := s.seedPlans(ctx); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		s.logger.Warn("admin seed skipped: email or password not configured")
		return nil
	}

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		FirstName:    "Super",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}
	s.logger.WithField("email", email).Info("seeded super admin")
	return nil
}

func (s *Seeder) seedPermissions(ctx context.Context) error {
	for _, p := range defaultPermissions {
		perm := p
		perm.ID = uuid.NewString()
		if err := s.permissions.Upsert(ctx, &perm); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPlans(ctx context.Context) error {
	for _, p := range defaultPlans {
		plan := p
		plan.ID = uuid.NewString()
		if err := s.plans.Upsert(ctx, &plan); err != nil {
			return err
		}
	}
	return nil
}

var defaultPermissions = []domain.Permission{
	{Name: "view_users", Description: "List and inspect standard accounts", Module: "users"},
	{Name: "manage_users", Description: "Activate, deactivate, and edit standard accounts", Module: "users"},
	{Name: "view_experts", Description: "List and inspect expert accounts", Module: "experts"},
	{Name: "verify_experts", Description: "Approve or reject expert verification", Module: "experts"},
	{Name: "manage_experts", Description: "Activate, deactivate, and edit expert accounts", Module: "experts"},
	{Name: "manage_plans", Description: "Create and edit wellness plans", Module: "plans"},
	{Name: "view_subscriptions", Description: "Inspect user subscriptions", Module: "subscriptions"},
	{Name: "manage_permissions", Description: "Assign roles and permissions", Module: "settings"},
}

var defaultPlans = []domain.Plan{
	{
		Name:         "Basic",
		Description:  "Access to the wellness library and community sessions",
		PriceCents:   0,
		DurationDays: 30,
		Features:     []string{"Wellness library", "Community sessions"},
		IsActive:     true,
		SortOrder:    1,
	},
	{
		Name:         "Standard",
		Description:  "Everything in Basic plus monthly expert consultations",
		PriceCents:   1999,
		DurationDays: 30,
		Features:     []string{"Wellness library", "Community sessions", "2 expert consultations per month"},
		IsActive:     true,
		SortOrder:    2,
	},
	{
		Name:         "Premium",
		Description:  "Unlimited expert consultations and a personal wellness program",
		PriceCents:   4999,
		DurationDays: 30,
		Features:     []string{"Wellness library", "Community sessions", "Unlimited consultations", "Personal program"},
		IsActive:     true,
		SortOrder:    3,
	},
}
