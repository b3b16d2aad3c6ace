package seed

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository/sqlite"
)

type seedFixture struct {
	seeder      *Seeder
	admins      repository.AdminRepository
	permissions repository.PermissionRepository
	plans       repository.PlanRepository
}

func newSeedFixture(t *testing.T) *seedFixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	admins := sqlite.NewAdminRepository(db)
	require.NoError(t, admins.Init(ctx))
	permissions := sqlite.NewPermissionRepository(db)
	require.NoError(t, permissions.Init(ctx))
	plans := sqlite.NewPlanRepository(db)
	require.NoError(t, plans.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &seedFixture{
		seeder:      New(admins, permissions, plans, logger),
		admins:      admins,
		permissions: permissions,
		plans:       plans,
	}
}

func TestRunSeedsBaseline(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.seeder.Run(ctx, "Admin@Example.com", "super-secret"))

	admin, err := f.admins.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, "super_admin", admin.Role)
	require.True(t, admin.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("super-secret")))

	perms, err := f.permissions.List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(defaultPermissions))

	plans, err := f.plans.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, len(defaultPlans))
	require.Equal(t, "Basic", plans[0].Name)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.seeder.Run(ctx, "admin@example.com", "super-secret"))
	require.NoError(t, f.seeder.Run(ctx, "admin@example.com", "super-secret"))

	admin, err := f.admins.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	firstID := admin.ID

	require.NoError(t, f.seeder.Run(ctx, "admin@example.com", "changed-password"))
	admin, err = f.admins.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	// existing admin is left alone, including its password
	require.Equal(t, firstID, admin.ID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("super-secret")))

	perms, err := f.permissions.List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(defaultPermissions))

	plans, err := f.plans.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, len(defaultPlans))
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	f := newSeedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.seeder.Run(ctx, "", ""))

	_, err := f.admins.GetByEmail(ctx, "admin@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// catalog seeding still runs
	perms, err := f.permissions.List(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(defaultPermissions))
}
