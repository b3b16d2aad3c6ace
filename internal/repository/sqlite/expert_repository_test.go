package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

func newExpertRepo(t *testing.T) repository.ExpertRepository {
	t.Helper()
	repo := NewExpertRepository(newTestDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func testExpert() *domain.Expert {
	return &domain.Expert{
		ID:                 "expert-1",
		FirstName:          "Maya",
		LastName:           "Rao",
		Email:              "maya@example.com",
		PasswordHash:       "$2a$10$hash",
		IsActive:           true,
		Specialization:     "nutrition",
		ExperienceYears:    7,
		Rating:             4.6,
		VerificationStatus: domain.VerificationPending,
	}
}

func TestExpertRoundTrip(t *testing.T) {
	repo := newExpertRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testExpert()))

	got, err := repo.GetByEmail(ctx, "maya@example.com")
	require.NoError(t, err)
	require.Equal(t, "expert-1", got.ID)
	require.Equal(t, "nutrition", got.Specialization)
	require.Equal(t, 7, got.ExperienceYears)
	require.Equal(t, 4.6, got.Rating)
	require.Equal(t, domain.VerificationPending, got.VerificationStatus)
	require.Zero(t, got.LoginAttempts)
	require.Nil(t, got.LockUntil)
}

func TestExpertDuplicateEmail(t *testing.T) {
	repo := newExpertRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testExpert()))

	dup := testExpert()
	dup.ID = "expert-2"
	require.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)
}

func TestExpertInitIdempotent(t *testing.T) {
	repo := newExpertRepo(t)
	require.NoError(t, repo.Init(context.Background()))
}

func TestExpertInitUpgradesLegacyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// schema from before lockout and vetting were tracked
	_, err := db.ExecContext(ctx, `
CREATE TABLE experts (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	is_email_verified INTEGER NOT NULL DEFAULT 0,
	profile_image TEXT NOT NULL DEFAULT '',
	specialization TEXT NOT NULL DEFAULT '',
	experience_years INTEGER NOT NULL DEFAULT 0,
	rating REAL NOT NULL DEFAULT 0,
	last_login DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
INSERT INTO experts (id, email, password_hash, created_at, updated_at)
VALUES ('expert-old', 'old@example.com', 'hash', ?, ?)`, now, now)
	require.NoError(t, err)

	repo := NewExpertRepository(db)
	require.NoError(t, repo.Init(ctx))

	got, err := repo.GetByEmail(ctx, "old@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.VerificationPending, got.VerificationStatus)
	require.Zero(t, got.LoginAttempts)
	require.Nil(t, got.LockUntil)
}

func TestExpertRecordFailedLogin(t *testing.T) {
	repo := newExpertRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testExpert()))

	lockUntil := time.Now().UTC().Add(15 * time.Minute)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.RecordFailedLogin(ctx, "expert-1", 5, lockUntil))
	}

	got, err := repo.GetByID(ctx, "expert-1")
	require.NoError(t, err)
	require.Equal(t, 4, got.LoginAttempts)
	require.Nil(t, got.LockUntil)
	require.False(t, got.Locked(time.Now()))

	require.NoError(t, repo.RecordFailedLogin(ctx, "expert-1", 5, lockUntil))

	got, err = repo.GetByID(ctx, "expert-1")
	require.NoError(t, err)
	require.Equal(t, 5, got.LoginAttempts)
	require.NotNil(t, got.LockUntil)
	require.WithinDuration(t, lockUntil, *got.LockUntil, 2*time.Second)
	require.True(t, got.Locked(time.Now()))
}

func TestExpertRecordFailedLoginUnknown(t *testing.T) {
	repo := newExpertRepo(t)

	err := repo.RecordFailedLogin(context.Background(), "ghost", 5, time.Now().Add(15*time.Minute))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExpertUpdateLastLogin(t *testing.T) {
	repo := newExpertRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testExpert()))

	at := time.Now().UTC()
	require.NoError(t, repo.UpdateLastLogin(ctx, "expert-1", at))

	got, err := repo.GetByID(ctx, "expert-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	require.WithinDuration(t, at, *got.LastLogin, 2*time.Second)
}
