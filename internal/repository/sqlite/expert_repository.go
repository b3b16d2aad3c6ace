package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

const createExpertsTable = `
CREATE TABLE IF NOT EXISTS experts (
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
	verification_status TEXT NOT NULL DEFAULT 'pending',
	login_attempts INTEGER NOT NULL DEFAULT 0,
	lock_until DATETIME NULL,
	last_login DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const expertColumns = `id, first_name, last_name, email, phone, password_hash, is_active, is_email_verified, profile_image, specialization, experience_years, rating, verification_status, login_attempts, lock_until, last_login, created_at, updated_at`

type ExpertRepository struct {
	db *sql.DB
}

func NewExpertRepository(db *sql.DB) repository.ExpertRepository {
	return &ExpertRepository{db: db}
}

func (r *ExpertRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExpertsTable); err != nil {
		return fmt.Errorf("create experts table: %w", err)
	}
	if err := r.ensureExpertColumns(ctx); err != nil {
		return err
	}
	return nil
}

// ensureExpertColumns upgrades databases created before the lockout and
// vetting columns existed.
func (r *ExpertRepository) ensureExpertColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(experts)`)
	if err != nil {
		return fmt.Errorf("describe experts table: %w", err)
	}
	defer rows.Close()

	columns := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pragma table info: %w", err)
	}

	addColumn := func(name, statement string) error {
		if _, exists := columns[name]; exists {
			return nil
		}
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
		return nil
	}

	if err := addColumn("verification_status", `ALTER TABLE experts ADD COLUMN verification_status TEXT NOT NULL DEFAULT 'pending'`); err != nil {
		return err
	}
	if err := addColumn("login_attempts", `ALTER TABLE experts ADD COLUMN login_attempts INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}
	if err := addColumn("lock_until", `ALTER TABLE experts ADD COLUMN lock_until DATETIME NULL`); err != nil {
		return err
	}
	return nil
}

func (r *ExpertRepository) Create(ctx context.Context, expert *domain.Expert) error {
	now := time.Now().UTC()
	expert.CreatedAt = now
	expert.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO experts (`+expertColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expert.ID,
		expert.FirstName,
		expert.LastName,
		expert.Email,
		expert.Phone,
		expert.PasswordHash,
		expert.IsActive,
		expert.IsEmailVerified,
		expert.ProfileImage,
		expert.Specialization,
		expert.ExperienceYears,
		expert.Rating,
		string(expert.VerificationStatus),
		expert.LoginAttempts,
		nullTime(expert.LockUntil),
		nullTime(expert.LastLogin),
		expert.CreatedAt,
		expert.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert expert: %w", err)
	}
	return nil
}

func (r *ExpertRepository) GetByEmail(ctx context.Context, email string) (*domain.Expert, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+expertColumns+`
FROM experts
WHERE email = ?`,
		email,
	)
	return scanExpert(row)
}

func (r *ExpertRepository) GetByID(ctx context.Context, id string) (*domain.Expert, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+expertColumns+`
FROM experts
WHERE id = ?`,
		id,
	)
	return scanExpert(row)
}

func (r *ExpertRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE experts
SET last_login=?, updated_at=?
WHERE id=?`,
		at.UTC(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update expert last login: %w", err)
	}
	return nil
}

func (r *ExpertRepository) UpdateProfileImage(ctx context.Context, id, key string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE experts
SET profile_image=?, updated_at=?
WHERE id=?`,
		key,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update expert profile image: %w", err)
	}
	return nil
}

// RecordFailedLogin bumps the attempt counter and, once it reaches
// maxAttempts, stamps lock_until. The single UPDATE keeps concurrent failed
// attempts from losing increments.
func (r *ExpertRepository) RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE experts
SET login_attempts = login_attempts + 1,
	lock_until = CASE WHEN login_attempts + 1 >= ? THEN ? ELSE lock_until END,
	updated_at = ?
WHERE id = ?`,
		maxAttempts,
		lockUntil.UTC(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record failed login rows affected: %w", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanExpert(row interface {
	Scan(dest ...any) error
}) (*domain.Expert, error) {
	var (
		expert    domain.Expert
		status    string
		lockUntil sql.NullTime
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&expert.ID,
		&expert.FirstName,
		&expert.LastName,
		&expert.Email,
		&expert.Phone,
		&expert.PasswordHash,
		&expert.IsActive,
		&expert.IsEmailVerified,
		&expert.ProfileImage,
		&expert.Specialization,
		&expert.ExperienceYears,
		&expert.Rating,
		&status,
		&expert.LoginAttempts,
		&lockUntil,
		&lastLogin,
		&expert.CreatedAt,
		&expert.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan expert: %w", err)
	}
	expert.VerificationStatus = domain.VerificationStatus(status)
	if lockUntil.Valid {
		t := lockUntil.Time
		expert.LockUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		expert.LastLogin = &t
	}
	return &expert, nil
}
