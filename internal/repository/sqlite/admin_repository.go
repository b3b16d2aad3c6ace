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

const createAdminsTable = `
CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin',
	is_active INTEGER NOT NULL DEFAULT 1,
	last_login DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const adminColumns = `id, first_name, last_name, email, password_hash, role, is_active, last_login, created_at, updated_at`

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAdminsTable); err != nil {
		return fmt.Errorf("create admins table: %w", err)
	}
	return nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO admins (`+adminColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		admin.ID,
		admin.FirstName,
		admin.LastName,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.IsActive,
		nullTime(admin.LastLogin),
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+adminColumns+`
FROM admins
WHERE email = ?`,
		email,
	)
	return scanAdmin(row)
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+adminColumns+`
FROM admins
WHERE id = ?`,
		id,
	)
	return scanAdmin(row)
}

func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE admins
SET last_login=?, updated_at=?
WHERE id=?`,
		at.UTC(),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return nil
}

func scanAdmin(row interface {
	Scan(dest ...any) error
}) (*domain.Admin, error) {
	var (
		admin     domain.Admin
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&admin.ID,
		&admin.FirstName,
		&admin.LastName,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.IsActive,
		&lastLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		admin.LastLogin = &t
	}
	return &admin, nil
}
