package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

const createPermissionsTable = `
CREATE TABLE IF NOT EXISTS permissions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	module TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

type PermissionRepository struct {
	db *sql.DB
}

func NewPermissionRepository(db *sql.DB) repository.PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPermissionsTable); err != nil {
		return fmt.Errorf("create permissions table: %w", err)
	}
	return nil
}

// Upsert inserts the permission or refreshes its description and module,
// keyed by name so seeding can run on every boot.
func (r *PermissionRepository) Upsert(ctx context.Context, perm *domain.Permission) error {
	if perm.CreatedAt.IsZero() {
		perm.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO permissions (id, name, description, module, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	description = excluded.description,
	module = excluded.module`,
		perm.ID,
		perm.Name,
		perm.Description,
		perm.Module,
		perm.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}
	return nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, module, created_at
FROM permissions
ORDER BY module, name`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description, &perm.Module, &perm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}
	return perms, nil
}
