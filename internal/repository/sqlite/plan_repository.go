package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

const createPlansTable = `
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	price_cents INTEGER NOT NULL DEFAULT 0,
	duration_days INTEGER NOT NULL DEFAULT 30,
	features TEXT NOT NULL DEFAULT '[]',
	is_active INTEGER NOT NULL DEFAULT 1,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const planColumns = `id, name, description, price_cents, duration_days, features, is_active, sort_order, created_at, updated_at`

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) repository.PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPlansTable); err != nil {
		return fmt.Errorf("create plans table: %w", err)
	}
	return nil
}

// Upsert inserts the plan or refreshes its mutable fields, keyed by name
// so the default catalog can be re-applied on every boot.
func (r *PlanRepository) Upsert(ctx context.Context, plan *domain.Plan) error {
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("encode plan features: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO plans (`+planColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	description = excluded.description,
	price_cents = excluded.price_cents,
	duration_days = excluded.duration_days,
	features = excluded.features,
	is_active = excluded.is_active,
	sort_order = excluded.sort_order,
	updated_at = excluded.updated_at`,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.PriceCents,
		plan.DurationDays,
		string(features),
		plan.IsActive,
		plan.SortOrder,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+planColumns+`
FROM plans
WHERE id = ?`,
		id,
	)
	return scanPlan(row)
}

func (r *PlanRepository) ListActive(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+planColumns+`
FROM plans
WHERE is_active = 1
ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

func scanPlan(row interface {
	Scan(dest ...any) error
}) (*domain.Plan, error) {
	var (
		plan     domain.Plan
		features string
	)
	if err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Description,
		&plan.PriceCents,
		&plan.DurationDays,
		&features,
		&plan.IsActive,
		&plan.SortOrder,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	if err := json.Unmarshal([]byte(features), &plan.Features); err != nil {
		return nil, fmt.Errorf("decode plan features: %w", err)
	}
	return &plan, nil
}
