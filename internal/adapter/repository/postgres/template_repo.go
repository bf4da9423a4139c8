package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nusabooks/nusabooks/internal/domain"
)

// TemplateRepository implements usecase.TemplateRepository.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// GetByID retrieves a template with its lines in order.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, active, use_count, last_used_at, created_at, updated_at
		 FROM templates WHERE id = $1`, id)

	var t domain.Template
	err := row.Scan(&t.ID, &t.Name, &t.Active, &t.UseCount, &t.LastUsedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}

		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, account_id, side, formula, description, line_no
		 FROM template_lines WHERE template_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.TemplateLine
		err := rows.Scan(&l.ID, &l.TemplateID, &l.AccountID, &l.Side, &l.Formula, &l.Description, &l.LineNo)
		if err != nil {
			return nil, err
		}

		t.Lines = append(t.Lines, l)
	}

	return &t, rows.Err()
}

// List retrieves templates ordered by name, without lines.
func (r *TemplateRepository) List(ctx context.Context, limit, offset int) ([]*domain.Template, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, active, use_count, last_used_at, created_at, updated_at
		 FROM templates ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		var t domain.Template
		err := rows.Scan(&t.ID, &t.Name, &t.Active, &t.UseCount, &t.LastUsedAt, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}

		templates = append(templates, &t)
	}

	return templates, rows.Err()
}

// RecordUsage increments the use counter and stamps last-used time.
func (r *TemplateRepository) RecordUsage(ctx context.Context, id string, usedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE templates SET use_count = use_count + 1, last_used_at = $1, updated_at = $1 WHERE id = $2`,
		timeToPgTimestamptz(usedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}

	return nil
}
