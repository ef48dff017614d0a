package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

// CompetitorStore manages the global competitor reference set. Note
// the absence of a user_id filter — competitors are shared across all
// tenants by design, which is why mutation is admin-gated upstream.
type CompetitorStore struct {
	pool *pgxpool.Pool
}

func NewCompetitorStore(pool *pgxpool.Pool) *CompetitorStore {
	return &CompetitorStore{pool: pool}
}

const competitorColumns = `id, company_name, domain, brand_keywords, is_active, created_at`

func scanCompetitor(row pgx.Row) (*models.Competitor, error) {
	var c models.Competitor
	err := row.Scan(
		&c.ID,
		&c.CompanyName,
		&c.Domain,
		&c.BrandKeywords,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CompetitorStore) List(ctx context.Context) ([]models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors ORDER BY company_name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list competitors: %w", err)
	}
	defer rows.Close()

	competitors := make([]models.Competitor, 0)
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(
			&c.ID,
			&c.CompanyName,
			&c.Domain,
			&c.BrandKeywords,
			&c.IsActive,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitors: %w", err)
	}

	return competitors, nil
}

func (s *CompetitorStore) Create(ctx context.Context, input repository.CompetitorInput) (*models.Competitor, error) {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	if input.BrandKeywords == nil {
		input.BrandKeywords = []string{}
	}

	query := `
		INSERT INTO competitors (id, company_name, domain, brand_keywords, is_active, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, now())
		RETURNING ` + competitorColumns

	c, err := scanCompetitor(s.pool.QueryRow(ctx, query,
		input.CompanyName, input.Domain, input.BrandKeywords, active))
	if err != nil {
		return nil, fmt.Errorf("insert competitor: %w", err)
	}
	return c, nil
}

func (s *CompetitorStore) Update(ctx context.Context, competitorID uuid.UUID, input repository.CompetitorInput) (*models.Competitor, error) {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	if input.BrandKeywords == nil {
		input.BrandKeywords = []string{}
	}

	query := `
		UPDATE competitors
		SET company_name = $1, domain = $2, brand_keywords = $3, is_active = $4
		WHERE id = $5
		RETURNING ` + competitorColumns

	c, err := scanCompetitor(s.pool.QueryRow(ctx, query,
		input.CompanyName, input.Domain, input.BrandKeywords, active, competitorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update competitor: %w", err)
	}
	return c, nil
}

func (s *CompetitorStore) Delete(ctx context.Context, competitorID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM competitors WHERE id = $1`, competitorID)
	if err != nil {
		return fmt.Errorf("delete competitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
