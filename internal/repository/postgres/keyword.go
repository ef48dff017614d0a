package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

type KeywordStore struct {
	pool *pgxpool.Pool
}

func NewKeywordStore(pool *pgxpool.Pool) *KeywordStore {
	return &KeywordStore{pool: pool}
}

const keywordColumns = `id, user_id, keyword, search_volume, difficulty, status, search_config, created_at, updated_at`

func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var k models.Keyword
	err := row.Scan(
		&k.ID,
		&k.UserID,
		&k.Keyword,
		&k.SearchVolume,
		&k.Difficulty,
		&k.Status,
		&k.SearchConfig,
		&k.CreatedAt,
		&k.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// sortColumns is the closed set of sortable columns. Anything not in
// this map falls back to created_at — client input never reaches the
// ORDER BY clause directly.
var sortColumns = map[string]string{
	"created_at":    "k.created_at",
	"updated_at":    "k.updated_at",
	"keyword":       "k.keyword",
	"search_volume": "k.search_volume",
	"difficulty":    "k.difficulty",
	"status":        "k.status",
}

func (s *KeywordStore) List(ctx context.Context, userID uuid.UUID, params repository.KeywordListParams) ([]models.KeywordWithStats, int, error) {
	where := `WHERE k.user_id = $1`
	args := []any{userID}
	if params.Search != "" {
		where += ` AND k.keyword ILIKE $2`
		args = append(args, "%"+params.Search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM keywords k ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count keywords: %w", err)
	}

	orderCol, ok := sortColumns[params.SortBy]
	if !ok {
		orderCol = "k.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT k.id, k.user_id, k.keyword, k.search_volume, k.difficulty, k.status,
		       k.search_config, k.created_at, k.updated_at,
		       COUNT(gr.id) AS geo_results_count,
		       AVG(gr.ranking) AS avg_ranking,
		       MAX(gr.query_timestamp) AS last_geo_check
		FROM keywords k
		LEFT JOIN geo_results gr ON gr.keyword_id = k.id
		%s
		GROUP BY k.id
		ORDER BY %s %s NULLS LAST
		LIMIT $%d OFFSET $%d`,
		where, orderCol, direction, len(args)+1, len(args)+2)

	offset := (params.Page - 1) * params.Limit
	args = append(args, params.Limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	keywords := make([]models.KeywordWithStats, 0)
	for rows.Next() {
		var k models.KeywordWithStats
		if err := rows.Scan(
			&k.ID,
			&k.UserID,
			&k.Keyword.Keyword,
			&k.SearchVolume,
			&k.Difficulty,
			&k.Status,
			&k.SearchConfig,
			&k.CreatedAt,
			&k.UpdatedAt,
			&k.GeoResultsCount,
			&k.AvgRanking,
			&k.LastGeoCheck,
		); err != nil {
			return nil, 0, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate keywords: %w", err)
	}

	return keywords, total, nil
}

func (s *KeywordStore) Create(ctx context.Context, userID uuid.UUID, input repository.KeywordInput) (*models.Keyword, error) {
	query := `
		INSERT INTO keywords (id, user_id, keyword, search_volume, difficulty, status, search_config, created_at, updated_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, 'active', $5, now(), now())
		RETURNING ` + keywordColumns

	k, err := scanKeyword(s.pool.QueryRow(ctx, query,
		userID, input.Keyword, input.SearchVolume, input.Difficulty, input.SearchConfig))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateKeyword
		}
		return nil, fmt.Errorf("insert keyword: %w", err)
	}
	return k, nil
}

func (s *KeywordStore) GetByID(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) (*models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE id = $1 AND user_id = $2`

	k, err := scanKeyword(s.pool.QueryRow(ctx, query, keywordID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get keyword: %w", err)
	}
	return k, nil
}

// Update applies a sparse patch. The SET clause is assembled from the
// typed patch fields only — there is no path from a raw request key to
// SQL text. updated_at is always bumped, even for an empty patch.
func (s *KeywordStore) Update(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID, patch repository.KeywordPatch) (*models.Keyword, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Keyword != nil {
		add("keyword", *patch.Keyword)
	}
	if patch.SearchVolume != nil {
		add("search_volume", *patch.SearchVolume)
	}
	if patch.Difficulty != nil {
		add("difficulty", *patch.Difficulty)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.SearchConfig != nil {
		add("search_config", patch.SearchConfig)
	}

	args = append(args, keywordID, userID)
	query := fmt.Sprintf(`
		UPDATE keywords
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+keywordColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	k, err := scanKeyword(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateKeyword
		}
		return nil, fmt.Errorf("update keyword: %w", err)
	}
	return k, nil
}

// Delete removes a keyword and everything hanging off it in one
// transaction: citations and competitor mentions under its collected
// results, the results themselves, then the keyword row. All or
// nothing per keyword.
func (s *KeywordStore) Delete(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete keyword: %w", err)
	}
	// Rollback after Commit is a no-op; this guarantees the connection
	// goes back to the pool on every exit path.
	defer tx.Rollback(ctx)

	var owned uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM keywords WHERE id = $1 AND user_id = $2`,
		keywordID, userID).Scan(&owned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("check keyword ownership: %w", err)
	}

	if err := deleteKeywordFacts(ctx, tx, []uuid.UUID{keywordID}); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM keywords WHERE id = $1 AND user_id = $2`, keywordID, userID); err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete keyword: %w", err)
	}
	return nil
}

// BatchCreate runs the whole batch inside one transaction for atomic
// visibility, but treats per-row rejections (blank text, out-of-range
// numbers, duplicates) as collected results, not rollback triggers.
// Each insert runs in a savepoint so a constraint violation on one row
// can't poison the surrounding transaction.
func (s *KeywordStore) BatchCreate(ctx context.Context, userID uuid.UUID, inputs []repository.KeywordInput) ([]models.Keyword, []repository.BatchRowError, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin batch create: %w", err)
	}
	defer tx.Rollback(ctx)

	created := make([]models.Keyword, 0, len(inputs))
	rowErrors := make([]repository.BatchRowError, 0)

	for _, input := range inputs {
		if msg := validateKeywordInput(input); msg != "" {
			rowErrors = append(rowErrors, repository.BatchRowError{Keyword: input.Keyword, Error: msg})
			continue
		}

		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("begin savepoint: %w", err)
		}

		k, err := scanKeyword(sp.QueryRow(ctx, `
			INSERT INTO keywords (id, user_id, keyword, search_volume, difficulty, status, search_config, created_at, updated_at)
			VALUES (uuid_generate_v4(), $1, $2, $3, $4, 'active', $5, now(), now())
			RETURNING `+keywordColumns,
			userID, input.Keyword, input.SearchVolume, input.Difficulty, input.SearchConfig))
		if err != nil {
			sp.Rollback(ctx)
			if isUniqueViolation(err) {
				rowErrors = append(rowErrors, repository.BatchRowError{Keyword: input.Keyword, Error: "keyword already exists"})
				continue
			}
			return nil, nil, fmt.Errorf("insert keyword %q: %w", input.Keyword, err)
		}
		if err := sp.Commit(ctx); err != nil {
			return nil, nil, fmt.Errorf("commit savepoint: %w", err)
		}
		created = append(created, *k)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit batch create: %w", err)
	}
	return created, rowErrors, nil
}

func validateKeywordInput(input repository.KeywordInput) string {
	if strings.TrimSpace(input.Keyword) == "" {
		return "keyword must not be empty"
	}
	if input.SearchVolume != nil && *input.SearchVolume < 0 {
		return "search volume must not be negative"
	}
	if input.Difficulty != nil && (*input.Difficulty < 0 || *input.Difficulty > 100) {
		return "difficulty must be between 0 and 100"
	}
	return ""
}

// BatchDelete silently drops candidate ids the user doesn't own — no
// error and no acknowledgement that those ids exist at all.
func (s *KeywordStore) BatchDelete(ctx context.Context, userID uuid.UUID, keywordIDs []uuid.UUID) ([]uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch delete: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM keywords WHERE user_id = $1 AND id = ANY($2)`,
		userID, keywordIDs)
	if err != nil {
		return nil, fmt.Errorf("filter owned keywords: %w", err)
	}
	owned := make([]uuid.UUID, 0, len(keywordIDs))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan keyword id: %w", err)
		}
		owned = append(owned, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword ids: %w", err)
	}

	if len(owned) > 0 {
		if err := deleteKeywordFacts(ctx, tx, owned); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM keywords WHERE user_id = $1 AND id = ANY($2)`,
			userID, owned); err != nil {
			return nil, fmt.Errorf("batch delete keywords: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch delete: %w", err)
	}
	return owned, nil
}

// deleteKeywordFacts removes the derived-fact rows under a set of
// keywords, children first. Required where the store has no ON DELETE
// CASCADE on these edges.
func deleteKeywordFacts(ctx context.Context, tx pgx.Tx, keywordIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM citations
		WHERE geo_result_id IN (SELECT id FROM geo_results WHERE keyword_id = ANY($1))`,
		keywordIDs); err != nil {
		return fmt.Errorf("delete citations: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM competitor_mentions
		WHERE geo_result_id IN (SELECT id FROM geo_results WHERE keyword_id = ANY($1))`,
		keywordIDs); err != nil {
		return fmt.Errorf("delete competitor mentions: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM geo_results WHERE keyword_id = ANY($1)`, keywordIDs); err != nil {
		return fmt.Errorf("delete geo results: %w", err)
	}
	return nil
}
