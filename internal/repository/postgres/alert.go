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

type AlertRuleStore struct {
	pool *pgxpool.Pool
}

func NewAlertRuleStore(pool *pgxpool.Pool) *AlertRuleStore {
	return &AlertRuleStore{pool: pool}
}

const alertRuleColumns = `id, user_id, rule_name, conditions, notification_config, is_active, created_at`

func scanAlertRule(row pgx.Row) (*models.AlertRule, error) {
	var r models.AlertRule
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.RuleName,
		&r.Conditions,
		&r.NotificationConfig,
		&r.IsActive,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *AlertRuleStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AlertRule, error) {
	query := `SELECT ` + alertRuleColumns + ` FROM alert_rules WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list alert rules: %w", err)
	}
	defer rows.Close()

	rules := make([]models.AlertRule, 0)
	for rows.Next() {
		var r models.AlertRule
		if err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.RuleName,
			&r.Conditions,
			&r.NotificationConfig,
			&r.IsActive,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rules: %w", err)
	}

	return rules, nil
}

func (s *AlertRuleStore) Create(ctx context.Context, userID uuid.UUID, input repository.AlertRuleInput) (*models.AlertRule, error) {
	query := `
		INSERT INTO alert_rules (id, user_id, rule_name, conditions, notification_config, is_active, created_at)
		VALUES (uuid_generate_v4(), $1, $2, $3, $4, true, now())
		RETURNING ` + alertRuleColumns

	r, err := scanAlertRule(s.pool.QueryRow(ctx, query,
		userID, input.RuleName, input.Conditions, input.NotificationConfig))
	if err != nil {
		return nil, fmt.Errorf("insert alert rule: %w", err)
	}
	return r, nil
}

func (s *AlertRuleStore) Update(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, input repository.AlertRuleInput) (*models.AlertRule, error) {
	query := `
		UPDATE alert_rules
		SET rule_name = $1, conditions = $2, notification_config = $3
		WHERE id = $4 AND user_id = $5
		RETURNING ` + alertRuleColumns

	r, err := scanAlertRule(s.pool.QueryRow(ctx, query,
		input.RuleName, input.Conditions, input.NotificationConfig, ruleID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update alert rule: %w", err)
	}
	return r, nil
}

func (s *AlertRuleStore) SetActive(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, active bool) (*models.AlertRule, error) {
	query := `
		UPDATE alert_rules
		SET is_active = $1
		WHERE id = $2 AND user_id = $3
		RETURNING ` + alertRuleColumns

	r, err := scanAlertRule(s.pool.QueryRow(ctx, query, active, ruleID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("toggle alert rule: %w", err)
	}
	return r, nil
}

func (s *AlertRuleStore) Delete(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM alert_rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
	if err != nil {
		return fmt.Errorf("delete alert rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
