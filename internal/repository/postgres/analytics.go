package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalith-99/geoscope/internal/models"
)

// AnalyticsStore computes derived metrics with aggregate SQL over the
// fact tables. Every query carries the user id filter; percentage
// math guards the zero denominator, and averages stay NULL (nil)
// when there is nothing to average.
type AnalyticsStore struct {
	pool *pgxpool.Pool
}

func NewAnalyticsStore(pool *pgxpool.Pool) *AnalyticsStore {
	return &AnalyticsStore{pool: pool}
}

func (s *AnalyticsStore) Overview(ctx context.Context, userID uuid.UUID) (*models.DashboardOverview, error) {
	var o models.DashboardOverview

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM keywords WHERE user_id = $1`, userID).Scan(&o.TotalKeywords)
	if err != nil {
		return nil, fmt.Errorf("count keywords: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM geo_results gr
		JOIN keywords k ON k.id = gr.keyword_id
		WHERE k.user_id = $1 AND gr.query_timestamp >= date_trunc('day', now())`,
		userID).Scan(&o.TodayGeoResults)
	if err != nil {
		return nil, fmt.Errorf("count today's results: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alert_rules WHERE user_id = $1 AND is_active = true`,
		userID).Scan(&o.ActiveAlerts)
	if err != nil {
		return nil, fmt.Errorf("count active alerts: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competitors WHERE is_active = true`).Scan(&o.TotalCompetitors)
	if err != nil {
		return nil, fmt.Errorf("count competitors: %w", err)
	}

	return &o, nil
}

func (s *AnalyticsStore) RankingTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.RankingTrendPoint, error) {
	query := `
		SELECT date_trunc('day', gr.query_timestamp) AS day, AVG(gr.ranking) AS avg_ranking
		FROM geo_results gr
		JOIN keywords k ON k.id = gr.keyword_id
		WHERE k.user_id = $1
		  AND gr.query_timestamp >= now() - make_interval(days => $2)
		  AND gr.ranking IS NOT NULL
		GROUP BY day
		ORDER BY day`

	rows, err := s.pool.Query(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("ranking trend: %w", err)
	}
	defer rows.Close()

	trend := make([]models.RankingTrendPoint, 0)
	for rows.Next() {
		var p models.RankingTrendPoint
		if err := rows.Scan(&p.Date, &p.AvgRanking); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		trend = append(trend, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend: %w", err)
	}

	return trend, nil
}

// KeywordPerformance orders by avg ranking ascending with NULLS LAST:
// unranked keywords trail ranked ones instead of floating to the top.
func (s *AnalyticsStore) KeywordPerformance(ctx context.Context, userID uuid.UUID, limit int) ([]models.KeywordPerformance, error) {
	query := `
		SELECT k.id,
		       k.keyword,
		       k.search_volume,
		       AVG(gr.ranking) AS avg_ranking,
		       COUNT(gr.id) AS total_results,
		       COUNT(gr.id) FILTER (WHERE gr.is_cited) AS cited_count,
		       MAX(gr.query_timestamp) AS last_updated
		FROM keywords k
		LEFT JOIN geo_results gr ON gr.keyword_id = k.id
		WHERE k.user_id = $1
		GROUP BY k.id, k.keyword, k.search_volume
		ORDER BY avg_ranking ASC NULLS LAST
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword performance: %w", err)
	}
	defer rows.Close()

	performance := make([]models.KeywordPerformance, 0)
	for rows.Next() {
		var p models.KeywordPerformance
		if err := rows.Scan(
			&p.KeywordID,
			&p.Keyword,
			&p.SearchVolume,
			&p.AvgRanking,
			&p.TotalResults,
			&p.CitedCount,
			&p.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}
		if p.TotalResults > 0 {
			p.CitationRate = float64(p.CitedCount) / float64(p.TotalResults) * 100
		}
		performance = append(performance, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance: %w", err)
	}

	return performance, nil
}

// CompetitorAnalysis counts mentions of each (global) competitor, but
// only mentions that occurred inside this user's collected results —
// the tenant filter rides on the aggregates, not on the competitor
// table. A competitor whose mentions all belong to other tenants
// therefore reports a zero count, same as one never mentioned at all.
func (s *AnalyticsStore) CompetitorAnalysis(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompetitorStats, error) {
	query := `
		SELECT c.id,
		       c.company_name,
		       c.domain,
		       COUNT(cm.id) FILTER (WHERE k.user_id = $1) AS mention_count,
		       AVG(gr.ranking) FILTER (WHERE k.user_id = $1) AS avg_ranking
		FROM competitors c
		LEFT JOIN competitor_mentions cm ON cm.competitor_id = c.id
		LEFT JOIN geo_results gr ON gr.id = cm.geo_result_id
		LEFT JOIN keywords k ON k.id = gr.keyword_id
		WHERE c.is_active = true
		GROUP BY c.id, c.company_name, c.domain
		ORDER BY mention_count DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("competitor analysis: %w", err)
	}
	defer rows.Close()

	stats := make([]models.CompetitorStats, 0)
	for rows.Next() {
		var cs models.CompetitorStats
		if err := rows.Scan(
			&cs.CompetitorID,
			&cs.CompanyName,
			&cs.Domain,
			&cs.MentionCount,
			&cs.AvgRanking,
		); err != nil {
			return nil, fmt.Errorf("scan competitor stats: %w", err)
		}
		stats = append(stats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitor stats: %w", err)
	}

	return stats, nil
}

func (s *AnalyticsStore) RecentAlerts(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentAlert, error) {
	query := `
		SELECT al.id, al.alert_type, al.message, ar.rule_name, al.triggered_at
		FROM alert_logs al
		JOIN alert_rules ar ON ar.id = al.alert_rule_id
		WHERE ar.user_id = $1
		ORDER BY al.triggered_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]models.RecentAlert, 0)
	for rows.Next() {
		var a models.RecentAlert
		if err := rows.Scan(&a.ID, &a.AlertType, &a.Message, &a.RuleName, &a.TriggeredAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}

	return alerts, nil
}

// ShareOfVoice is cited/total*100 over the window. Zero collected
// results yields a 0 percentage, never a division fault.
func (s *AnalyticsStore) ShareOfVoice(ctx context.Context, userID uuid.UUID, days int) (*models.ShareOfVoice, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE gr.is_cited) AS cited
		FROM geo_results gr
		JOIN keywords k ON k.id = gr.keyword_id
		WHERE k.user_id = $1
		  AND gr.query_timestamp >= now() - make_interval(days => $2)`

	sov := models.ShareOfVoice{
		Period: fmt.Sprintf("%dd", days),
	}
	if err := s.pool.QueryRow(ctx, query, userID, days).Scan(&sov.TotalQueries, &sov.CitedQueries); err != nil {
		return nil, fmt.Errorf("share of voice: %w", err)
	}
	if sov.TotalQueries > 0 {
		sov.SovPercentage = float64(sov.CitedQueries) / float64(sov.TotalQueries) * 100
	}
	return &sov, nil
}
