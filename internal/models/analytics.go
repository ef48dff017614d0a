package models

import (
	"time"

	"github.com/google/uuid"
)

// The analytics types below are read models — shapes produced by
// aggregation queries, never written back. Averages over an empty set
// are nil (no data), not zero; percentages over an empty set are 0,
// never a division fault. That distinction is load-bearing for the
// dashboard, which renders "no data" and "rank 0" very differently.

// KeywordWithStats is a keyword row decorated with its aggregate
// collection stats, as returned by the keyword list endpoint.
type KeywordWithStats struct {
	Keyword
	GeoResultsCount int        `json:"geo_results_count"`
	AvgRanking      *float64   `json:"avg_ranking"`
	LastGeoCheck    *time.Time `json:"last_geo_check"`
}

// RankingTrendPoint is one day of the overview trend line.
type RankingTrendPoint struct {
	Date       time.Time `json:"date"`
	AvgRanking float64   `json:"avg_ranking"`
}

// DashboardOverview is the counts block on the dashboard.
type DashboardOverview struct {
	TotalKeywords    int `json:"total_keywords"`
	TodayGeoResults  int `json:"today_geo_results"`
	ActiveAlerts     int `json:"active_alerts"`
	TotalCompetitors int `json:"total_competitors"`
}

// KeywordPerformance ranks a keyword by how well it performs across
// collected results. AvgRanking nil means the keyword has no results
// yet; such rows sort after ranked ones.
type KeywordPerformance struct {
	KeywordID    uuid.UUID  `json:"keyword_id"`
	Keyword      string     `json:"keyword"`
	SearchVolume *int       `json:"search_volume"`
	AvgRanking   *float64   `json:"avg_ranking"`
	TotalResults int        `json:"total_results"`
	CitedCount   int        `json:"cited_count"`
	CitationRate float64    `json:"citation_rate"`
	LastUpdated  *time.Time `json:"last_updated"`
}

// CompetitorStats is one row of the competitor-analysis card, scoped
// to mentions that occurred within the requesting user's results.
type CompetitorStats struct {
	CompetitorID uuid.UUID `json:"competitor_id"`
	CompanyName  string    `json:"company_name"`
	Domain       string    `json:"domain"`
	MentionCount int       `json:"mention_count"`
	AvgRanking   *float64  `json:"avg_ranking"`
}

// RecentAlert is an alert log entry joined with its rule's name.
type RecentAlert struct {
	ID          uuid.UUID `json:"id"`
	AlertType   string    `json:"alert_type"`
	Message     string    `json:"message"`
	RuleName    string    `json:"rule_name"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// ShareOfVoice is the fraction of the user's monitored queries in
// which their brand was cited, over a window.
type ShareOfVoice struct {
	TotalQueries  int     `json:"total_queries"`
	CitedQueries  int     `json:"cited_queries"`
	SovPercentage float64 `json:"sov_percentage"`
	Period        string  `json:"period"`
}
