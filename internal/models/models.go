package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed enumeration. Free-form role strings were the source
// of "falls through to undefined" bugs in lookup maps, so every place
// that branches on a role goes through these constants.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleGeoAnalyst   Role = "geo_analyst"
	RoleBusinessUser Role = "business_user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGeoAnalyst, RoleBusinessUser:
		return true
	}
	return false
}

// UserStatus gates authentication: only active accounts may log in.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// User is a principal — the tenant boundary of the whole system.
// Every keyword and alert rule hangs off a user id, and every query
// that touches them filters on it.
//
// PasswordHash is json:"-" so it can never leak into a response body,
// no matter which handler serializes the struct.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// KeywordStatus is the keyword lifecycle. "deleted" exists for soft
// deletion; the DELETE endpoints hard-delete instead, but imported
// data may carry it.
type KeywordStatus string

const (
	KeywordActive  KeywordStatus = "active"
	KeywordPaused  KeywordStatus = "paused"
	KeywordDeleted KeywordStatus = "deleted"
)

// SearchConfig describes how the (out-of-scope) collection pipeline
// should query the engines for this keyword. Stored as jsonb.
type SearchConfig struct {
	Frequency     string   `json:"frequency,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Devices       []string `json:"devices,omitempty"`
	SearchEngines []string `json:"search_engines,omitempty"`
}

// Keyword is a tracked search term, owned by exactly one user.
// (UserID, Keyword) is unique.
type Keyword struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Keyword      string        `json:"keyword"`
	SearchVolume *int          `json:"search_volume"`
	Difficulty   *int          `json:"difficulty"`
	Status       KeywordStatus `json:"status"`
	SearchConfig *SearchConfig `json:"search_config,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// GeoResult is one externally-ingested record of a search engine's
// answer for one keyword at one point in time. Immutable here — the
// collection pipeline writes these, this service only reads (and
// cascades deletes when the owning keyword goes away).
type GeoResult struct {
	ID             uuid.UUID  `json:"id"`
	KeywordID      uuid.UUID  `json:"keyword_id"`
	SearchEngine   string     `json:"search_engine"`
	AIAnswerText   string     `json:"ai_answer_text,omitempty"`
	Citations      []Citation `json:"citations"`
	IsCited        bool       `json:"is_cited"`
	CitationType   string     `json:"citation_type,omitempty"`
	BrandMentions  []string   `json:"brand_mentions"`
	Ranking        *int       `json:"ranking"`
	QueryTimestamp time.Time  `json:"query_timestamp"`
	ScreenshotURL  string     `json:"screenshot_url,omitempty"`
}

// Citation is a single source the engine's answer pointed at.
type Citation struct {
	ID           uuid.UUID `json:"id"`
	GeoResultID  uuid.UUID `json:"geo_result_id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Snippet      string    `json:"snippet"`
	Position     int       `json:"position"`
	CitationType string    `json:"citation_type"`
}

// Competitor is global reference data — deliberately NOT tenant-owned,
// so every user compares against the same industry-wide set. Mutation
// is admin-gated for that reason.
type Competitor struct {
	ID            uuid.UUID `json:"id"`
	CompanyName   string    `json:"company_name"`
	Domain        string    `json:"domain"`
	BrandKeywords []string  `json:"brand_keywords"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompetitorMention links a competitor to a collected result in which
// it appeared. Written by the collection pipeline.
type CompetitorMention struct {
	ID           uuid.UUID `json:"id"`
	CompetitorID uuid.UUID `json:"competitor_id"`
	GeoResultID  uuid.UUID `json:"geo_result_id"`
	MentionType  string    `json:"mention_type"`
	MentionCount int       `json:"mention_count"`
	DetectedAt   time.Time `json:"detected_at"`
}

// AlertConditions is the trigger half of an alert rule. Stored as jsonb.
type AlertConditions struct {
	Metric    string  `json:"metric"`
	Threshold float64 `json:"threshold"`
	Direction string  `json:"direction"`
	Period    string  `json:"period"`
}

// NotificationConfig is the delivery half of an alert rule. Stored as jsonb.
type NotificationConfig struct {
	Channels   []string `json:"channels"`
	Recipients []string `json:"recipients"`
}

// AlertRule is tenant-scoped, unlike Competitor.
type AlertRule struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	RuleName           string             `json:"rule_name"`
	Conditions         AlertConditions    `json:"conditions"`
	NotificationConfig NotificationConfig `json:"notification_config"`
	IsActive           bool               `json:"is_active"`
	CreatedAt          time.Time          `json:"created_at"`
}

// AlertDeliveryStatus for AlertLog rows.
type AlertDeliveryStatus string

const (
	AlertPending AlertDeliveryStatus = "pending"
	AlertSent    AlertDeliveryStatus = "sent"
	AlertFailed  AlertDeliveryStatus = "failed"
)

// AlertLog records one firing of a rule. Written by the alerting
// pipeline; read-only here.
type AlertLog struct {
	ID          uuid.UUID           `json:"id"`
	AlertRuleID uuid.UUID           `json:"alert_rule_id"`
	AlertType   string              `json:"alert_type"`
	Message     string              `json:"message"`
	Status      AlertDeliveryStatus `json:"status"`
	TriggeredAt time.Time           `json:"triggered_at"`
}
