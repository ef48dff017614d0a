package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lalith-99/geoscope/internal/models"
)

// Every method takes ctx first (these all hit the network) and, for
// tenant-owned data, a userID that scopes the query. The repository
// never trusts the caller — even if a client guesses another user's
// keyword UUID, the WHERE user_id filter makes it look nonexistent.
// Single-row lookups return nil, nil when nothing matches; sentinel
// errors from apperrors mark the outcomes handlers must tell apart.

// UserRepository handles principal records.
type UserRepository interface {
	// Create inserts a new user and returns it with ID and timestamps
	// populated. Returns apperrors.ErrDuplicateEmail when the email is
	// already registered.
	Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error)

	// GetByEmail looks up a user by exact email. Used for login and
	// duplicate checks. Returns nil, nil if not found.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns a user by id. Returns nil, nil if not found.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// UpdateLastLogin stamps last_login_at with now.
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// KeywordListParams drives the paginated keyword listing. SortBy is
// validated against a closed column set before it reaches SQL.
type KeywordListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// KeywordInput is one candidate row for single or batch creation.
type KeywordInput struct {
	Keyword      string               `json:"keyword"`
	SearchVolume *int                 `json:"search_volume"`
	Difficulty   *int                 `json:"difficulty"`
	SearchConfig *models.SearchConfig `json:"search_config"`
}

// KeywordPatch is the closed set of updatable keyword fields. Nil
// means "leave unchanged". Client-supplied keys never reach query
// construction; only these five fields can appear in a SET clause.
type KeywordPatch struct {
	Keyword      *string               `json:"keyword"`
	SearchVolume *int                  `json:"search_volume"`
	Difficulty   *int                  `json:"difficulty"`
	Status       *models.KeywordStatus `json:"status"`
	SearchConfig *models.SearchConfig  `json:"search_config"`
}

// BatchRowError reports one rejected row of a batch create, keyed by
// the offending input text.
type BatchRowError struct {
	Keyword string `json:"keyword"`
	Error   string `json:"error"`
}

// KeywordRepository handles tracked keywords and their dependent
// collected results.
type KeywordRepository interface {
	// List returns the user's keywords with aggregate stats plus the
	// total row count for pagination.
	List(ctx context.Context, userID uuid.UUID, params KeywordListParams) ([]models.KeywordWithStats, int, error)

	// Create inserts one keyword. Returns apperrors.ErrDuplicateKeyword
	// when the (user, text) pair already exists.
	Create(ctx context.Context, userID uuid.UUID, input KeywordInput) (*models.Keyword, error)

	// GetByID returns a keyword only if owned by userID; nil, nil otherwise.
	GetByID(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) (*models.Keyword, error)

	// Update applies a sparse patch and bumps updated_at. Returns
	// apperrors.ErrNotFound when the keyword isn't owned by userID and
	// apperrors.ErrDuplicateKeyword when renaming onto an existing text.
	Update(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID, patch KeywordPatch) (*models.Keyword, error)

	// Delete removes the keyword and its collected results in one
	// transaction. Returns apperrors.ErrNotFound when not owned.
	Delete(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) error

	// BatchCreate validates and inserts each row independently inside
	// one transaction. Per-row rejections land in the error list and
	// never abort the batch; only unexpected storage faults roll back.
	BatchCreate(ctx context.Context, userID uuid.UUID, inputs []KeywordInput) ([]models.Keyword, []BatchRowError, error)

	// BatchDelete filters candidates to ids actually owned by userID,
	// deletes the survivors, and returns the deleted ids (possibly a
	// subset of the request). Unowned and unknown ids are dropped
	// silently.
	BatchDelete(ctx context.Context, userID uuid.UUID, keywordIDs []uuid.UUID) ([]uuid.UUID, error)
}

// CompetitorInput creates or replaces competitor reference data.
type CompetitorInput struct {
	CompanyName   string   `json:"company_name"`
	Domain        string   `json:"domain"`
	BrandKeywords []string `json:"brand_keywords"`
	IsActive      *bool    `json:"is_active"`
}

// CompetitorRepository handles the global (non-tenant) competitor set.
type CompetitorRepository interface {
	List(ctx context.Context) ([]models.Competitor, error)
	Create(ctx context.Context, input CompetitorInput) (*models.Competitor, error)

	// Update returns apperrors.ErrNotFound for unknown ids.
	Update(ctx context.Context, competitorID uuid.UUID, input CompetitorInput) (*models.Competitor, error)
	Delete(ctx context.Context, competitorID uuid.UUID) error
}

// AlertRuleInput creates or replaces an alert rule.
type AlertRuleInput struct {
	RuleName           string                    `json:"rule_name"`
	Conditions         models.AlertConditions    `json:"conditions"`
	NotificationConfig models.NotificationConfig `json:"notification_config"`
}

// AlertRuleRepository handles tenant-scoped alert rules.
type AlertRuleRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AlertRule, error)
	Create(ctx context.Context, userID uuid.UUID, input AlertRuleInput) (*models.AlertRule, error)

	// Update, SetActive and Delete return apperrors.ErrNotFound when
	// the rule doesn't exist or belongs to someone else — the two are
	// indistinguishable on purpose.
	Update(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, input AlertRuleInput) (*models.AlertRule, error)
	SetActive(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, active bool) (*models.AlertRule, error)
	Delete(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID) error
}

// AnalyticsRepository computes derived metrics from stored facts.
// Every query is a deterministic function of (userID, window).
type AnalyticsRepository interface {
	// Overview returns the dashboard counters.
	Overview(ctx context.Context, userID uuid.UUID) (*models.DashboardOverview, error)

	// RankingTrend returns AVG(ranking) per day over the last `days`
	// days, ascending by date. Days with no results are absent.
	RankingTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.RankingTrendPoint, error)

	// KeywordPerformance lists keywords ordered by avg ranking
	// ascending with unranked keywords last.
	KeywordPerformance(ctx context.Context, userID uuid.UUID, limit int) ([]models.KeywordPerformance, error)

	// CompetitorAnalysis returns the top competitors by mention count
	// within the user's collected results.
	CompetitorAnalysis(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompetitorStats, error)

	// RecentAlerts returns the newest alert logs for the user's rules.
	RecentAlerts(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentAlert, error)

	// ShareOfVoice computes cited/total*100 over the window; 0 (not an
	// error) when the user has no results in it.
	ShareOfVoice(ctx context.Context, userID uuid.UUID, days int) (*models.ShareOfVoice, error)
}
