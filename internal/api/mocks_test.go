package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lalith-99/geoscope/internal/apperrors"
	"github.com/lalith-99/geoscope/internal/models"
	"github.com/lalith-99/geoscope/internal/repository"
)

// In-memory fakes for the repository interfaces. They enforce the
// same ownership semantics as the Postgres stores so handler tests
// exercise tenant isolation for real.

type mockUserRepo struct {
	users       map[uuid.UUID]*models.User
	createErr   error
	lookupErr   error
	lastLoginAt map[uuid.UUID]time.Time
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:       make(map[uuid.UUID]*models.User),
		lastLoginAt: make(map[uuid.UUID]time.Time),
	}
}

func (m *mockUserRepo) add(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return nil, apperrors.ErrDuplicateEmail
		}
	}
	now := time.Now()
	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	m.lastLoginAt[userID] = now
	if u, ok := m.users[userID]; ok {
		u.LastLoginAt = &now
	}
	return nil
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type mockKeywordRepo struct {
	keywords map[uuid.UUID]*models.Keyword
	listErr  error
}

func newMockKeywordRepo() *mockKeywordRepo {
	return &mockKeywordRepo{keywords: make(map[uuid.UUID]*models.Keyword)}
}

func (m *mockKeywordRepo) add(userID uuid.UUID, text string) *models.Keyword {
	now := time.Now()
	k := &models.Keyword{
		ID:        uuid.New(),
		UserID:    userID,
		Keyword:   text,
		Status:    models.KeywordActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.keywords[k.ID] = k
	return k
}

func (m *mockKeywordRepo) hasText(userID uuid.UUID, text string) bool {
	for _, k := range m.keywords {
		if k.UserID == userID && k.Keyword == text {
			return true
		}
	}
	return false
}

func (m *mockKeywordRepo) List(ctx context.Context, userID uuid.UUID, params repository.KeywordListParams) ([]models.KeywordWithStats, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]models.KeywordWithStats, 0)
	for _, k := range m.keywords {
		if k.UserID == userID {
			out = append(out, models.KeywordWithStats{Keyword: *k})
		}
	}
	return out, len(out), nil
}

func (m *mockKeywordRepo) Create(ctx context.Context, userID uuid.UUID, input repository.KeywordInput) (*models.Keyword, error) {
	if m.hasText(userID, input.Keyword) {
		return nil, apperrors.ErrDuplicateKeyword
	}
	k := m.add(userID, input.Keyword)
	k.SearchVolume = input.SearchVolume
	k.Difficulty = input.Difficulty
	k.SearchConfig = input.SearchConfig
	return k, nil
}

func (m *mockKeywordRepo) GetByID(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) (*models.Keyword, error) {
	k, ok := m.keywords[keywordID]
	if !ok || k.UserID != userID {
		return nil, nil
	}
	return k, nil
}

func (m *mockKeywordRepo) Update(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID, patch repository.KeywordPatch) (*models.Keyword, error) {
	k, ok := m.keywords[keywordID]
	if !ok || k.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	if patch.Keyword != nil {
		if *patch.Keyword != k.Keyword && m.hasText(userID, *patch.Keyword) {
			return nil, apperrors.ErrDuplicateKeyword
		}
		k.Keyword = *patch.Keyword
	}
	if patch.SearchVolume != nil {
		k.SearchVolume = patch.SearchVolume
	}
	if patch.Difficulty != nil {
		k.Difficulty = patch.Difficulty
	}
	if patch.Status != nil {
		k.Status = *patch.Status
	}
	if patch.SearchConfig != nil {
		k.SearchConfig = patch.SearchConfig
	}
	k.UpdatedAt = time.Now()
	return k, nil
}

func (m *mockKeywordRepo) Delete(ctx context.Context, userID uuid.UUID, keywordID uuid.UUID) error {
	k, ok := m.keywords[keywordID]
	if !ok || k.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.keywords, keywordID)
	return nil
}

func (m *mockKeywordRepo) BatchCreate(ctx context.Context, userID uuid.UUID, inputs []repository.KeywordInput) ([]models.Keyword, []repository.BatchRowError, error) {
	created := make([]models.Keyword, 0)
	rowErrors := make([]repository.BatchRowError, 0)
	for _, input := range inputs {
		if input.Keyword == "" {
			rowErrors = append(rowErrors, repository.BatchRowError{Keyword: input.Keyword, Error: "keyword must not be empty"})
			continue
		}
		if m.hasText(userID, input.Keyword) {
			rowErrors = append(rowErrors, repository.BatchRowError{Keyword: input.Keyword, Error: "keyword already exists"})
			continue
		}
		k := m.add(userID, input.Keyword)
		created = append(created, *k)
	}
	return created, rowErrors, nil
}

func (m *mockKeywordRepo) BatchDelete(ctx context.Context, userID uuid.UUID, keywordIDs []uuid.UUID) ([]uuid.UUID, error) {
	deleted := make([]uuid.UUID, 0)
	for _, id := range keywordIDs {
		k, ok := m.keywords[id]
		if !ok || k.UserID != userID {
			continue
		}
		delete(m.keywords, id)
		deleted = append(deleted, id)
	}
	return deleted, nil
}

type mockAlertRuleRepo struct {
	rules map[uuid.UUID]*models.AlertRule
}

func newMockAlertRuleRepo() *mockAlertRuleRepo {
	return &mockAlertRuleRepo{rules: make(map[uuid.UUID]*models.AlertRule)}
}

func (m *mockAlertRuleRepo) add(userID uuid.UUID, name string) *models.AlertRule {
	r := &models.AlertRule{
		ID:        uuid.New(),
		UserID:    userID,
		RuleName:  name,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	m.rules[r.ID] = r
	return r
}

func (m *mockAlertRuleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AlertRule, error) {
	out := make([]models.AlertRule, 0)
	for _, r := range m.rules {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAlertRuleRepo) Create(ctx context.Context, userID uuid.UUID, input repository.AlertRuleInput) (*models.AlertRule, error) {
	r := m.add(userID, input.RuleName)
	r.Conditions = input.Conditions
	r.NotificationConfig = input.NotificationConfig
	return r, nil
}

func (m *mockAlertRuleRepo) Update(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, input repository.AlertRuleInput) (*models.AlertRule, error) {
	r, ok := m.rules[ruleID]
	if !ok || r.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	r.RuleName = input.RuleName
	r.Conditions = input.Conditions
	r.NotificationConfig = input.NotificationConfig
	return r, nil
}

func (m *mockAlertRuleRepo) SetActive(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID, active bool) (*models.AlertRule, error) {
	r, ok := m.rules[ruleID]
	if !ok || r.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	r.IsActive = active
	return r, nil
}

func (m *mockAlertRuleRepo) Delete(ctx context.Context, userID uuid.UUID, ruleID uuid.UUID) error {
	r, ok := m.rules[ruleID]
	if !ok || r.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.rules, ruleID)
	return nil
}

type mockCompetitorRepo struct {
	competitors map[uuid.UUID]*models.Competitor
}

func newMockCompetitorRepo() *mockCompetitorRepo {
	return &mockCompetitorRepo{competitors: make(map[uuid.UUID]*models.Competitor)}
}

func (m *mockCompetitorRepo) add(name, domain string) *models.Competitor {
	c := &models.Competitor{
		ID:            uuid.New(),
		CompanyName:   name,
		Domain:        domain,
		BrandKeywords: []string{},
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	m.competitors[c.ID] = c
	return c
}

func (m *mockCompetitorRepo) List(ctx context.Context) ([]models.Competitor, error) {
	out := make([]models.Competitor, 0)
	for _, c := range m.competitors {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCompetitorRepo) Create(ctx context.Context, input repository.CompetitorInput) (*models.Competitor, error) {
	c := m.add(input.CompanyName, input.Domain)
	if input.BrandKeywords != nil {
		c.BrandKeywords = input.BrandKeywords
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	return c, nil
}

func (m *mockCompetitorRepo) Update(ctx context.Context, competitorID uuid.UUID, input repository.CompetitorInput) (*models.Competitor, error) {
	c, ok := m.competitors[competitorID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c.CompanyName = input.CompanyName
	c.Domain = input.Domain
	if input.BrandKeywords != nil {
		c.BrandKeywords = input.BrandKeywords
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	return c, nil
}

func (m *mockCompetitorRepo) Delete(ctx context.Context, competitorID uuid.UUID) error {
	if _, ok := m.competitors[competitorID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.competitors, competitorID)
	return nil
}

type mockAnalyticsRepo struct {
	overview    *models.DashboardOverview
	trend       []models.RankingTrendPoint
	performance []models.KeywordPerformance
	competitors []models.CompetitorStats
	alerts      []models.RecentAlert
	sov         *models.ShareOfVoice
	err         error

	lastSovDays   int
	lastPerfLimit int
}

func (m *mockAnalyticsRepo) Overview(ctx context.Context, userID uuid.UUID) (*models.DashboardOverview, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.overview == nil {
		return &models.DashboardOverview{}, nil
	}
	return m.overview, nil
}

func (m *mockAnalyticsRepo) RankingTrend(ctx context.Context, userID uuid.UUID, days int) ([]models.RankingTrendPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.trend, nil
}

func (m *mockAnalyticsRepo) KeywordPerformance(ctx context.Context, userID uuid.UUID, limit int) ([]models.KeywordPerformance, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastPerfLimit = limit
	return m.performance, nil
}

func (m *mockAnalyticsRepo) CompetitorAnalysis(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompetitorStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.competitors, nil
}

func (m *mockAnalyticsRepo) RecentAlerts(ctx context.Context, userID uuid.UUID, limit int) ([]models.RecentAlert, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

func (m *mockAnalyticsRepo) ShareOfVoice(ctx context.Context, userID uuid.UUID, days int) (*models.ShareOfVoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastSovDays = days
	if m.sov == nil {
		// Mirrors the real store: zero results, zero percentage.
		return &models.ShareOfVoice{Period: "30d"}, nil
	}
	return m.sov, nil
}
