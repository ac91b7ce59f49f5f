package onboarding

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
)

// MockCatalog is a mock implementation of the CandidateCatalog interface
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListPublishedServices(ctx context.Context, limit int) ([]catalog.Service, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Service), args.Error(1)
}

func (m *MockCatalog) ListAvailableConsultants(ctx context.Context, limit int) ([]catalog.ConsultantProfile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ConsultantProfile), args.Error(1)
}

func TestScoreServicesCapsAndKeepsOrder(t *testing.T) {
	candidates := make([]catalog.Service, 7)
	for i := range candidates {
		candidates[i] = catalog.Service{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("Service %d", i),
			Category: "strategy",
		}
	}

	mockCatalog := new(MockCatalog)
	mockCatalog.On("ListPublishedServices", mock.Anything, candidateFetchLimit).Return(candidates, nil)
	engine := NewRecommendationEngine(mockCatalog, testLogger())

	recs, err := engine.ScoreServices(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i, rec := range recs {
		assert.Equal(t, candidates[i].ID.String(), rec.ServiceID)
		assert.Equal(t, 70, rec.MatchScore)
		assert.Equal(t, RecommendationRecommended, rec.Status)
	}
	mockCatalog.AssertExpectations(t)
}

func TestScoreServicesInterestBonus(t *testing.T) {
	candidates := []catalog.Service{
		{ID: uuid.New(), Name: "Cloud Migration", Category: "technology"},
		{ID: uuid.New(), Name: "Brand Strategy", Category: "marketing"},
	}

	mockCatalog := new(MockCatalog)
	mockCatalog.On("ListPublishedServices", mock.Anything, mock.Anything).Return(candidates, nil)
	engine := NewRecommendationEngine(mockCatalog, testLogger())

	prefs := map[string]interface{}{"services_interested": []interface{}{"technology"}}
	recs, err := engine.ScoreServices(context.Background(), prefs, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, 95, recs[0].MatchScore)
	assert.Contains(t, recs[0].Reason, "technology")
	assert.Equal(t, 70, recs[1].MatchScore)
}

func TestScoreServicesIndustryBonus(t *testing.T) {
	candidates := []catalog.Service{
		{ID: uuid.New(), Name: "Compliance Audit", Category: "legal", Industries: []string{"Healthcare"}},
	}

	mockCatalog := new(MockCatalog)
	mockCatalog.On("ListPublishedServices", mock.Anything, mock.Anything).Return(candidates, nil)
	engine := NewRecommendationEngine(mockCatalog, testLogger())

	company := map[string]interface{}{"industry": "healthcare"}
	recs, err := engine.ScoreServices(context.Background(), nil, company)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 95, recs[0].MatchScore)
	assert.Contains(t, recs[0].Reason, "healthcare")
}

func TestScoreConsultantsSkillBonusAndDedupe(t *testing.T) {
	consultantID := uuid.New()
	candidates := []catalog.ConsultantProfile{
		{ID: uuid.New(), UserID: consultantID, DisplayName: "Ada", Skills: []string{"finance"}},
		{ID: uuid.New(), UserID: consultantID, DisplayName: "Ada duplicate", Skills: []string{"finance"}},
		{ID: uuid.New(), UserID: uuid.New(), DisplayName: "Grace", Skills: []string{"design"}},
	}

	mockCatalog := new(MockCatalog)
	mockCatalog.On("ListAvailableConsultants", mock.Anything, mock.Anything).Return(candidates, nil)
	engine := NewRecommendationEngine(mockCatalog, testLogger())

	prefs := map[string]interface{}{"services_interested": []string{"finance"}}
	recs, err := engine.ScoreConsultants(context.Background(), prefs, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, consultantID.String(), recs[0].ConsultantID)
	assert.Equal(t, "Ada", recs[0].DisplayName)
	assert.Equal(t, 90, recs[0].MatchScore)
	assert.Equal(t, 75, recs[1].MatchScore)
}

func TestMergeServiceRecommendationsPreservesStatus(t *testing.T) {
	existing := []ServiceRecommendation{
		{ServiceID: "a", MatchScore: 70, Status: RecommendationViewed},
		{ServiceID: "b", MatchScore: 70, Status: RecommendationContacted},
	}
	fresh := []ServiceRecommendation{
		{ServiceID: "b", MatchScore: 95, Status: RecommendationRecommended},
		{ServiceID: "c", MatchScore: 70, Status: RecommendationRecommended},
	}

	merged := MergeServiceRecommendations(existing, fresh)
	require.Len(t, merged, 2)

	// Fresh order drives the result; prior engagement status survives.
	assert.Equal(t, "b", merged[0].ServiceID)
	assert.Equal(t, RecommendationContacted, merged[0].Status)
	assert.Equal(t, 95, merged[0].MatchScore)

	assert.Equal(t, "c", merged[1].ServiceID)
	assert.Equal(t, RecommendationRecommended, merged[1].Status)
}

func TestMergeConsultantRecommendationsPreservesStatus(t *testing.T) {
	existing := []ConsultantRecommendation{
		{ConsultantID: "x", Status: RecommendationViewed},
	}
	fresh := []ConsultantRecommendation{
		{ConsultantID: "x", MatchScore: 90, Status: RecommendationRecommended},
		{ConsultantID: "y", MatchScore: 75, Status: RecommendationRecommended},
	}

	merged := MergeConsultantRecommendations(existing, fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, RecommendationViewed, merged[0].Status)
	assert.Equal(t, 90, merged[0].MatchScore)
	assert.Equal(t, RecommendationRecommended, merged[1].Status)
}
