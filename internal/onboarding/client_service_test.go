package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

type clientFixture struct {
	service   *ClientService
	repo      *memRepo
	directory *fakeDirectory
	notifier  *spyNotifier
	catalog   *stubCatalog
	client    *users.User
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()
	client := testUser(users.RoleClient)
	repo := newMemRepo()
	directory := newFakeDirectory(client)
	notifier := &spyNotifier{}
	cat := &stubCatalog{
		services: []catalog.Service{
			{ID: uuid.New(), Name: "Growth Strategy", Category: "strategy"},
			{ID: uuid.New(), Name: "Cloud Migration", Category: "technology"},
		},
		consultants: []catalog.ConsultantProfile{
			{ID: uuid.New(), UserID: uuid.New(), DisplayName: "Ada", Skills: []string{"strategy"}},
		},
	}
	engine := NewRecommendationEngine(cat, testLogger())
	return &clientFixture{
		service:   NewClientService(repo, directory, notifier, engine, testLogger()),
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		catalog:   cat,
		client:    client,
	}
}

func (f *clientFixture) clientID() uuid.UUID { return f.client.ID }

func (f *clientFixture) mustInitialize(t *testing.T) *ClientOnboarding {
	t.Helper()
	rec, err := f.service.Initialize(context.Background(), f.clientID())
	require.NoError(t, err)
	return rec
}

func TestInitializeClient(t *testing.T) {
	f := newClientFixture(t)

	rec := f.mustInitialize(t)
	assert.Equal(t, StatusNotStarted, rec.Status)
	assert.Equal(t, 0, rec.Progress)
	assert.Equal(t, 1, rec.CurrentStep)
	assert.Len(t, rec.Steps, 8)
	assert.Equal(t, []notifications.TemplateKind{notifications.TemplateWelcomeClient}, f.notifier.kinds())

	// A second initialize returns the existing record without a new welcome.
	again, err := f.service.Initialize(context.Background(), f.clientID())
	require.NoError(t, err)
	assert.Equal(t, rec.ClientID, again.ClientID)
	assert.Len(t, f.notifier.sent, 1)
}

func TestInitializeClientRejectsOtherRoles(t *testing.T) {
	consultant := testUser(users.RoleConsultant)
	directory := newFakeDirectory(consultant)
	engine := NewRecommendationEngine(&stubCatalog{}, testLogger())
	service := NewClientService(newMemRepo(), directory, &spyNotifier{}, engine, testLogger())

	_, err := service.Initialize(context.Background(), consultant.ID)
	assert.ErrorIs(t, err, ErrNotAClient)
}

func TestUpdateStepCompanyInfoMirrorsProfile(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	data := map[string]interface{}{"company_name": "Acme", "industry": "technology"}
	rec, err := f.service.UpdateStep(context.Background(), f.clientID(), 2, StepCompleted, data)
	require.NoError(t, err)

	assert.Equal(t, "Acme", rec.CompanyInfo["company_name"])
	require.Len(t, f.directory.profileUpdates, 1)
	assert.Equal(t, data, f.directory.profileUpdates[0])

	// 1 of 8 steps done.
	assert.Equal(t, 13, rec.Progress)
	assert.Equal(t, StatusInProgress, rec.Status)
}

func TestUpdateStepProfileMirrorFailureIsNonFatal(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)
	f.directory.updateErr = assert.AnError

	rec, err := f.service.UpdateStep(context.Background(), f.clientID(), 2, StepCompleted,
		map[string]interface{}{"company_name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.CompanyInfo["company_name"])
}

func TestUpdateStepAdvancesCurrentStep(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	rec, err := f.service.UpdateStep(context.Background(), f.clientID(), 1, StepCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CurrentStep)

	// Completing a later step does not move the pointer.
	rec, err = f.service.UpdateStep(context.Background(), f.clientID(), 5, StepCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.CurrentStep)
}

func TestUpdateStepServicePreferencesGeneratesRecommendations(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	data := map[string]interface{}{"services_interested": []interface{}{"technology"}}
	rec, err := f.service.UpdateStep(context.Background(), f.clientID(), 4, StepCompleted, data)
	require.NoError(t, err)

	require.Len(t, rec.RecommendedServices, 2)
	assert.Equal(t, []interface{}{"technology"}, rec.Preferences["services_interested"])
}

func TestRegenerateKeepsEngagementStatus(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	rec, err := f.service.GenerateServiceRecommendations(context.Background(), f.clientID())
	require.NoError(t, err)
	require.NotEmpty(t, rec.RecommendedServices)

	rec.RecommendedServices[0].Status = RecommendationViewed
	require.NoError(t, f.repo.ReplaceClient(context.Background(), rec))

	rec, err = f.service.GenerateServiceRecommendations(context.Background(), f.clientID())
	require.NoError(t, err)
	assert.Equal(t, RecommendationViewed, rec.RecommendedServices[0].Status)
}

func TestUpdateRecommendationStatus(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	_, err := f.service.UpdateRecommendationStatus(context.Background(), f.clientID(), uuid.New(), RecommendationViewed)
	assert.ErrorIs(t, err, ErrRecommendationNotFound)

	rec, err := f.service.GenerateConsultantRecommendations(context.Background(), f.clientID())
	require.NoError(t, err)
	require.NotEmpty(t, rec.RecommendedConsultants)

	target := uuid.MustParse(rec.RecommendedConsultants[0].ConsultantID)
	rec, err = f.service.UpdateRecommendationStatus(context.Background(), f.clientID(), target, RecommendationContacted)
	require.NoError(t, err)
	assert.Equal(t, RecommendationContacted, rec.RecommendedConsultants[0].Status)
}

func TestScheduleWelcomeCallCompletesStep(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	rec, err := f.service.ScheduleSession(context.Background(), f.clientID(), SessionRequest{
		SessionType: SessionTypeWelcomeCall,
		ScheduledAt: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	require.Len(t, rec.Sessions, 1)
	assert.Equal(t, SessionScheduled, rec.Sessions[0].Status)
	assert.Equal(t, StepCompleted, rec.Steps[7].Status)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateSessionScheduled)
}

func TestCompleteClient(t *testing.T) {
	f := newClientFixture(t)
	f.mustInitialize(t)

	_, err := f.service.Complete(context.Background(), f.clientID())
	assert.ErrorIs(t, err, ErrIncompleteRequiredSteps)

	// Finish every required step; 6 and 8 stay pending.
	for _, step := range []int{1, 2, 3, 4, 5, 7} {
		_, err := f.service.UpdateStep(context.Background(), f.clientID(), step, StepCompleted, nil)
		require.NoError(t, err)
	}

	rec, err := f.service.Complete(context.Background(), f.clientID())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 100, rec.Progress)
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, StepSkipped, rec.Steps[5].Status)
	assert.Equal(t, StepSkipped, rec.Steps[7].Status)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateOnboardingComplete)

	// Completing again is a no-op that preserves the original timestamp.
	completedAt := *rec.CompletedAt
	rec, err = f.service.Complete(context.Background(), f.clientID())
	require.NoError(t, err)
	assert.Equal(t, completedAt, *rec.CompletedAt)
}
