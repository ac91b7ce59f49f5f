package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

type orchestratorFixture struct {
	service   *Service
	repo      *memRepo
	directory *fakeDirectory
	notifier  *spyNotifier
	client    *users.User
	admin     *users.User
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	client := testUser(users.RoleClient)
	admin := testUser(users.RoleAdmin)
	repo := newMemRepo()
	directory := newFakeDirectory(client, admin)
	notifier := &spyNotifier{}
	engine := NewRecommendationEngine(&stubCatalog{}, testLogger())
	return &orchestratorFixture{
		service:   NewService(repo, directory, notifier, engine, DefaultStalledThreshold, testLogger()),
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		client:    client,
		admin:     admin,
	}
}

func TestGetClientAutoInitialize(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.service.GetClient(context.Background(), f.client.ID, false)
	assert.ErrorIs(t, err, ErrOnboardingNotFound)

	rec, err := f.service.GetClient(context.Background(), f.client.ID, true)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID.String(), rec.ClientID)

	rec, err = f.service.GetClient(context.Background(), f.client.ID, false)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID.String(), rec.ClientID)
}

func TestAssignClientValidatesRole(t *testing.T) {
	f := newOrchestratorFixture(t)
	_, err := f.service.Clients.Initialize(context.Background(), f.client.ID)
	require.NoError(t, err)

	// Clients cannot own onboardings.
	_, err = f.service.AssignClient(context.Background(), f.client.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidAssignee)

	rec, err := f.service.AssignClient(context.Background(), f.client.ID, f.admin.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.AssignedTo)
	assert.Equal(t, f.admin.ID.String(), *rec.AssignedTo)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateAssignment)
}

func TestAddClientReminder(t *testing.T) {
	f := newOrchestratorFixture(t)
	_, err := f.service.Clients.Initialize(context.Background(), f.client.ID)
	require.NoError(t, err)

	rec, err := f.service.AddClientReminder(context.Background(), f.client.ID, f.admin.ID, "please finish step 3")
	require.NoError(t, err)
	require.Len(t, rec.Reminders, 1)
	assert.Equal(t, f.admin.ID.String(), rec.Reminders[0].SentBy)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateReminder)
}

func seedClientRecord(repo *memRepo, status Status, lastActivity time.Time, startedAt time.Time, completedAt *time.Time) {
	id := uuid.New().String()
	repo.clients[id] = &ClientOnboarding{
		ClientID:     id,
		Status:       status,
		StartedAt:    startedAt,
		LastActivity: lastActivity,
		CompletedAt:  completedAt,
	}
}

func seedConsultantRecord(repo *memRepo, status Status, lastActivity time.Time, startedAt time.Time, completedAt *time.Time) string {
	id := uuid.New().String()
	repo.consultants[id] = &ConsultantOnboarding{
		ConsultantID: id,
		Status:       status,
		StartedAt:    startedAt,
		LastActivity: lastActivity,
		CompletedAt:  completedAt,
	}
	return id
}

func TestStatistics(t *testing.T) {
	f := newOrchestratorFixture(t)
	now := time.Now()

	completedAt := now.Add(-2 * 24 * time.Hour)
	// Completed in 10 days.
	seedClientRecord(f.repo, StatusCompleted, completedAt, completedAt.Add(-10*24*time.Hour), &completedAt)
	// Stalled: in progress, idle for 9 days.
	seedClientRecord(f.repo, StatusInProgress, now.Add(-9*24*time.Hour), now.Add(-20*24*time.Hour), nil)
	// Active.
	seedClientRecord(f.repo, StatusInProgress, now.Add(-time.Hour), now.Add(-3*24*time.Hour), nil)

	pending := seedConsultantRecord(f.repo, StatusUnderReview, now.Add(-time.Hour), now.Add(-6*24*time.Hour), nil)
	consultantDone := now.Add(-1 * 24 * time.Hour)
	seedConsultantRecord(f.repo, StatusCompleted, consultantDone, consultantDone.Add(-20*24*time.Hour), &consultantDone)

	stats, err := f.service.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Clients.Total)
	assert.Equal(t, 2, stats.Clients.ByStatus[StatusInProgress])
	assert.Equal(t, 1, stats.Clients.ByStatus[StatusCompleted])
	assert.Equal(t, 1, stats.Clients.Stalled)
	assert.InDelta(t, 10, stats.Clients.AverageDaysToComplete, 0.01)

	assert.Equal(t, 2, stats.Consultants.Total)
	assert.Equal(t, []string{pending}, stats.Consultants.PendingReview)
	assert.InDelta(t, 20, stats.Consultants.AverageDaysToComplete, 0.01)
}

func TestStatisticsEmpty(t *testing.T) {
	f := newOrchestratorFixture(t)

	stats, err := f.service.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Clients.Total)
	assert.Zero(t, stats.Clients.AverageDaysToComplete)
	assert.Empty(t, stats.Consultants.PendingReview)
}

func TestNudgeStalled(t *testing.T) {
	f := newOrchestratorFixture(t)
	now := time.Now()

	stalled := testUser(users.RoleClient)
	f.directory.users[stalled.ID] = stalled
	f.repo.clients[stalled.ID.String()] = &ClientOnboarding{
		ClientID:     stalled.ID.String(),
		Status:       StatusInProgress,
		StartedAt:    now.Add(-30 * 24 * time.Hour),
		LastActivity: now.Add(-10 * 24 * time.Hour),
	}
	// Active record must not be nudged.
	seedClientRecord(f.repo, StatusInProgress, now.Add(-time.Hour), now.Add(-2*24*time.Hour), nil)

	nudged, err := f.service.NudgeStalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, nudged)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notifications.TemplateStalledNudge, f.notifier.sent[0].kind)
	assert.Equal(t, stalled.Email, f.notifier.sent[0].recipient)
}
