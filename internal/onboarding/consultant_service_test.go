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

type consultantFixture struct {
	service    *ConsultantService
	repo       *memRepo
	directory  *fakeDirectory
	notifier   *spyNotifier
	consultant *users.User
	admin      *users.User
}

func newConsultantFixture(t *testing.T) *consultantFixture {
	t.Helper()
	consultant := testUser(users.RoleConsultant)
	admin := testUser(users.RoleAdmin)
	repo := newMemRepo()
	directory := newFakeDirectory(consultant, admin)
	notifier := &spyNotifier{}
	return &consultantFixture{
		service:    NewConsultantService(repo, directory, notifier, testLogger()),
		repo:       repo,
		directory:  directory,
		notifier:   notifier,
		consultant: consultant,
		admin:      admin,
	}
}

func (f *consultantFixture) id() uuid.UUID { return f.consultant.ID }

func (f *consultantFixture) mustInitialize(t *testing.T) *ConsultantOnboarding {
	t.Helper()
	rec, err := f.service.Initialize(context.Background(), f.id())
	require.NoError(t, err)
	return rec
}

func (f *consultantFixture) completeAllSteps(t *testing.T) *ConsultantOnboarding {
	t.Helper()
	var rec *ConsultantOnboarding
	var err error
	for step := 1; step <= 12; step++ {
		rec, err = f.service.UpdateStep(context.Background(), f.id(), step, StepCompleted, nil)
		require.NoError(t, err)
	}
	return rec
}

func TestInitializeConsultant(t *testing.T) {
	f := newConsultantFixture(t)

	rec := f.mustInitialize(t)
	assert.Equal(t, StatusNotStarted, rec.Status)
	assert.Len(t, rec.Steps, 12)
	assert.Equal(t, VerificationPending, rec.VerificationChecks.Identity.Status)
	assert.Equal(t, VerificationPending, rec.VerificationChecks.Background.Status)
	assert.Equal(t, VerificationPending, rec.VerificationChecks.Skill.Status)
	assert.Equal(t, []notifications.TemplateKind{notifications.TemplateWelcomeConsultant}, f.notifier.kinds())

	_, err := f.service.Initialize(context.Background(), f.admin.ID)
	assert.ErrorIs(t, err, ErrNotAConsultant)
}

func TestFullProgressRoutesThroughReview(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	rec := f.completeAllSteps(t)
	assert.Equal(t, 100, rec.Progress)
	assert.Equal(t, StatusUnderReview, rec.Status)
}

func TestUpdateVerification(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	_, err := f.service.UpdateVerification(context.Background(), f.id(), "passport", VerificationVerified, "", "")
	assert.ErrorIs(t, err, ErrInvalidVerificationKind)

	rec, err := f.service.UpdateVerification(context.Background(), f.id(), VerificationIdentity, VerificationVerified, "checked", "https://docs/id.pdf")
	require.NoError(t, err)
	assert.Equal(t, VerificationVerified, rec.VerificationChecks.Identity.Status)
	assert.NotNil(t, rec.VerificationChecks.Identity.VerifiedAt)
	assert.Equal(t, "https://docs/id.pdf", rec.VerificationChecks.Identity.DocumentURL)

	// Identity verification auto-completes the identity step.
	assert.Equal(t, StepCompleted, rec.Steps[6].Status)

	rec, err = f.service.UpdateVerification(context.Background(), f.id(), VerificationBackground, VerificationFailed, "mismatch", "")
	require.NoError(t, err)
	assert.Equal(t, VerificationFailed, rec.VerificationChecks.Background.Status)
	assert.Nil(t, rec.VerificationChecks.Background.VerifiedAt)
}

func TestSignContracts(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	_, err := f.service.SignContract(context.Background(), f.id(), "lease", "url")
	assert.ErrorIs(t, err, ErrInvalidContractType)

	rec, err := f.service.SignContract(context.Background(), f.id(), ContractNDA, "https://docs/nda.pdf")
	require.NoError(t, err)
	assert.True(t, rec.Contracts.NDA.Signed)
	assert.Equal(t, StepPending, rec.Steps[7].Status)

	// Re-signing refreshes the document but stays signed.
	rec, err = f.service.SignContract(context.Background(), f.id(), ContractNDA, "https://docs/nda-v2.pdf")
	require.NoError(t, err)
	assert.True(t, rec.Contracts.NDA.Signed)
	assert.Equal(t, "https://docs/nda-v2.pdf", rec.Contracts.NDA.DocumentURL)

	_, err = f.service.SignContract(context.Background(), f.id(), ContractConsultingAgreement, "")
	require.NoError(t, err)
	rec, err = f.service.SignContract(context.Background(), f.id(), ContractCodeOfConduct, "")
	require.NoError(t, err)

	// All three agreements signed completes the legal step.
	assert.Equal(t, StepCompleted, rec.Steps[7].Status)
}

func TestCompleteTraining(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	_, err := f.service.CompleteTraining(context.Background(), f.id(), "safety", nil)
	assert.ErrorIs(t, err, ErrInvalidTrainingType)

	score := 92
	rec, err := f.service.CompleteTraining(context.Background(), f.id(), TrainingPlatform, &score)
	require.NoError(t, err)
	assert.True(t, rec.Training.Platform.Completed)
	assert.Equal(t, 92, *rec.Training.Platform.Score)
	assert.Equal(t, StepPending, rec.Steps[9].Status)

	rec, err = f.service.CompleteTraining(context.Background(), f.id(), TrainingClientInteraction, nil)
	require.NoError(t, err)
	assert.Equal(t, StepCompleted, rec.Steps[9].Status)
}

func TestSubmitForReviewGate(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	_, err := f.service.SubmitForReview(context.Background(), f.id())
	assert.ErrorIs(t, err, ErrIncompleteRequiredSteps)

	f.completeAllSteps(t)
	rec, err := f.service.SubmitForReview(context.Background(), f.id())
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, rec.Status)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateSubmittedForReview)
}

func TestReviewApprove(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)
	f.completeAllSteps(t)

	// Only admins may review.
	_, err := f.service.Review(context.Background(), f.id(), f.consultant.ID, DecisionApprove, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	rec, err := f.service.Review(context.Background(), f.id(), f.admin.ID, DecisionApprove, "solid profile")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, rec.Status)
	require.NotNil(t, rec.ApprovedAt)
	assert.Equal(t, f.admin.ID.String(), *rec.ReviewedBy)
	require.Len(t, rec.AdminNotes, 1)
	assert.Contains(t, f.notifier.kinds(), notifications.TemplateReviewDecision)

	// A decision is final.
	_, err = f.service.Review(context.Background(), f.id(), f.admin.ID, DecisionReject, "changed my mind")
	assert.ErrorIs(t, err, ErrNotUnderReview)

	rec, err = f.service.Complete(context.Background(), f.id())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	require.NotNil(t, rec.CompletedAt)
}

func TestReviewReject(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)
	f.completeAllSteps(t)

	_, err := f.service.Review(context.Background(), f.id(), f.admin.ID, DecisionReject, "")
	assert.ErrorIs(t, err, ErrRejectionNoteRequired)

	rec, err := f.service.Review(context.Background(), f.id(), f.admin.ID, DecisionReject, "insufficient portfolio")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Nil(t, rec.ApprovedAt)

	// A rejected onboarding cannot be completed.
	_, err = f.service.Complete(context.Background(), f.id())
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestReviewInvalidDecision(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)
	f.completeAllSteps(t)

	_, err := f.service.Review(context.Background(), f.id(), f.admin.ID, "defer", "later")
	assert.ErrorIs(t, err, ErrInvalidReviewDecision)
}

func TestScheduleInterviewAndFeedback(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	rec, err := f.service.ScheduleInterview(context.Background(), f.id(), InterviewRequest{
		InterviewerID: f.admin.ID,
		ScheduledAt:   time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, rec.Interviews, 1)
	assert.Equal(t, StepCompleted, rec.Steps[11].Status)

	_, err = f.service.RecordInterviewFeedback(context.Background(), f.id(), "missing", "great", "hire")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	rec, err = f.service.RecordInterviewFeedback(context.Background(), f.id(), rec.Interviews[0].ID, "great", "hire")
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, rec.Interviews[0].Status)
	assert.Equal(t, "great", rec.Interviews[0].Feedback)
}

func TestUpdateStepCapturesProfileData(t *testing.T) {
	f := newConsultantFixture(t)
	f.mustInitialize(t)

	rec, err := f.service.UpdateStep(context.Background(), f.id(), 2, StepCompleted,
		map[string]interface{}{"headline": "Fractional CTO"})
	require.NoError(t, err)
	assert.Equal(t, "Fractional CTO", rec.ProfessionalInfo["headline"])

	entries := []interface{}{
		map[string]interface{}{"company": "Initech", "role": "Architect"},
	}
	rec, err = f.service.UpdateStep(context.Background(), f.id(), 4, StepCompleted,
		map[string]interface{}{"entries": entries})
	require.NoError(t, err)
	require.Len(t, rec.WorkHistory, 1)
	assert.Equal(t, "Initech", rec.WorkHistory[0]["company"])
}
