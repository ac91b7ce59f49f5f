package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// Client onboarding step numbers with side effects attached.
const (
	clientStepCompanyInfo        = 2
	clientStepNeedsAssessment    = 3
	clientStepServicePreferences = 4
	clientStepBudget             = 5
	clientStepConsultantMatching = 7
	clientStepWelcomeCall        = 8
)

// clientSteps seeds the fixed ordered step set for a new client record.
// Step numbers are stable for the lifetime of the record.
func clientSteps() []OnboardingStep {
	return []OnboardingStep{
		{StepNumber: 1, Name: "Welcome", Description: "Introduction to the platform", Status: StepPending, IsRequired: true},
		{StepNumber: 2, Name: "Company Information", Description: "Tell us about your company", Status: StepPending, IsRequired: true},
		{StepNumber: 3, Name: "Needs Assessment", Description: "Describe the problems you want solved", Status: StepPending, IsRequired: true},
		{StepNumber: 4, Name: "Service Preferences", Description: "Pick the services you are interested in", Status: StepPending, IsRequired: true},
		{StepNumber: 5, Name: "Budget & Timeframe", Description: "Set your budget and timeline expectations", Status: StepPending, IsRequired: true},
		{StepNumber: 6, Name: "Document Upload", Description: "Attach supporting documents", Status: StepPending, IsRequired: false},
		{StepNumber: 7, Name: "Consultant Matching", Description: "Review your consultant recommendations", Status: StepPending, IsRequired: true},
		{StepNumber: 8, Name: "Welcome Call Scheduling", Description: "Schedule a welcome call with our team", Status: StepPending, IsRequired: false},
	}
}

// ClientService is the client onboarding state machine
type ClientService struct {
	repo     Repository
	users    UserDirectory
	notifier Notifier
	engine   *RecommendationEngine
	logger   *zap.Logger
}

// NewClientService creates a new client onboarding service
func NewClientService(repo Repository, users UserDirectory, notifier Notifier, engine *RecommendationEngine, logger *zap.Logger) *ClientService {
	return &ClientService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		engine:   engine,
		logger:   logger,
	}
}

// Initialize creates the onboarding record for a client. It is idempotent:
// an existing record is returned unchanged. Non-client users are rejected.
func (s *ClientService) Initialize(ctx context.Context, clientID uuid.UUID) (*ClientOnboarding, error) {
	user, err := s.users.FindUser(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if user.Role != users.RoleClient {
		return nil, ErrNotAClient
	}

	existing, err := s.repo.FindClient(ctx, clientID.String())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrOnboardingNotFound) {
		return nil, err
	}

	now := time.Now()
	rec := &ClientOnboarding{
		ClientID:     clientID.String(),
		Status:       StatusNotStarted,
		Progress:     0,
		CurrentStep:  1,
		Steps:        clientSteps(),
		StartedAt:    now,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertClient(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Client onboarding initialized", zap.String("client_id", rec.ClientID))
	s.notifier.Notify(ctx, user.Email, notifications.TemplateWelcomeClient, map[string]interface{}{
		"user_id":      rec.ClientID,
		"display_name": user.DisplayName,
	})
	return rec, nil
}

// Get returns a client's onboarding record
func (s *ClientService) Get(ctx context.Context, clientID uuid.UUID) (*ClientOnboarding, error) {
	return s.repo.FindClient(ctx, clientID.String())
}

// UpdateStep applies a step transition, runs the step's side effects,
// recomputes progress and advances the current-step pointer. Collaborator
// side effects (profile mirroring, recommendation generation) are
// best-effort: their failure never fails the step update.
func (s *ClientService) UpdateStep(ctx context.Context, clientID uuid.UUID, stepNumber int, status StepStatus, data map[string]interface{}) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	if err := UpdateStepStatus(rec.Steps, stepNumber, status, data, TrackClient); err != nil {
		return nil, err
	}

	s.applyStepEffects(ctx, rec, clientID, stepNumber, status, data)

	rec.Progress, rec.Status = recompute(rec.Steps, rec.Status, TrackClient)
	if rec.Status == StatusCompleted && rec.CompletedAt == nil {
		now := time.Now()
		rec.CompletedAt = &now
	}
	if status == StepCompleted {
		rec.CurrentStep = AdvanceCurrentStep(rec.Steps, rec.CurrentStep, stepNumber, TrackClient)
	}
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity

	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// applyStepEffects dispatches the per-step side effects of a step update.
func (s *ClientService) applyStepEffects(ctx context.Context, rec *ClientOnboarding, clientID uuid.UUID, stepNumber int, status StepStatus, data map[string]interface{}) {
	switch stepNumber {
	case clientStepCompanyInfo:
		rec.CompanyInfo = mergeMaps(rec.CompanyInfo, data)
		if len(data) > 0 {
			// Mirror into the directory profile; failures are logged only.
			if err := s.users.UpdateProfile(ctx, clientID, data); err != nil {
				s.logger.Warn("Failed to mirror company info into user profile",
					zap.String("client_id", rec.ClientID), zap.Error(err))
			}
		}
	case clientStepNeedsAssessment:
		rec.NeedsAssessment = mergeMaps(rec.NeedsAssessment, data)
	case clientStepServicePreferences:
		if rec.Preferences == nil {
			rec.Preferences = make(map[string]interface{})
		}
		if interested, ok := data["services_interested"]; ok {
			rec.Preferences["services_interested"] = interested
		}
		s.generateServiceRecommendations(ctx, rec)
	case clientStepBudget:
		rec.Preferences = mergeMaps(rec.Preferences, data)
	case clientStepConsultantMatching:
		if status == StepCompleted && len(rec.RecommendedConsultants) == 0 {
			s.generateConsultantRecommendations(ctx, rec)
		}
	}
}

// GenerateServiceRecommendations re-scores the service recommendation list
// and persists the result. Prior entries keep their client-facing status.
func (s *ClientService) GenerateServiceRecommendations(ctx context.Context, clientID uuid.UUID) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	fresh, err := s.engine.ScoreServices(ctx, rec.Preferences, rec.CompanyInfo)
	if err != nil {
		return nil, err
	}
	rec.RecommendedServices = MergeServiceRecommendations(rec.RecommendedServices, fresh)
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity

	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GenerateConsultantRecommendations re-scores the consultant recommendation
// list and persists the result.
func (s *ClientService) GenerateConsultantRecommendations(ctx context.Context, clientID uuid.UUID) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	fresh, err := s.engine.ScoreConsultants(ctx, rec.Preferences, rec.CompanyInfo)
	if err != nil {
		return nil, err
	}
	rec.RecommendedConsultants = MergeConsultantRecommendations(rec.RecommendedConsultants, fresh)
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity

	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// generateServiceRecommendations is the in-record variant used as a step
// side effect; the caller persists the record afterwards.
func (s *ClientService) generateServiceRecommendations(ctx context.Context, rec *ClientOnboarding) {
	fresh, err := s.engine.ScoreServices(ctx, rec.Preferences, rec.CompanyInfo)
	if err != nil {
		s.logger.Warn("Failed to generate service recommendations",
			zap.String("client_id", rec.ClientID), zap.Error(err))
		return
	}
	rec.RecommendedServices = MergeServiceRecommendations(rec.RecommendedServices, fresh)
}

func (s *ClientService) generateConsultantRecommendations(ctx context.Context, rec *ClientOnboarding) {
	fresh, err := s.engine.ScoreConsultants(ctx, rec.Preferences, rec.CompanyInfo)
	if err != nil {
		s.logger.Warn("Failed to generate consultant recommendations",
			zap.String("client_id", rec.ClientID), zap.Error(err))
		return
	}
	rec.RecommendedConsultants = MergeConsultantRecommendations(rec.RecommendedConsultants, fresh)
}

// UpdateRecommendationStatus records how the client engaged with a
// recommended consultant.
func (s *ClientService) UpdateRecommendationStatus(ctx context.Context, clientID, consultantID uuid.UUID, status RecommendationStatus) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	found := false
	for i := range rec.RecommendedConsultants {
		if rec.RecommendedConsultants[i].ConsultantID == consultantID.String() {
			rec.RecommendedConsultants[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, ErrRecommendationNotFound
	}

	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SessionRequest is the payload for scheduling a client session
type SessionRequest struct {
	SessionType     string    `json:"session_type" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	MeetingLink     string    `json:"meeting_link"`
	Notes           string    `json:"notes"`
}

// ScheduleSession appends a session to the record. Scheduling a welcome
// call auto-completes the welcome-call step.
func (s *ClientService) ScheduleSession(ctx context.Context, clientID uuid.UUID, req SessionRequest) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	session := Session{
		ID:              uuid.New().String(),
		SessionType:     req.SessionType,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		Notes:           req.Notes,
		Status:          SessionScheduled,
	}
	rec.Sessions = append(rec.Sessions, session)

	if req.SessionType == SessionTypeWelcomeCall {
		if err := UpdateStepStatus(rec.Steps, clientStepWelcomeCall, StepCompleted, nil, TrackClient); err != nil {
			s.logger.Warn("Failed to auto-complete welcome call step",
				zap.String("client_id", rec.ClientID), zap.Error(err))
		} else {
			rec.Progress, rec.Status = recompute(rec.Steps, rec.Status, TrackClient)
			rec.CurrentStep = AdvanceCurrentStep(rec.Steps, rec.CurrentStep, clientStepWelcomeCall, TrackClient)
		}
	}

	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}

	if user, err := s.users.FindUser(ctx, clientID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateSessionScheduled, map[string]interface{}{
			"user_id":      rec.ClientID,
			"display_name": user.DisplayName,
			"session_type": req.SessionType,
			"scheduled_at": req.ScheduledAt.Format(time.RFC1123),
		})
	}
	return rec, nil
}

// Complete finalizes a client onboarding. Every required step must already
// be completed or skipped; remaining optional steps are force-skipped
// without touching the completion timestamps of steps already done. Calling
// it on an already completed record is a no-op.
func (s *ClientService) Complete(ctx context.Context, clientID uuid.UUID) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}
	if !RequiredStepsDone(rec.Steps) {
		return nil, ErrIncompleteRequiredSteps
	}

	finalizeSteps(rec.Steps)
	rec.Progress = ComputeProgress(rec.Steps)
	rec.Status = StatusCompleted
	if rec.CompletedAt == nil {
		now := time.Now()
		rec.CompletedAt = &now
	}
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity

	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Client onboarding completed", zap.String("client_id", rec.ClientID))
	if user, err := s.users.FindUser(ctx, clientID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateOnboardingComplete, map[string]interface{}{
			"user_id":      rec.ClientID,
			"display_name": user.DisplayName,
		})
	}
	return rec, nil
}

// mergeMaps is a shallow key-wise union: keys in overlay win, the rest of
// base is preserved. The base map is reused when present.
func mergeMaps(base, overlay map[string]interface{}) map[string]interface{} {
	if base == nil {
		base = make(map[string]interface{}, len(overlay))
	}
	for k, v := range overlay {
		base[k] = v
	}
	return base
}
