package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
	"consultbridge/marketplace-portal/marketplace-portal-backend/pkg/workflows"
)

// Consultant onboarding step numbers with side effects attached.
const (
	consultantStepProfessionalInfo = 2
	consultantStepWorkHistory      = 4
	consultantStepPortfolio        = 5
	consultantStepServiceOfferings = 6
	consultantStepIdentity         = 7
	consultantStepLegalAgreements  = 8
	consultantStepPaymentInfo      = 9
	consultantStepTraining         = 10
)

// consultantSteps seeds the fixed ordered step set for a new consultant
// record. All twelve steps are required; every one must be completed or
// skipped before the record can be submitted for review.
func consultantSteps() []OnboardingStep {
	return []OnboardingStep{
		{StepNumber: 1, Name: "Welcome", Description: "Introduction to the consultant network", Status: StepPending, IsRequired: true},
		{StepNumber: 2, Name: "Professional Information", Description: "Your headline, bio and expertise", Status: StepPending, IsRequired: true},
		{StepNumber: 3, Name: "Education & Certifications", Description: "Degrees and professional certifications", Status: StepPending, IsRequired: true},
		{StepNumber: 4, Name: "Work History", Description: "Previous roles and engagements", Status: StepPending, IsRequired: true},
		{StepNumber: 5, Name: "Portfolio", Description: "Samples of your past work", Status: StepPending, IsRequired: true},
		{StepNumber: 6, Name: "Service Offerings", Description: "The services you want to offer", Status: StepPending, IsRequired: true},
		{StepNumber: 7, Name: "Identity Verification", Description: "Verify your identity", Status: StepPending, IsRequired: true},
		{StepNumber: 8, Name: "Legal Agreements", Description: "Sign the platform agreements", Status: StepPending, IsRequired: true},
		{StepNumber: 9, Name: "Payment Information", Description: "How you want to get paid", Status: StepPending, IsRequired: true},
		{StepNumber: 10, Name: "Training", Description: "Complete the platform training", Status: StepPending, IsRequired: true},
		{StepNumber: 11, Name: "Availability", Description: "Set your working hours and capacity", Status: StepPending, IsRequired: true},
		{StepNumber: 12, Name: "Interview Scheduling", Description: "Schedule your review interview", Status: StepPending, IsRequired: true},
	}
}

// ConsultantService is the consultant onboarding state machine, including
// the verification sub-machines, contract signing, training and the admin
// review gate.
type ConsultantService struct {
	repo     Repository
	users    UserDirectory
	notifier Notifier
	machine  *workflows.StateMachine
	logger   *zap.Logger
}

// NewConsultantService creates a new consultant onboarding service
func NewConsultantService(repo Repository, users UserDirectory, notifier Notifier, logger *zap.Logger) *ConsultantService {
	return &ConsultantService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		machine:  workflows.NewConsultantOnboardingMachine(),
		logger:   logger,
	}
}

// Initialize creates the onboarding record for a consultant. It is
// idempotent: an existing record is returned unchanged.
func (s *ConsultantService) Initialize(ctx context.Context, consultantID uuid.UUID) (*ConsultantOnboarding, error) {
	user, err := s.users.FindUser(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if user.Role != users.RoleConsultant {
		return nil, ErrNotAConsultant
	}

	existing, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrOnboardingNotFound) {
		return nil, err
	}

	now := time.Now()
	rec := &ConsultantOnboarding{
		ConsultantID: consultantID.String(),
		Status:       StatusNotStarted,
		Progress:     0,
		CurrentStep:  1,
		Steps:        consultantSteps(),
		VerificationChecks: VerificationChecks{
			Identity:   VerificationCheck{Status: VerificationPending},
			Background: VerificationCheck{Status: VerificationPending},
			Skill:      VerificationCheck{Status: VerificationPending},
		},
		StartedAt:    now,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertConsultant(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Consultant onboarding initialized", zap.String("consultant_id", rec.ConsultantID))
	s.notifier.Notify(ctx, user.Email, notifications.TemplateWelcomeConsultant, map[string]interface{}{
		"user_id":      rec.ConsultantID,
		"display_name": user.DisplayName,
	})
	return rec, nil
}

// Get returns a consultant's onboarding record
func (s *ConsultantService) Get(ctx context.Context, consultantID uuid.UUID) (*ConsultantOnboarding, error) {
	return s.repo.FindConsultant(ctx, consultantID.String())
}

// UpdateStep applies a step transition and the consultant-specific data
// capture side effects, then recomputes progress.
func (s *ConsultantService) UpdateStep(ctx context.Context, consultantID uuid.UUID, stepNumber int, status StepStatus, data map[string]interface{}) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	if err := UpdateStepStatus(rec.Steps, stepNumber, status, data, TrackConsultant); err != nil {
		return nil, err
	}

	s.applyStepEffects(rec, stepNumber, data)

	rec.Progress, rec.Status = recompute(rec.Steps, rec.Status, TrackConsultant)
	if status == StepCompleted {
		rec.CurrentStep = AdvanceCurrentStep(rec.Steps, rec.CurrentStep, stepNumber, TrackConsultant)
	}
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity

	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *ConsultantService) applyStepEffects(rec *ConsultantOnboarding, stepNumber int, data map[string]interface{}) {
	if len(data) == 0 {
		return
	}
	switch stepNumber {
	case consultantStepProfessionalInfo:
		rec.ProfessionalInfo = mergeMaps(rec.ProfessionalInfo, data)
	case consultantStepWorkHistory:
		if entries, ok := entryList(data["entries"]); ok {
			rec.WorkHistory = entries
		}
	case consultantStepPortfolio:
		if entries, ok := entryList(data["entries"]); ok {
			rec.Portfolio = entries
		}
	case consultantStepServiceOfferings:
		if entries, ok := entryList(data["entries"]); ok {
			rec.ServiceOfferings = entries
		}
	case consultantStepPaymentInfo:
		rec.PaymentInformation = mergeMaps(rec.PaymentInformation, data)
	}
}

// UpdateVerification updates one of the verification checks. VerifiedAt is
// stamped only when the check reaches verified.
func (s *ConsultantService) UpdateVerification(ctx context.Context, consultantID uuid.UUID, kind VerificationKind, status VerificationStatus, notes, documentURL string) (*ConsultantOnboarding, error) {
	switch status {
	case VerificationPending, VerificationInProgress, VerificationVerified, VerificationFailed:
	default:
		return nil, ErrInvalidStepStatus
	}

	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	var check *VerificationCheck
	switch kind {
	case VerificationIdentity:
		check = &rec.VerificationChecks.Identity
	case VerificationBackground:
		check = &rec.VerificationChecks.Background
	case VerificationSkill:
		check = &rec.VerificationChecks.Skill
	default:
		return nil, ErrInvalidVerificationKind
	}

	check.Status = status
	if notes != "" {
		check.Notes = notes
	}
	if documentURL != "" {
		check.DocumentURL = documentURL
	}
	if status == VerificationVerified {
		now := time.Now()
		check.VerifiedAt = &now
	}

	// Identity verification drives the identity step.
	if kind == VerificationIdentity && status == VerificationVerified {
		s.completeStepInline(rec, consultantStepIdentity)
	}

	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SignContract records a signed legal agreement. Re-signing is idempotent:
// the new document URL and timestamp win, signed stays true. Once all three
// agreements are signed the legal-agreements step completes.
func (s *ConsultantService) SignContract(ctx context.Context, consultantID uuid.UUID, contractType ContractType, documentURL string) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	var contract *ContractRecord
	switch contractType {
	case ContractNDA:
		contract = &rec.Contracts.NDA
	case ContractConsultingAgreement:
		contract = &rec.Contracts.ConsultingAgreement
	case ContractCodeOfConduct:
		contract = &rec.Contracts.CodeOfConduct
	default:
		return nil, ErrInvalidContractType
	}

	now := time.Now()
	contract.Signed = true
	contract.SignedAt = &now
	contract.DocumentURL = documentURL

	if rec.Contracts.NDA.Signed && rec.Contracts.ConsultingAgreement.Signed && rec.Contracts.CodeOfConduct.Signed {
		s.completeStepInline(rec, consultantStepLegalAgreements)
	}

	rec.LastActivity = now
	rec.UpdatedAt = now
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CompleteTraining records completion of a training track. When both tracks
// are done the training step completes.
func (s *ConsultantService) CompleteTraining(ctx context.Context, consultantID uuid.UUID, trainingType TrainingType, score *int) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	var record *TrainingRecord
	switch trainingType {
	case TrainingPlatform:
		record = &rec.Training.Platform
	case TrainingClientInteraction:
		record = &rec.Training.ClientInteraction
	default:
		return nil, ErrInvalidTrainingType
	}

	now := time.Now()
	record.Completed = true
	record.Score = score
	record.CompletedAt = &now

	if rec.Training.Platform.Completed && rec.Training.ClientInteraction.Completed {
		s.completeStepInline(rec, consultantStepTraining)
	}

	rec.LastActivity = now
	rec.UpdatedAt = now
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SubmitForReview moves a consultant onboarding into the admin review
// queue. Every required step must already be completed or skipped.
func (s *ConsultantService) SubmitForReview(ctx context.Context, consultantID uuid.UUID) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}
	if !RequiredStepsDone(rec.Steps) {
		return nil, ErrIncompleteRequiredSteps
	}
	if rec.Status != StatusUnderReview && !s.machine.CanTransition(string(rec.Status), string(StatusUnderReview)) {
		return nil, ErrInvalidStatusTransition
	}

	rec.Status = StatusUnderReview
	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Consultant onboarding submitted for review",
		zap.String("consultant_id", rec.ConsultantID))
	if user, err := s.users.FindUser(ctx, consultantID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateSubmittedForReview, map[string]interface{}{
			"user_id":      rec.ConsultantID,
			"display_name": user.DisplayName,
		})
	}
	return rec, nil
}

// Review resolves the admin review gate. Approval stamps ApprovedAt;
// rejection requires a note. Either decision records the reviewer and is
// final: a second review fails with ErrNotUnderReview.
func (s *ConsultantService) Review(ctx context.Context, consultantID, reviewerID uuid.UUID, decision ReviewDecision, notes string) (*ConsultantOnboarding, error) {
	reviewer, err := s.users.FindUser(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if reviewer.Role != users.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusUnderReview {
		return nil, ErrNotUnderReview
	}

	now := time.Now()
	reviewerRef := reviewerID.String()
	switch decision {
	case DecisionApprove:
		rec.Status = StatusApproved
		rec.ApprovedAt = &now
	case DecisionReject:
		if notes == "" {
			return nil, ErrRejectionNoteRequired
		}
		rec.Status = StatusRejected
	default:
		return nil, ErrInvalidReviewDecision
	}
	rec.ReviewedBy = &reviewerRef
	if notes != "" {
		rec.AdminNotes = append(rec.AdminNotes, AdminNote{
			AuthorID:  reviewerRef,
			Note:      notes,
			CreatedAt: now,
		})
	}

	rec.LastActivity = now
	rec.UpdatedAt = now
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Consultant onboarding reviewed",
		zap.String("consultant_id", rec.ConsultantID),
		zap.String("decision", string(decision)))
	if user, err := s.users.FindUser(ctx, consultantID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateReviewDecision, map[string]interface{}{
			"user_id":      rec.ConsultantID,
			"display_name": user.DisplayName,
			"decision":     string(rec.Status),
			"notes":        notes,
		})
	}
	return rec, nil
}

// Complete finalizes an approved consultant onboarding
func (s *ConsultantService) Complete(ctx context.Context, consultantID uuid.UUID) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusApproved {
		return nil, ErrNotApproved
	}

	now := time.Now()
	rec.Status = StatusCompleted
	rec.Progress = 100
	if rec.CompletedAt == nil {
		rec.CompletedAt = &now
	}
	rec.LastActivity = now
	rec.UpdatedAt = now
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Consultant onboarding completed", zap.String("consultant_id", rec.ConsultantID))
	if user, err := s.users.FindUser(ctx, consultantID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateOnboardingComplete, map[string]interface{}{
			"user_id":      rec.ConsultantID,
			"display_name": user.DisplayName,
		})
	}
	return rec, nil
}

// InterviewRequest is the payload for scheduling a review interview
type InterviewRequest struct {
	InterviewerID   uuid.UUID `json:"interviewer_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	MeetingLink     string    `json:"meeting_link"`
}

// ScheduleInterview appends a review interview and completes the
// interview-scheduling step.
func (s *ConsultantService) ScheduleInterview(ctx context.Context, consultantID uuid.UUID, req InterviewRequest) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	rec.Interviews = append(rec.Interviews, Interview{
		ID:              uuid.New().String(),
		InterviewerID:   req.InterviewerID.String(),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		Status:          SessionScheduled,
	})
	s.completeStepInline(rec, 12)

	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecordInterviewFeedback stores the interviewer's feedback on a past
// interview and marks it completed.
func (s *ConsultantService) RecordInterviewFeedback(ctx context.Context, consultantID uuid.UUID, interviewID, feedback, recommendation string) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	found := false
	for i := range rec.Interviews {
		if rec.Interviews[i].ID == interviewID {
			rec.Interviews[i].Feedback = feedback
			rec.Interviews[i].Recommendation = recommendation
			rec.Interviews[i].Status = SessionCompleted
			found = true
			break
		}
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	rec.LastActivity = time.Now()
	rec.UpdatedAt = rec.LastActivity
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// completeStepInline marks a step completed as a sub-machine side effect
// and refreshes the derived fields. The caller persists the record.
func (s *ConsultantService) completeStepInline(rec *ConsultantOnboarding, stepNumber int) {
	if err := UpdateStepStatus(rec.Steps, stepNumber, StepCompleted, nil, TrackConsultant); err != nil {
		s.logger.Warn("Failed to auto-complete step",
			zap.String("consultant_id", rec.ConsultantID),
			zap.Int("step", stepNumber), zap.Error(err))
		return
	}
	rec.Progress, rec.Status = recompute(rec.Steps, rec.Status, TrackConsultant)
	rec.CurrentStep = AdvanceCurrentStep(rec.Steps, rec.CurrentStep, stepNumber, TrackConsultant)
}

// entryList coerces a decoded JSON array into a list of objects
func entryList(v interface{}) ([]map[string]interface{}, bool) {
	switch list := v.(type) {
	case []map[string]interface{}:
		return list, true
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
