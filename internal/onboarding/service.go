package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// DefaultStalledThreshold classifies in-progress records with no activity
// for this long as stalled.
const DefaultStalledThreshold = 7 * 24 * time.Hour

// Service is the orchestrator facade over the two onboarding state
// machines. Cross-entity rules (assignee roles, reminders, aggregate
// statistics) live here rather than in the machines themselves.
type Service struct {
	Clients     *ClientService
	Consultants *ConsultantService

	repo             Repository
	users            UserDirectory
	notifier         Notifier
	stalledThreshold time.Duration
	logger           *zap.Logger
}

// NewService creates the onboarding orchestrator
func NewService(repo Repository, directory UserDirectory, notifier Notifier, engine *RecommendationEngine, stalledThreshold time.Duration, logger *zap.Logger) *Service {
	if stalledThreshold <= 0 {
		stalledThreshold = DefaultStalledThreshold
	}
	return &Service{
		Clients:          NewClientService(repo, directory, notifier, engine, logger),
		Consultants:      NewConsultantService(repo, directory, notifier, logger),
		repo:             repo,
		users:            directory,
		notifier:         notifier,
		stalledThreshold: stalledThreshold,
		logger:           logger,
	}
}

// GetClient returns a client onboarding record, optionally creating it on
// first access.
func (s *Service) GetClient(ctx context.Context, clientID uuid.UUID, autoInitialize bool) (*ClientOnboarding, error) {
	rec, err := s.Clients.Get(ctx, clientID)
	if err == ErrOnboardingNotFound && autoInitialize {
		return s.Clients.Initialize(ctx, clientID)
	}
	return rec, err
}

// GetConsultant returns a consultant onboarding record, optionally creating
// it on first access.
func (s *Service) GetConsultant(ctx context.Context, consultantID uuid.UUID, autoInitialize bool) (*ConsultantOnboarding, error) {
	rec, err := s.Consultants.Get(ctx, consultantID)
	if err == ErrOnboardingNotFound && autoInitialize {
		return s.Consultants.Initialize(ctx, consultantID)
	}
	return rec, err
}

// AssignClient sets the staff member owning a client onboarding. Only
// admins and consultants may own onboardings.
func (s *Service) AssignClient(ctx context.Context, clientID, assigneeID uuid.UUID) (*ClientOnboarding, error) {
	assignee, err := s.validateAssignee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}
	ref := assigneeID.String()
	rec.AssignedTo = &ref
	rec.UpdatedAt = time.Now()
	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}

	s.notifyAssignment(ctx, assignee, clientID)
	return rec, nil
}

// AssignConsultant sets the staff member owning a consultant onboarding
func (s *Service) AssignConsultant(ctx context.Context, consultantID, assigneeID uuid.UUID) (*ConsultantOnboarding, error) {
	assignee, err := s.validateAssignee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}
	ref := assigneeID.String()
	rec.AssignedTo = &ref
	rec.UpdatedAt = time.Now()
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}

	s.notifyAssignment(ctx, assignee, consultantID)
	return rec, nil
}

func (s *Service) validateAssignee(ctx context.Context, assigneeID uuid.UUID) (*users.User, error) {
	assignee, err := s.users.FindUser(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee.Role != users.RoleAdmin && assignee.Role != users.RoleConsultant {
		return nil, ErrInvalidAssignee
	}
	return assignee, nil
}

func (s *Service) notifyAssignment(ctx context.Context, assignee *users.User, subjectID uuid.UUID) {
	payload := map[string]interface{}{
		"user_id":      assignee.ID.String(),
		"display_name": assignee.DisplayName,
	}
	if subject, err := s.users.FindUser(ctx, subjectID); err == nil {
		payload["subject_name"] = subject.DisplayName
	}
	s.notifier.Notify(ctx, assignee.Email, notifications.TemplateAssignment, payload)
}

// AddClientReminder records a reminder on a client onboarding and nudges
// the client by email.
func (s *Service) AddClientReminder(ctx context.Context, clientID, sentBy uuid.UUID, message string) (*ClientOnboarding, error) {
	rec, err := s.repo.FindClient(ctx, clientID.String())
	if err != nil {
		return nil, err
	}

	rec.Reminders = append(rec.Reminders, Reminder{
		Message: message,
		SentBy:  sentBy.String(),
		SentAt:  time.Now(),
	})
	rec.UpdatedAt = time.Now()
	if err := s.repo.ReplaceClient(ctx, rec); err != nil {
		return nil, err
	}

	if user, err := s.users.FindUser(ctx, clientID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateReminder, map[string]interface{}{
			"user_id": rec.ClientID,
			"message": message,
		})
	}
	return rec, nil
}

// AddConsultantReminder records a reminder on a consultant onboarding
func (s *Service) AddConsultantReminder(ctx context.Context, consultantID, sentBy uuid.UUID, message string) (*ConsultantOnboarding, error) {
	rec, err := s.repo.FindConsultant(ctx, consultantID.String())
	if err != nil {
		return nil, err
	}

	rec.Reminders = append(rec.Reminders, Reminder{
		Message: message,
		SentBy:  sentBy.String(),
		SentAt:  time.Now(),
	})
	rec.UpdatedAt = time.Now()
	if err := s.repo.ReplaceConsultant(ctx, rec); err != nil {
		return nil, err
	}

	if user, err := s.users.FindUser(ctx, consultantID); err == nil {
		s.notifier.Notify(ctx, user.Email, notifications.TemplateReminder, map[string]interface{}{
			"user_id": rec.ConsultantID,
			"message": message,
		})
	}
	return rec, nil
}

// =====================================================
// Aggregate statistics
// =====================================================

// TrackStatistics aggregates one onboarding track
type TrackStatistics struct {
	Total                 int            `json:"total"`
	ByStatus              map[Status]int `json:"by_status"`
	Stalled               int            `json:"stalled"`
	AverageDaysToComplete float64        `json:"average_days_to_complete"`
	PendingReview         []string       `json:"pending_review,omitempty"`
}

// Statistics is the aggregate view over both onboarding tracks
type Statistics struct {
	Clients     TrackStatistics `json:"clients"`
	Consultants TrackStatistics `json:"consultants"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Statistics computes counts by status, stalled counts and average
// completion times. Averages only consider fully completed records with
// both timestamps present; empty data yields zeroed aggregates, never an
// error.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	now := time.Now()
	stats := &Statistics{
		Clients:     TrackStatistics{ByStatus: make(map[Status]int)},
		Consultants: TrackStatistics{ByStatus: make(map[Status]int)},
		GeneratedAt: now,
	}

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	var clientDays float64
	var clientCompleted int
	for _, rec := range clients {
		stats.Clients.Total++
		stats.Clients.ByStatus[rec.Status]++
		if IsStalled(rec.Status, rec.LastActivity, s.stalledThreshold, now) {
			stats.Clients.Stalled++
		}
		if rec.Status == StatusCompleted && rec.CompletedAt != nil {
			clientDays += rec.CompletedAt.Sub(rec.StartedAt).Hours() / 24
			clientCompleted++
		}
	}
	if clientCompleted > 0 {
		stats.Clients.AverageDaysToComplete = clientDays / float64(clientCompleted)
	}

	consultants, err := s.repo.ListConsultants(ctx)
	if err != nil {
		return nil, err
	}
	var consultantDays float64
	var consultantCompleted int
	for _, rec := range consultants {
		stats.Consultants.Total++
		stats.Consultants.ByStatus[rec.Status]++
		if IsStalled(rec.Status, rec.LastActivity, s.stalledThreshold, now) {
			stats.Consultants.Stalled++
		}
		if rec.Status == StatusUnderReview {
			stats.Consultants.PendingReview = append(stats.Consultants.PendingReview, rec.ConsultantID)
		}
		if rec.Status == StatusCompleted && rec.CompletedAt != nil {
			consultantDays += rec.CompletedAt.Sub(rec.StartedAt).Hours() / 24
			consultantCompleted++
		}
	}
	if consultantCompleted > 0 {
		stats.Consultants.AverageDaysToComplete = consultantDays / float64(consultantCompleted)
	}

	return stats, nil
}

// StalledClients lists in-progress client onboardings with no activity past
// the threshold. Used by the reminder worker.
func (s *Service) StalledClients(ctx context.Context) ([]*ClientOnboarding, error) {
	records, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	stalled := []*ClientOnboarding{}
	for _, rec := range records {
		if IsStalled(rec.Status, rec.LastActivity, s.stalledThreshold, now) {
			stalled = append(stalled, rec)
		}
	}
	return stalled, nil
}

// StalledConsultants mirrors StalledClients for the consultant track
func (s *Service) StalledConsultants(ctx context.Context) ([]*ConsultantOnboarding, error) {
	records, err := s.repo.ListConsultants(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	stalled := []*ConsultantOnboarding{}
	for _, rec := range records {
		if IsStalled(rec.Status, rec.LastActivity, s.stalledThreshold, now) {
			stalled = append(stalled, rec)
		}
	}
	return stalled, nil
}

// NudgeStalled sends a stalled nudge to every stalled record on both
// tracks and returns how many were nudged.
func (s *Service) NudgeStalled(ctx context.Context) (int, error) {
	nudged := 0

	stalledClients, err := s.StalledClients(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range stalledClients {
		s.nudge(ctx, rec.ClientID)
		nudged++
	}

	stalledConsultants, err := s.StalledConsultants(ctx)
	if err != nil {
		return nudged, err
	}
	for _, rec := range stalledConsultants {
		s.nudge(ctx, rec.ConsultantID)
		nudged++
	}
	return nudged, nil
}

func (s *Service) nudge(ctx context.Context, userID string) {
	id, err := uuid.Parse(userID)
	if err != nil {
		s.logger.Warn("Skipping nudge for malformed user id", zap.String("user_id", userID))
		return
	}
	user, err := s.users.FindUser(ctx, id)
	if err != nil {
		s.logger.Warn("Skipping nudge for unknown user", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, user.Email, notifications.TemplateStalledNudge, map[string]interface{}{
		"user_id":      userID,
		"display_name": user.DisplayName,
	})
}
