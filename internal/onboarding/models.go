package onboarding

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// =====================================================
// Enums and Constants
// =====================================================

// Status represents the overall status of an onboarding record
type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"

	// StatusStalled is a query-time classification of in-progress records
	// with no recent activity. It is never stored.
	StatusStalled Status = "stalled"
)

// StepStatus represents the status of a single onboarding step
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepSkipped    StepStatus = "skipped"

	// StepReturned is only valid for consultant onboarding steps
	// (returned-for-revision by a reviewer).
	StepReturned StepStatus = "returned"
)

// RecommendationStatus tracks how a client has engaged with a recommendation
type RecommendationStatus string

const (
	RecommendationRecommended RecommendationStatus = "recommended"
	RecommendationViewed      RecommendationStatus = "viewed"
	RecommendationContacted   RecommendationStatus = "contacted"
	RecommendationRejected    RecommendationStatus = "rejected"
)

// SessionStatus represents the status of a scheduled session
type SessionStatus string

const (
	SessionScheduled   SessionStatus = "scheduled"
	SessionCompleted   SessionStatus = "completed"
	SessionRescheduled SessionStatus = "rescheduled"
	SessionCancelled   SessionStatus = "cancelled"
)

// SessionTypeWelcomeCall auto-completes the welcome-call scheduling step.
const SessionTypeWelcomeCall = "welcome_call"

// VerificationStatus represents the status of a verification check
type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "pending"
	VerificationInProgress VerificationStatus = "in_progress"
	VerificationVerified   VerificationStatus = "verified"
	VerificationFailed     VerificationStatus = "failed"
)

// VerificationKind identifies one of the consultant verification checks
type VerificationKind string

const (
	VerificationIdentity   VerificationKind = "identity"
	VerificationBackground VerificationKind = "background"
	VerificationSkill      VerificationKind = "skill"
)

// ContractType identifies one of the consultant legal agreements
type ContractType string

const (
	ContractNDA                 ContractType = "nda"
	ContractConsultingAgreement ContractType = "consultingAgreement"
	ContractCodeOfConduct       ContractType = "codeOfConduct"
)

// TrainingType identifies one of the consultant training tracks
type TrainingType string

const (
	TrainingPlatform          TrainingType = "platformTraining"
	TrainingClientInteraction TrainingType = "clientInteractionTraining"
)

// ReviewDecision is the outcome of an admin review
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// =====================================================
// Embedded documents
// =====================================================

// OnboardingStep is one unit of required or optional work within a record.
// StepNumber values are assigned at initialization and never renumbered.
type OnboardingStep struct {
	StepNumber  int                    `bson:"step_number" json:"step_number"`
	Name        string                 `bson:"name" json:"name"`
	Description string                 `bson:"description" json:"description"`
	Status      StepStatus             `bson:"status" json:"status"`
	IsRequired  bool                   `bson:"is_required" json:"is_required"`
	CompletedAt *time.Time             `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Data        map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
}

// ServiceRecommendation is a scored service suggestion surfaced to a client
type ServiceRecommendation struct {
	ServiceID  string               `bson:"service_id" json:"service_id"`
	Name       string               `bson:"name" json:"name"`
	MatchScore int                  `bson:"match_score" json:"match_score"`
	Reason     string               `bson:"reason" json:"reason"`
	Status     RecommendationStatus `bson:"status" json:"status"`
}

// ConsultantRecommendation is a scored consultant suggestion surfaced to a client
type ConsultantRecommendation struct {
	ConsultantID string               `bson:"consultant_id" json:"consultant_id"`
	DisplayName  string               `bson:"display_name" json:"display_name"`
	MatchScore   int                  `bson:"match_score" json:"match_score"`
	Reason       string               `bson:"reason" json:"reason"`
	Status       RecommendationStatus `bson:"status" json:"status"`
}

// Session is a scheduled meeting attached to a client onboarding record
type Session struct {
	ID              string        `bson:"id" json:"id"`
	SessionType     string        `bson:"session_type" json:"session_type"`
	ScheduledAt     time.Time     `bson:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	MeetingLink     string        `bson:"meeting_link,omitempty" json:"meeting_link,omitempty"`
	Notes           string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          SessionStatus `bson:"status" json:"status"`
}

// Interview is a scheduled review interview on a consultant record
type Interview struct {
	ID              string    `bson:"id" json:"id"`
	InterviewerID   string    `bson:"interviewer_id" json:"interviewer_id"`
	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	MeetingLink     string    `bson:"meeting_link,omitempty" json:"meeting_link,omitempty"`
	Status          SessionStatus `bson:"status" json:"status"`
	Feedback        string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Recommendation  string    `bson:"recommendation,omitempty" json:"recommendation,omitempty"`
}

// Reminder is a nudge sent to the onboarding owner or user
type Reminder struct {
	Message string    `bson:"message" json:"message"`
	SentBy  string    `bson:"sent_by" json:"sent_by"`
	SentAt  time.Time `bson:"sent_at" json:"sent_at"`
}

// VerificationCheck is one of the consultant verification sub-machines
type VerificationCheck struct {
	Status      VerificationStatus `bson:"status" json:"status"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	DocumentURL string             `bson:"document_url,omitempty" json:"document_url,omitempty"`
	VerifiedAt  *time.Time         `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

// VerificationChecks groups the consultant verification checks
type VerificationChecks struct {
	Identity   VerificationCheck `bson:"identity" json:"identity"`
	Background VerificationCheck `bson:"background" json:"background"`
	Skill      VerificationCheck `bson:"skill" json:"skill"`
}

// ContractRecord tracks a single signed legal agreement
type ContractRecord struct {
	Signed      bool       `bson:"signed" json:"signed"`
	SignedAt    *time.Time `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
	DocumentURL string     `bson:"document_url,omitempty" json:"document_url,omitempty"`
}

// Contracts groups the consultant legal agreements
type Contracts struct {
	NDA                 ContractRecord `bson:"nda" json:"nda"`
	ConsultingAgreement ContractRecord `bson:"consulting_agreement" json:"consulting_agreement"`
	CodeOfConduct       ContractRecord `bson:"code_of_conduct" json:"code_of_conduct"`
}

// TrainingRecord tracks completion of one training track
type TrainingRecord struct {
	Completed   bool       `bson:"completed" json:"completed"`
	Score       *int       `bson:"score,omitempty" json:"score,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Training groups the consultant training tracks
type Training struct {
	Platform          TrainingRecord `bson:"platform" json:"platform"`
	ClientInteraction TrainingRecord `bson:"client_interaction" json:"client_interaction"`
}

// AdminNote is a note left by a reviewer on a consultant record
type AdminNote struct {
	AuthorID  string    `bson:"author_id" json:"author_id"`
	Note      string    `bson:"note" json:"note"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// =====================================================
// Onboarding records
// =====================================================

// ClientOnboarding is the per-client aggregate tracking workflow state.
// One record exists per client; records are never hard-deleted.
type ClientOnboarding struct {
	ID                     primitive.ObjectID         `bson:"_id,omitempty" json:"id"`
	ClientID               string                     `bson:"client_id" json:"client_id"`
	Status                 Status                     `bson:"status" json:"status"`
	Progress               int                        `bson:"progress" json:"progress"`
	CurrentStep            int                        `bson:"current_step" json:"current_step"`
	Steps                  []OnboardingStep           `bson:"steps" json:"steps"`
	Preferences            map[string]interface{}     `bson:"preferences,omitempty" json:"preferences,omitempty"`
	NeedsAssessment        map[string]interface{}     `bson:"needs_assessment,omitempty" json:"needs_assessment,omitempty"`
	CompanyInfo            map[string]interface{}     `bson:"company_info,omitempty" json:"company_info,omitempty"`
	RecommendedConsultants []ConsultantRecommendation `bson:"recommended_consultants,omitempty" json:"recommended_consultants,omitempty"`
	RecommendedServices    []ServiceRecommendation    `bson:"recommended_services,omitempty" json:"recommended_services,omitempty"`
	Sessions               []Session                  `bson:"sessions,omitempty" json:"sessions,omitempty"`
	Reminders              []Reminder                 `bson:"reminders,omitempty" json:"reminders,omitempty"`
	AssignedTo             *string                    `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	StartedAt              time.Time                  `bson:"started_at" json:"started_at"`
	CompletedAt            *time.Time                 `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	LastActivity           time.Time                  `bson:"last_activity" json:"last_activity"`
	CreatedAt              time.Time                  `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time                  `bson:"updated_at" json:"updated_at"`
}

// ConsultantOnboarding is the per-consultant aggregate tracking workflow
// state, including verification, contracts, training and the review gate.
type ConsultantOnboarding struct {
	ID                 primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	ConsultantID       string                   `bson:"consultant_id" json:"consultant_id"`
	Status             Status                   `bson:"status" json:"status"`
	Progress           int                      `bson:"progress" json:"progress"`
	CurrentStep        int                      `bson:"current_step" json:"current_step"`
	Steps              []OnboardingStep         `bson:"steps" json:"steps"`
	ProfessionalInfo   map[string]interface{}   `bson:"professional_info,omitempty" json:"professional_info,omitempty"`
	WorkHistory        []map[string]interface{} `bson:"work_history,omitempty" json:"work_history,omitempty"`
	Portfolio          []map[string]interface{} `bson:"portfolio,omitempty" json:"portfolio,omitempty"`
	ServiceOfferings   []map[string]interface{} `bson:"service_offerings,omitempty" json:"service_offerings,omitempty"`
	PaymentInformation map[string]interface{}   `bson:"payment_information,omitempty" json:"payment_information,omitempty"`
	VerificationChecks VerificationChecks       `bson:"verification_checks" json:"verification_checks"`
	Contracts          Contracts                `bson:"contracts" json:"contracts"`
	Training           Training                 `bson:"training" json:"training"`
	Interviews         []Interview              `bson:"interviews,omitempty" json:"interviews,omitempty"`
	Reminders          []Reminder               `bson:"reminders,omitempty" json:"reminders,omitempty"`
	AdminNotes         []AdminNote              `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	AssignedTo         *string                  `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	ReviewedBy         *string                  `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ApprovedAt         *time.Time               `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	StartedAt          time.Time                `bson:"started_at" json:"started_at"`
	CompletedAt        *time.Time               `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	LastActivity       time.Time                `bson:"last_activity" json:"last_activity"`
	CreatedAt          time.Time                `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time                `bson:"updated_at" json:"updated_at"`
}

// IsStalled reports whether an in-progress record has been inactive
// for longer than the given threshold.
func IsStalled(status Status, lastActivity time.Time, threshold time.Duration, now time.Time) bool {
	return status == StatusInProgress && now.Sub(lastActivity) > threshold
}
