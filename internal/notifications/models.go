package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TemplateKind identifies a notification template
type TemplateKind string

const (
	TemplateWelcomeClient      TemplateKind = "welcome_client"
	TemplateWelcomeConsultant  TemplateKind = "welcome_consultant"
	TemplateSubmittedForReview TemplateKind = "submitted_for_review"
	TemplateReviewDecision     TemplateKind = "review_decision"
	TemplateAssignment         TemplateKind = "assignment"
	TemplateReminder           TemplateKind = "reminder"
	TemplateStalledNudge       TemplateKind = "stalled_nudge"
	TemplateSessionScheduled   TemplateKind = "session_scheduled"
	TemplateOnboardingComplete TemplateKind = "onboarding_complete"
)

// DeliveryStatus represents the outcome of a delivery attempt
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// ChannelKind identifies a delivery channel
type ChannelKind string

const (
	ChannelEmail ChannelKind = "email"
	ChannelSMS   ChannelKind = "sms"
	ChannelInApp ChannelKind = "in_app"
)

// DeliveryLog records every delivery attempt for auditing
type DeliveryLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Recipient string            `gorm:"size:255;index" json:"recipient"`
	Kind      TemplateKind      `gorm:"size:60" json:"kind"`
	Channel   ChannelKind       `gorm:"size:20" json:"channel"`
	Status    DeliveryStatus    `gorm:"size:20" json:"status"`
	Error     string            `gorm:"size:500" json:"error,omitempty"`
	Payload   datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// messageTemplate holds the subject and body templates for one kind.
// Bodies are text/template strings rendered against the notify payload.
type messageTemplate struct {
	Subject string
	Body    string
}

var templates = map[TemplateKind]messageTemplate{
	TemplateWelcomeClient: {
		Subject: "Welcome to ConsultBridge",
		Body:    "Hi {{.display_name}}, your onboarding has started. Complete your steps to get matched with consultants.",
	},
	TemplateWelcomeConsultant: {
		Subject: "Welcome to the ConsultBridge network",
		Body:    "Hi {{.display_name}}, your consultant onboarding has started. Finish all steps to submit your profile for review.",
	},
	TemplateSubmittedForReview: {
		Subject: "Your profile is under review",
		Body:    "Hi {{.display_name}}, your onboarding has been submitted. Our team will review it shortly.",
	},
	TemplateReviewDecision: {
		Subject: "Your onboarding review decision",
		Body:    "Hi {{.display_name}}, your onboarding has been {{.decision}}. {{.notes}}",
	},
	TemplateAssignment: {
		Subject: "An onboarding was assigned to you",
		Body:    "Hi {{.display_name}}, you are now the owner of {{.subject_name}}'s onboarding.",
	},
	TemplateReminder: {
		Subject: "Onboarding reminder",
		Body:    "{{.message}}",
	},
	TemplateStalledNudge: {
		Subject: "Pick up where you left off",
		Body:    "Hi {{.display_name}}, your onboarding has been inactive for a while. Finish the remaining steps to get matched.",
	},
	TemplateSessionScheduled: {
		Subject: "Session scheduled",
		Body:    "Hi {{.display_name}}, a {{.session_type}} session has been scheduled for {{.scheduled_at}}.",
	},
	TemplateOnboardingComplete: {
		Subject: "Onboarding complete",
		Body:    "Hi {{.display_name}}, congratulations - your onboarding is complete.",
	},
}
