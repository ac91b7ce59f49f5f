package onboarding

import "errors"

// Not-found errors. Repository implementations map driver-level
// "no documents" results onto these.
var (
	ErrOnboardingNotFound     = errors.New("onboarding record not found")
	ErrStepNotFound           = errors.New("onboarding step not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
)

// Precondition errors. An operation that returns one of these leaves the
// stored record unmodified.
var (
	ErrNotAClient              = errors.New("referenced user is not a client")
	ErrNotAConsultant          = errors.New("referenced user is not a consultant")
	ErrInvalidStepStatus       = errors.New("invalid step status")
	ErrIncompleteRequiredSteps = errors.New("all required steps must be completed or skipped")
	ErrInvalidContractType     = errors.New("invalid contract type")
	ErrInvalidTrainingType     = errors.New("invalid training type")
	ErrInvalidVerificationKind = errors.New("invalid verification kind")
	ErrNotUnderReview          = errors.New("onboarding is not under review")
	ErrNotApproved             = errors.New("onboarding has not been approved")
	ErrRejectionNoteRequired   = errors.New("a note is required when rejecting")
	ErrInvalidReviewDecision   = errors.New("review decision must be approve or reject")
	ErrInvalidAssignee         = errors.New("assignee must be an admin or consultant")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
)

// Permission errors, enforced at the orchestrator and handler layer rather
// than inside the state machines.
var (
	ErrPermissionDenied = errors.New("caller is not permitted to perform this action")
)
