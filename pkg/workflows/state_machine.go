package workflows

// StateMachine enforces onboarding status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewConsultantOnboardingMachine returns the transition table for the
// consultant onboarding review flow. Approval and rejection are only
// reachable from under_review, and completion only from approved.
func NewConsultantOnboardingMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"not_started":  {"in_progress"},
			"in_progress":  {"under_review"},
			"under_review": {"approved", "rejected"},
			"approved":     {"completed"},
			"rejected":     {},
			"completed":    {},
		},
	}
}

// NewClientOnboardingMachine returns the transition table for the client
// onboarding flow, which has no review gate.
func NewClientOnboardingMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"not_started": {"in_progress", "completed"},
			"in_progress": {"completed"},
			"completed":   {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
