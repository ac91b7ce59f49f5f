package onboarding

import (
	"math"
	"time"
)

// Track distinguishes the two onboarding state machines. The consultant
// track allows the "returned" step status and routes 100% progress through
// the admin review gate instead of straight to completed.
type Track string

const (
	TrackClient     Track = "client"
	TrackConsultant Track = "consultant"
)

func (t Track) allowsStepStatus(status StepStatus) bool {
	switch status {
	case StepPending, StepInProgress, StepCompleted, StepSkipped:
		return true
	case StepReturned:
		return t == TrackConsultant
	default:
		return false
	}
}

// resumable statuses are those the current-step pointer may advance to.
func (t Track) resumable(status StepStatus) bool {
	if status == StepPending || status == StepInProgress {
		return true
	}
	return t == TrackConsultant && status == StepReturned
}

// isTerminalStep reports whether a step needs no further work.
func isTerminalStep(status StepStatus) bool {
	return status == StepCompleted || status == StepSkipped
}

// UpdateStepStatus applies a status transition and data merge to the step
// with the given number, in place. The data merge is a shallow key-wise
// union: new keys overwrite, existing keys are preserved. CompletedAt is
// stamped exactly when the step first transitions to completed, so repeated
// identical calls are idempotent.
func UpdateStepStatus(steps []OnboardingStep, stepNumber int, status StepStatus, data map[string]interface{}, track Track) error {
	if !track.allowsStepStatus(status) {
		return ErrInvalidStepStatus
	}

	for i := range steps {
		if steps[i].StepNumber != stepNumber {
			continue
		}
		if status == StepCompleted && steps[i].Status != StepCompleted {
			now := time.Now()
			steps[i].CompletedAt = &now
		}
		steps[i].Status = status
		if len(data) > 0 {
			if steps[i].Data == nil {
				steps[i].Data = make(map[string]interface{}, len(data))
			}
			for k, v := range data {
				steps[i].Data[k] = v
			}
		}
		return nil
	}
	return ErrStepNotFound
}

// ComputeProgress derives the 0-100 completion percentage from a step
// collection. Skipped steps count as done.
func ComputeProgress(steps []OnboardingStep) int {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range steps {
		if isTerminalStep(s.Status) {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(steps))))
}

// stickyStatuses are never overwritten by a progress recompute.
func stickyStatus(status Status, track Track) bool {
	switch track {
	case TrackConsultant:
		return status == StatusApproved || status == StatusRejected || status == StatusCompleted
	default:
		return status == StatusCompleted
	}
}

// DeriveStatus computes the coarse overall status implied by a progress
// value, preserving sticky terminal and review states. On the consultant
// track 100% progress yields under_review rather than completed: completion
// is only reachable through the explicit admin approval gate.
func DeriveStatus(progress int, current Status, track Track) Status {
	if stickyStatus(current, track) {
		return current
	}
	switch {
	case progress == 0:
		return StatusNotStarted
	case progress >= 100:
		if track == TrackConsultant {
			return StatusUnderReview
		}
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// AdvanceCurrentStep returns the new current-step pointer after the step
// completedStep finished. If that step was not current, or no later step is
// still actionable, the pointer is unchanged.
func AdvanceCurrentStep(steps []OnboardingStep, current, completedStep int, track Track) int {
	if current != completedStep {
		return current
	}
	next := 0
	for _, s := range steps {
		if s.StepNumber <= completedStep || !track.resumable(s.Status) {
			continue
		}
		if next == 0 || s.StepNumber < next {
			next = s.StepNumber
		}
	}
	if next == 0 {
		return current
	}
	return next
}

// RequiredStepsDone reports whether every required step is completed or
// skipped. This gates client completion and consultant review submission.
func RequiredStepsDone(steps []OnboardingStep) bool {
	for _, s := range steps {
		if s.IsRequired && !isTerminalStep(s.Status) {
			return false
		}
	}
	return true
}

// finalizeSteps force-skips every non-terminal step, required or not,
// without touching the completion timestamps of steps already done.
func finalizeSteps(steps []OnboardingStep) {
	for i := range steps {
		if !isTerminalStep(steps[i].Status) {
			steps[i].Status = StepSkipped
		}
	}
}

// recompute refreshes the derived progress/status pair after a step
// mutation. It is idempotent: with no intervening step change a second call
// yields the same result.
func recompute(steps []OnboardingStep, current Status, track Track) (int, Status) {
	progress := ComputeProgress(steps)
	return progress, DeriveStatus(progress, current, track)
}
