package onboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSteps(statuses ...StepStatus) []OnboardingStep {
	steps := make([]OnboardingStep, len(statuses))
	for i, status := range statuses {
		steps[i] = OnboardingStep{StepNumber: i + 1, Status: status, IsRequired: true}
	}
	return steps
}

func TestComputeProgress(t *testing.T) {
	assert.Equal(t, 0, ComputeProgress(nil))

	steps := makeSteps(StepCompleted, StepCompleted, StepCompleted, StepCompleted,
		StepSkipped, StepPending, StepPending, StepInProgress)
	// 5 of 8 done, 62.5 rounds up.
	assert.Equal(t, 63, ComputeProgress(steps))

	steps = makeSteps(StepCompleted, StepSkipped)
	assert.Equal(t, 100, ComputeProgress(steps))

	steps = makeSteps(StepPending, StepInProgress)
	assert.Equal(t, 0, ComputeProgress(steps))
}

func TestUpdateStepStatusStampsCompletedAtOnce(t *testing.T) {
	steps := makeSteps(StepPending)

	require.NoError(t, UpdateStepStatus(steps, 1, StepCompleted, nil, TrackClient))
	require.NotNil(t, steps[0].CompletedAt)
	first := *steps[0].CompletedAt

	require.NoError(t, UpdateStepStatus(steps, 1, StepCompleted, nil, TrackClient))
	assert.Equal(t, first, *steps[0].CompletedAt)
}

func TestUpdateStepStatusMergesData(t *testing.T) {
	steps := makeSteps(StepPending)

	require.NoError(t, UpdateStepStatus(steps, 1, StepInProgress,
		map[string]interface{}{"a": 1, "b": 2}, TrackClient))
	require.NoError(t, UpdateStepStatus(steps, 1, StepCompleted,
		map[string]interface{}{"b": 3, "c": 4}, TrackClient))

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, steps[0].Data)
}

func TestUpdateStepStatusReturnedOnlyForConsultants(t *testing.T) {
	steps := makeSteps(StepCompleted)

	err := UpdateStepStatus(steps, 1, StepReturned, nil, TrackClient)
	assert.ErrorIs(t, err, ErrInvalidStepStatus)

	err = UpdateStepStatus(steps, 1, StepReturned, nil, TrackConsultant)
	assert.NoError(t, err)
	assert.Equal(t, StepReturned, steps[0].Status)
}

func TestUpdateStepStatusUnknownStep(t *testing.T) {
	steps := makeSteps(StepPending)
	err := UpdateStepStatus(steps, 9, StepCompleted, nil, TrackClient)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusNotStarted, DeriveStatus(0, StatusNotStarted, TrackClient))
	assert.Equal(t, StatusInProgress, DeriveStatus(40, StatusNotStarted, TrackClient))
	assert.Equal(t, StatusCompleted, DeriveStatus(100, StatusInProgress, TrackClient))

	// Full consultant progress routes through the review gate.
	assert.Equal(t, StatusUnderReview, DeriveStatus(100, StatusInProgress, TrackConsultant))

	// Terminal and review outcomes are sticky.
	assert.Equal(t, StatusCompleted, DeriveStatus(50, StatusCompleted, TrackClient))
	assert.Equal(t, StatusApproved, DeriveStatus(100, StatusApproved, TrackConsultant))
	assert.Equal(t, StatusRejected, DeriveStatus(100, StatusRejected, TrackConsultant))
}

func TestAdvanceCurrentStep(t *testing.T) {
	steps := makeSteps(StepCompleted, StepCompleted, StepPending, StepPending)

	// Completing the current step moves to the next actionable one.
	assert.Equal(t, 3, AdvanceCurrentStep(steps, 2, 2, TrackClient))

	// Completing a step that is not current leaves the pointer alone.
	assert.Equal(t, 3, AdvanceCurrentStep(steps, 3, 1, TrackClient))

	// The pointer skips already finished steps.
	steps = makeSteps(StepCompleted, StepCompleted, StepSkipped, StepPending)
	assert.Equal(t, 4, AdvanceCurrentStep(steps, 2, 2, TrackClient))

	// With nothing actionable left the pointer stays put.
	steps = makeSteps(StepCompleted, StepCompleted, StepCompleted)
	assert.Equal(t, 3, AdvanceCurrentStep(steps, 3, 3, TrackClient))
}

func TestRequiredStepsDone(t *testing.T) {
	steps := []OnboardingStep{
		{StepNumber: 1, Status: StepCompleted, IsRequired: true},
		{StepNumber: 2, Status: StepSkipped, IsRequired: true},
		{StepNumber: 3, Status: StepPending, IsRequired: false},
	}
	assert.True(t, RequiredStepsDone(steps))

	steps[0].Status = StepInProgress
	assert.False(t, RequiredStepsDone(steps))
}

func TestFinalizeStepsPreservesCompleted(t *testing.T) {
	done := time.Now().Add(-time.Hour)
	steps := []OnboardingStep{
		{StepNumber: 1, Status: StepCompleted, CompletedAt: &done},
		{StepNumber: 2, Status: StepPending},
		{StepNumber: 3, Status: StepInProgress},
	}

	finalizeSteps(steps)

	assert.Equal(t, StepCompleted, steps[0].Status)
	assert.Equal(t, done, *steps[0].CompletedAt)
	assert.Equal(t, StepSkipped, steps[1].Status)
	assert.Equal(t, StepSkipped, steps[2].Status)
	assert.Nil(t, steps[1].CompletedAt)
}

func TestIsStalled(t *testing.T) {
	now := time.Now()
	threshold := 7 * 24 * time.Hour

	assert.True(t, IsStalled(StatusInProgress, now.Add(-8*24*time.Hour), threshold, now))
	assert.False(t, IsStalled(StatusInProgress, now.Add(-time.Hour), threshold, now))

	// Only in-progress records can stall.
	assert.False(t, IsStalled(StatusCompleted, now.Add(-30*24*time.Hour), threshold, now))
	assert.False(t, IsStalled(StatusUnderReview, now.Add(-30*24*time.Hour), threshold, now))
}
