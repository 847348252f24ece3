package domain

import (
	"fmt"
	"slices"
	"time"

	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// SubmissionState is a stage of one order submission attempt.
type SubmissionState string

// Submission state constants.
const (
	StateIdle             SubmissionState = "idle"
	StateValidating       SubmissionState = "validating"
	StateValidationFailed SubmissionState = "validation_failed"
	StateSubmitting       SubmissionState = "submitting"
	StateRecorded         SubmissionState = "recorded"
	StatePartialFailure   SubmissionState = "partial_failure"
	StateCartClearing     SubmissionState = "cart_clearing"
	StateSessionRotating  SubmissionState = "session_rotating"
	StateDone             SubmissionState = "done"
)

// AllowedSubmissionTransitions defines which state changes are valid.
func AllowedSubmissionTransitions() map[SubmissionState][]SubmissionState {
	return map[SubmissionState][]SubmissionState{
		StateIdle:             {StateValidating},
		StateValidating:       {StateValidationFailed, StateSubmitting},
		StateValidationFailed: {},
		StateSubmitting:       {StateRecorded, StatePartialFailure},
		StateRecorded:         {StateCartClearing},
		StatePartialFailure:   {StateCartClearing},
		StateCartClearing:     {StateSessionRotating},
		StateSessionRotating:  {StateDone},
		StateDone:             {},
	}
}

// Terminal reports whether no transition leaves s.
func (s SubmissionState) Terminal() bool {
	next, ok := AllowedSubmissionTransitions()[s]
	return ok && len(next) == 0
}

// Step status constants.
const (
	StepCompleted = "completed"
	StepFailed    = "failed"
	StepSkipped   = "skipped"
)

// Step name constants for the submission flow.
const (
	StepCreateOrder   = "create_order"
	StepClearCart     = "clear_cart"
	StepRotateSession = "rotate_session"
	StepRefreshCart   = "refresh_cart"
)

// StepResult records how one side-effecting step of a submission ended.
type StepResult struct {
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Submission tracks a single attempt. It is not safe for concurrent use.
type Submission struct {
	state   SubmissionState
	history []SubmissionState
	steps   []StepResult
	now     func() time.Time
}

// NewSubmission returns an attempt in the Idle state.
func NewSubmission() *Submission {
	return &Submission{
		state:   StateIdle,
		history: []SubmissionState{StateIdle},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// State returns the current state.
func (s *Submission) State() SubmissionState {
	return s.state
}

// History returns every state visited, in order.
func (s *Submission) History() []SubmissionState {
	return slices.Clone(s.history)
}

// CanTransitionTo checks whether target is reachable from the current state.
func (s *Submission) CanTransitionTo(target SubmissionState) bool {
	return slices.Contains(AllowedSubmissionTransitions()[s.state], target)
}

// Transition moves to target or returns a conflict error.
func (s *Submission) Transition(target SubmissionState) error {
	if !s.CanTransitionTo(target) {
		return apperrors.Conflict(fmt.Sprintf("cannot move submission from %s to %s", s.state, target))
	}
	s.state = target
	s.history = append(s.history, target)
	return nil
}

// Complete records a successful step.
func (s *Submission) Complete(name string) {
	s.steps = append(s.steps, StepResult{Name: name, Status: StepCompleted, ExecutedAt: s.now()})
}

// Fail records a failed step. err may be nil.
func (s *Submission) Fail(name string, err error) {
	r := StepResult{Name: name, Status: StepFailed, ExecutedAt: s.now()}
	if err != nil {
		r.Error = err.Error()
	}
	s.steps = append(s.steps, r)
}

// Skip records a step that had nothing to do.
func (s *Submission) Skip(name string) {
	s.steps = append(s.steps, StepResult{Name: name, Status: StepSkipped, ExecutedAt: s.now()})
}

// Steps returns the recorded step results.
func (s *Submission) Steps() []StepResult {
	return slices.Clone(s.steps)
}
