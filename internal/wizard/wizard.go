// Package wizard implements the ordered-step flow machine shared by the
// Send, Receive, KYC and Signup flows: a fixed linear step sequence where
// advancing is gated on the current step's validator.
package wizard

import (
	"encoding/json"
	"errors"
	"time"
)

// Step names one screen of a flow.
type Step string

// ValidateFunc checks one step's submitted payload and returns one
// human-readable message per invalid field. An empty (or nil) map means the
// step passed.
type ValidateFunc func(step Step, data json.RawMessage) map[string]string

var (
	ErrUnknownStep  = errors.New("step is not part of this flow")
	ErrNotCurrent   = errors.New("only the current step can be written")
	ErrFlowComplete = errors.New("flow has already completed")
	ErrNotFinalStep = errors.New("flow is not on its final step")
)

// Flow is the immutable definition of a wizard: its name, its ordered
// steps, and the validator consulted before every advance.
type Flow struct {
	Name     string
	Steps    []Step
	Validate ValidateFunc
}

// First returns the initial step.
func (f *Flow) First() Step {
	return f.Steps[0]
}

// Last returns the final step before completion.
func (f *Flow) Last() Step {
	return f.Steps[len(f.Steps)-1]
}

func (f *Flow) index(s Step) int {
	for i, step := range f.Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// State is one live traversal of a Flow. CurrentStep is always one of the
// flow's declared steps; Completed is the terminal pseudo-step reached only
// through Submit-side code after the last step validates.
type State struct {
	Flow        string                   `json:"flow"`
	CurrentStep Step                     `json:"currentStep"`
	Data        map[Step]json.RawMessage `json:"formData"`
	Errors      map[string]string        `json:"errors"`
	Loading     bool                     `json:"isLoading"`
	Completed   bool                     `json:"completed"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// NewState starts a traversal at the flow's first step.
func NewState(f *Flow) *State {
	now := time.Now()
	return &State{
		Flow:        f.Name,
		CurrentStep: f.First(),
		Data:        make(map[Step]json.RawMessage),
		Errors:      make(map[string]string),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetStepData stores the payload for the current step. Writing any other
// step is rejected: the public interface permits no skipping. Errors for
// fields present in the payload are cleared, matching per-field clearing
// on edit.
func (f *Flow) SetStepData(st *State, step Step, data json.RawMessage) error {
	if st.Completed {
		return ErrFlowComplete
	}
	if f.index(step) < 0 {
		return ErrUnknownStep
	}
	if step != st.CurrentStep {
		return ErrNotCurrent
	}

	st.Data[step] = data
	st.UpdatedAt = time.Now()

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) == nil {
		for name := range fields {
			delete(st.Errors, name)
		}
	}
	return nil
}

// Advance validates the current step. On success it clears that step's
// errors and moves to the next step, reporting true. On failure it
// replaces the error map with one message per invalid field and leaves
// CurrentStep untouched. Advancing past the last step is a no-op failure;
// completion goes through Complete.
func (f *Flow) Advance(st *State) bool {
	if st.Completed {
		return false
	}

	if errs := f.Validate(st.CurrentStep, st.Data[st.CurrentStep]); len(errs) > 0 {
		st.Errors = errs
		st.UpdatedAt = time.Now()
		return false
	}

	st.Errors = make(map[string]string)
	st.UpdatedAt = time.Now()

	i := f.index(st.CurrentStep)
	if i < 0 || i == len(f.Steps)-1 {
		return false
	}

	st.CurrentStep = f.Steps[i+1]
	return true
}

// Retreat moves to the previous step unconditionally; at the first step it
// is a no-op.
func (f *Flow) Retreat(st *State) {
	if st.Completed {
		return
	}
	if i := f.index(st.CurrentStep); i > 0 {
		st.CurrentStep = f.Steps[i-1]
		st.UpdatedAt = time.Now()
	}
}

// AtLastStep reports whether the traversal sits on the final step.
func (f *Flow) AtLastStep(st *State) bool {
	return !st.Completed && st.CurrentStep == f.Last()
}

// Complete marks the traversal finished. It requires the final step to be
// current and to validate, so a submit can never bypass the step gate.
func (f *Flow) Complete(st *State) error {
	if st.Completed {
		return ErrFlowComplete
	}
	if !f.AtLastStep(st) {
		return ErrNotFinalStep
	}
	if errs := f.Validate(st.CurrentStep, st.Data[st.CurrentStep]); len(errs) > 0 {
		st.Errors = errs
		st.UpdatedAt = time.Now()
		return errors.New("final step failed validation")
	}

	st.Errors = make(map[string]string)
	st.Completed = true
	st.Loading = false
	st.UpdatedAt = time.Now()
	return nil
}

// Reset returns the traversal to its initial state, used when the user
// starts a new flow instance from the completed screen.
func (f *Flow) Reset(st *State) {
	st.CurrentStep = f.First()
	st.Data = make(map[Step]json.RawMessage)
	st.Errors = make(map[string]string)
	st.Loading = false
	st.Completed = false
	st.UpdatedAt = time.Now()
}

// DecodeStep unmarshals a step's stored payload into dst.
func (st *State) DecodeStep(step Step, dst any) error {
	data, ok := st.Data[step]
	if !ok {
		return ErrUnknownStep
	}
	return json.Unmarshal(data, dst)
}
