package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testFlow has three steps; step "b" requires a payload with name set, the
// others accept anything non-empty.
func testFlow() *Flow {
	return &Flow{
		Name:  "test",
		Steps: []Step{"a", "b", "c"},
		Validate: func(step Step, data json.RawMessage) map[string]string {
			if len(data) == 0 {
				return map[string]string{"_step": "no data submitted for this step"}
			}
			if step == "b" {
				var payload struct {
					Name string `json:"name"`
				}
				if json.Unmarshal(data, &payload) != nil || payload.Name == "" {
					return map[string]string{"name": "is required"}
				}
			}
			return nil
		},
	}
}

func TestNewState(t *testing.T) {
	f := testFlow()
	st := NewState(f)

	assert.Equal(t, "test", st.Flow)
	assert.Equal(t, Step("a"), st.CurrentStep)
	assert.Empty(t, st.Data)
	assert.Empty(t, st.Errors)
	assert.False(t, st.Loading)
	assert.False(t, st.Completed)
}

func TestFlow_SetStepData(t *testing.T) {
	f := testFlow()

	t.Run("writes the current step", func(t *testing.T) {
		st := NewState(f)
		err := f.SetStepData(st, "a", json.RawMessage(`{"x":1}`))
		assert.NoError(t, err)
		assert.JSONEq(t, `{"x":1}`, string(st.Data["a"]))
	})

	t.Run("rejects non-current steps", func(t *testing.T) {
		st := NewState(f)
		err := f.SetStepData(st, "b", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrNotCurrent)
	})

	t.Run("rejects unknown steps", func(t *testing.T) {
		st := NewState(f)
		err := f.SetStepData(st, "zz", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrUnknownStep)
	})

	t.Run("editing a field clears its error", func(t *testing.T) {
		st := NewState(f)
		st.Errors = map[string]string{"name": "is required", "other": "bad"}

		err := f.SetStepData(st, "a", json.RawMessage(`{"name":"Jane"}`))
		assert.NoError(t, err)
		assert.NotContains(t, st.Errors, "name")
		assert.Contains(t, st.Errors, "other")
	})

	t.Run("completed flows reject writes", func(t *testing.T) {
		st := NewState(f)
		st.Completed = true
		err := f.SetStepData(st, "a", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrFlowComplete)
	})
}

func TestFlow_Advance(t *testing.T) {
	f := testFlow()

	t.Run("valid step advances and clears errors", func(t *testing.T) {
		st := NewState(f)
		assert.NoError(t, f.SetStepData(st, "a", json.RawMessage(`{"x":1}`)))

		assert.True(t, f.Advance(st))
		assert.Equal(t, Step("b"), st.CurrentStep)
		assert.Empty(t, st.Errors)
	})

	t.Run("invalid step stays put and reports field errors", func(t *testing.T) {
		st := NewState(f)
		assert.NoError(t, f.SetStepData(st, "a", json.RawMessage(`{"x":1}`)))
		assert.True(t, f.Advance(st))

		assert.NoError(t, f.SetStepData(st, "b", json.RawMessage(`{"name":""}`)))
		assert.False(t, f.Advance(st))
		assert.Equal(t, Step("b"), st.CurrentStep)
		assert.Equal(t, "is required", st.Errors["name"])

		// Fixing the field lets the advance through.
		assert.NoError(t, f.SetStepData(st, "b", json.RawMessage(`{"name":"Jane"}`)))
		assert.True(t, f.Advance(st))
		assert.Equal(t, Step("c"), st.CurrentStep)
		assert.Empty(t, st.Errors)
	})

	t.Run("empty step data fails validation", func(t *testing.T) {
		st := NewState(f)
		assert.False(t, f.Advance(st))
		assert.Equal(t, Step("a"), st.CurrentStep)
		assert.NotEmpty(t, st.Errors)
	})

	t.Run("last step does not advance past the end", func(t *testing.T) {
		st := NewState(f)
		st.CurrentStep = "c"
		assert.NoError(t, f.SetStepData(st, "c", json.RawMessage(`{"x":1}`)))

		assert.False(t, f.Advance(st))
		assert.Equal(t, Step("c"), st.CurrentStep)
		assert.False(t, st.Completed)
	})
}

func TestFlow_Retreat(t *testing.T) {
	f := testFlow()
	st := NewState(f)
	st.CurrentStep = "c"

	// Retreat never validates; it works even with errors present.
	st.Errors = map[string]string{"name": "is required"}
	f.Retreat(st)
	assert.Equal(t, Step("b"), st.CurrentStep)

	f.Retreat(st)
	assert.Equal(t, Step("a"), st.CurrentStep)

	// First step is a no-op.
	f.Retreat(st)
	assert.Equal(t, Step("a"), st.CurrentStep)
}

func TestFlow_Complete(t *testing.T) {
	f := testFlow()

	t.Run("requires the final step", func(t *testing.T) {
		st := NewState(f)
		assert.ErrorIs(t, f.Complete(st), ErrNotFinalStep)
	})

	t.Run("revalidates the final step", func(t *testing.T) {
		st := NewState(f)
		st.CurrentStep = "c"

		err := f.Complete(st)
		assert.Error(t, err)
		assert.False(t, st.Completed)
		assert.NotEmpty(t, st.Errors)
	})

	t.Run("completes with valid final step", func(t *testing.T) {
		st := NewState(f)
		st.CurrentStep = "c"
		assert.NoError(t, f.SetStepData(st, "c", json.RawMessage(`{"x":1}`)))

		assert.NoError(t, f.Complete(st))
		assert.True(t, st.Completed)
		assert.False(t, st.Loading)

		assert.ErrorIs(t, f.Complete(st), ErrFlowComplete)
	})
}

func TestFlow_Reset(t *testing.T) {
	f := testFlow()
	st := NewState(f)
	st.CurrentStep = "c"
	st.Data["a"] = json.RawMessage(`{"x":1}`)
	st.Errors["name"] = "is required"
	st.Completed = true

	f.Reset(st)

	assert.Equal(t, Step("a"), st.CurrentStep)
	assert.Empty(t, st.Data)
	assert.Empty(t, st.Errors)
	assert.False(t, st.Completed)
	assert.False(t, st.Loading)
}

func TestState_DecodeStep(t *testing.T) {
	f := testFlow()
	st := NewState(f)
	assert.NoError(t, f.SetStepData(st, "a", json.RawMessage(`{"name":"Jane"}`)))

	var payload struct {
		Name string `json:"name"`
	}
	assert.NoError(t, st.DecodeStep("a", &payload))
	assert.Equal(t, "Jane", payload.Name)

	assert.ErrorIs(t, st.DecodeStep("b", &payload), ErrUnknownStep)
}
