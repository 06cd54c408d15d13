package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/swiftremit/backend/internal/wizard"
)

// FlowProvider is one wizard flow: its definition, its cross-step
// derivations, and its final submit action.
type FlowProvider interface {
	Flow() *wizard.Flow
	// OnStepData runs after a step's payload is stored, for derivations
	// such as auto-populating receiveCurrency from the recipient country.
	OnStepData(ctx context.Context, st *wizard.State) error
	// Submit commits the finished flow and returns the client-facing result.
	// It is only invoked after the final step has validated.
	Submit(ctx context.Context, st *wizard.State) (any, error)
}

// FlowService exposes wizard traversals as session-scoped HTTP resources.
type FlowService struct {
	store     *wizard.Store
	providers map[string]FlowProvider
}

func NewFlowService(store *wizard.Store, providers ...FlowProvider) *FlowService {
	fs := &FlowService{
		store:     store,
		providers: make(map[string]FlowProvider, len(providers)),
	}
	for _, p := range providers {
		fs.providers[p.Flow().Name] = p
	}
	return fs
}

type flowStateResponse struct {
	SessionID string        `json:"sessionId"`
	State     *wizard.State `json:"state"`
	Advanced  *bool         `json:"advanced,omitempty"`
	Result    any           `json:"result,omitempty"`
}

type stepDataRequest struct {
	Step string          `json:"step,omitempty"`
	Data json.RawMessage `json:"data"`
}

// StartFlow creates a new flow session
// @Summary Start a wizard flow
// @Description Create a new session for the named flow, positioned at its first step
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name" Enums(send, receive, kyc, signup)
// @Success 201 {object} flowStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow} [post]
func (fs *FlowService) StartFlow(w http.ResponseWriter, r *http.Request) {
	provider, ok := fs.provider(w, r)
	if !ok {
		return
	}

	st := wizard.NewState(provider.Flow())
	sessionID := uuid.NewString()

	if err := fs.store.Save(r.Context(), sessionID, st); err != nil {
		log.Printf("[FLOW] Failed to save new %s session: %v", st.Flow, err)
		SendErrorResponse(w, "Failed to start flow", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[FLOW] Started %s session %s", st.Flow, sessionID)
	writeJSON(w, http.StatusCreated, flowStateResponse{SessionID: sessionID, State: st})
}

// GetFlow returns a session's current state
// @Summary Get flow state
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Success 200 {object} flowStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID} [get]
func (fs *FlowService) GetFlow(w http.ResponseWriter, r *http.Request) {
	_, st, sessionID, ok := fs.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, flowStateResponse{SessionID: sessionID, State: st})
}

// SetStepData stores form data for the current step
// @Summary Write current step data
// @Description Store the current step's form payload; errors for edited fields are cleared
// @Tags flows
// @Accept json
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Param request body stepDataRequest true "Step payload"
// @Success 200 {object} flowStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID}/step [put]
func (fs *FlowService) SetStepData(w http.ResponseWriter, r *http.Request) {
	provider, st, sessionID, ok := fs.session(w, r)
	if !ok {
		return
	}

	var req stepDataRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Data) == 0 {
		SendErrorResponse(w, "Step data is required", http.StatusBadRequest, nil)
		return
	}

	step := st.CurrentStep
	if req.Step != "" {
		step = wizard.Step(req.Step)
	}

	flow := provider.Flow()
	if err := flow.SetStepData(st, step, req.Data); err != nil {
		switch {
		case errors.Is(err, wizard.ErrUnknownStep):
			SendErrorResponse(w, "Unknown step for this flow", http.StatusBadRequest, nil)
		case errors.Is(err, wizard.ErrNotCurrent):
			SendErrorResponse(w, "Steps must be completed in order", http.StatusConflict, nil)
		case errors.Is(err, wizard.ErrFlowComplete):
			SendErrorResponse(w, "Flow has already completed", http.StatusConflict, nil)
		default:
			SendErrorResponse(w, "Failed to store step data", http.StatusInternalServerError, nil)
		}
		return
	}

	if err := provider.OnStepData(r.Context(), st); err != nil {
		log.Printf("[FLOW] %s step hook failed for session %s: %v", st.Flow, sessionID, err)
		SendErrorResponse(w, "Failed to process step data", http.StatusInternalServerError, nil)
		return
	}

	if !fs.save(w, r, sessionID, st) {
		return
	}
	writeJSON(w, http.StatusOK, flowStateResponse{SessionID: sessionID, State: st})
}

// Advance validates the current step and moves forward
// @Summary Advance the flow
// @Description Validate the current step; move to the next step on success, report field errors on failure
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Success 200 {object} flowStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID}/advance [post]
func (fs *FlowService) Advance(w http.ResponseWriter, r *http.Request) {
	provider, st, sessionID, ok := fs.session(w, r)
	if !ok {
		return
	}

	advanced := provider.Flow().Advance(st)
	if !fs.save(w, r, sessionID, st) {
		return
	}

	writeJSON(w, http.StatusOK, flowStateResponse{SessionID: sessionID, State: st, Advanced: &advanced})
}

// Back retreats to the previous step
// @Summary Go back one step
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Success 200 {object} flowStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID}/back [post]
func (fs *FlowService) Back(w http.ResponseWriter, r *http.Request) {
	provider, st, sessionID, ok := fs.session(w, r)
	if !ok {
		return
	}

	provider.Flow().Retreat(st)
	if !fs.save(w, r, sessionID, st) {
		return
	}
	writeJSON(w, http.StatusOK, flowStateResponse{SessionID: sessionID, State: st})
}

// Submit commits the finished flow
// @Summary Submit the flow
// @Description Validate the final step and run the flow's submit action; failures are retryable
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Success 200 {object} flowStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID}/submit [post]
func (fs *FlowService) Submit(w http.ResponseWriter, r *http.Request) {
	provider, st, sessionID, ok := fs.session(w, r)
	if !ok {
		return
	}

	flow := provider.Flow()
	if st.Completed {
		SendErrorResponse(w, "Flow has already completed", http.StatusConflict, nil)
		return
	}
	if !flow.AtLastStep(st) {
		SendErrorResponse(w, "Flow is not on its final step", http.StatusConflict, nil)
		return
	}

	if errs := flow.Validate(st.CurrentStep, st.Data[st.CurrentStep]); len(errs) > 0 {
		st.Errors = errs
		if !fs.save(w, r, sessionID, st) {
			return
		}
		writeJSON(w, http.StatusBadRequest, flowStateResponse{SessionID: sessionID, State: st})
		return
	}

	st.Loading = true
	result, err := provider.Submit(r.Context(), st)
	st.Loading = false
	if err != nil {
		// Submission failure is a retryable, user-visible state; the
		// session stays on the final step.
		log.Printf("[FLOW] %s submit failed for session %s: %v", st.Flow, sessionID, err)
		if !fs.save(w, r, sessionID, st) {
			return
		}
		SendErrorResponse(w, "Submission failed, please try again", http.StatusBadGateway, nil)
		return
	}

	if err := flow.Complete(st); err != nil {
		log.Printf("[FLOW] %s completion failed for session %s: %v", st.Flow, sessionID, err)
		SendErrorResponse(w, "Failed to complete flow", http.StatusInternalServerError, nil)
		return
	}

	if !fs.save(w, r, sessionID, st) {
		return
	}

	log.Printf("[FLOW] %s session %s completed", st.Flow, sessionID)
	writeJSON(w, http.StatusOK, flowStateResponse{SessionID: sessionID, State: st, Result: result})
}

// Cancel discards a session
// @Summary Cancel the flow
// @Tags flows
// @Produce json
// @Param flow path string true "Flow name"
// @Param sessionID path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /flows/{flow}/{sessionID} [delete]
func (fs *FlowService) Cancel(w http.ResponseWriter, r *http.Request) {
	provider, ok := fs.provider(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := fs.store.Delete(r.Context(), provider.Flow().Name, sessionID); err != nil {
		log.Printf("[FLOW] Failed to delete session %s: %v", sessionID, err)
		SendErrorResponse(w, "Failed to cancel flow", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[FLOW] Cancelled %s session %s", provider.Flow().Name, sessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Flow cancelled"})
}

func (fs *FlowService) provider(w http.ResponseWriter, r *http.Request) (FlowProvider, bool) {
	name := chi.URLParam(r, "flow")
	provider, ok := fs.providers[name]
	if !ok {
		SendErrorResponse(w, "Unknown flow", http.StatusNotFound, nil)
		return nil, false
	}
	return provider, true
}

func (fs *FlowService) session(w http.ResponseWriter, r *http.Request) (FlowProvider, *wizard.State, string, bool) {
	provider, ok := fs.provider(w, r)
	if !ok {
		return nil, nil, "", false
	}

	sessionID := chi.URLParam(r, "sessionID")
	st, err := fs.store.Load(r.Context(), provider.Flow().Name, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			SendErrorResponse(w, "Flow session not found or expired", http.StatusNotFound, nil)
		} else {
			log.Printf("[FLOW] Failed to load session %s: %v", sessionID, err)
			SendErrorResponse(w, "Failed to load flow session", http.StatusInternalServerError, nil)
		}
		return nil, nil, "", false
	}

	return provider, st, sessionID, true
}

func (fs *FlowService) save(w http.ResponseWriter, r *http.Request, sessionID string, st *wizard.State) bool {
	if err := fs.store.Save(r.Context(), sessionID, st); err != nil {
		log.Printf("[FLOW] Failed to save session %s: %v", sessionID, err)
		SendErrorResponse(w, "Failed to save flow session", http.StatusInternalServerError, nil)
		return false
	}
	return true
}

// decodeBody applies the standard request-body hardening before decoding.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
