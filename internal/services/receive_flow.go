package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/swiftremit/backend/internal/currency"
	"github.com/swiftremit/backend/internal/models"
	"github.com/swiftremit/backend/internal/wizard"
)

// Receive Money wizard: details -> amount -> review.
const (
	StepReceiveDetails wizard.Step = "details"
	StepReceiveAmount  wizard.Step = "amount"
	StepReceiveReview  wizard.Step = "review"
)

// ReceiveDetailsStep describes what the request is for.
type ReceiveDetailsStep struct {
	Description string `json:"description" validate:"required,min=3,max=200"`
	PayerHint   string `json:"payerHint" validate:"omitempty,max=100"`
}

// ReceiveAmountStep is how much is being requested. ExpiresInDays of zero
// means the request never expires.
type ReceiveAmountStep struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	ExpiresInDays int     `json:"expiresInDays" validate:"omitempty,gte=1,lte=90"`
}

// ReceiveReviewStep confirms the request before the link is created.
type ReceiveReviewStep struct {
	Confirmed bool `json:"confirmed" validate:"eq=true"`
}

// ReceiveFlow drives the Receive Money wizard; submit mints a payment
// request with a shareable link.
type ReceiveFlow struct {
	flow      *wizard.Flow
	validator *ValidationHelper
	requests  *RequestService
}

func NewReceiveFlow(vh *ValidationHelper, requests *RequestService) *ReceiveFlow {
	rf := &ReceiveFlow{
		validator: vh,
		requests:  requests,
	}
	rf.flow = &wizard.Flow{
		Name:     "receive",
		Steps:    []wizard.Step{StepReceiveDetails, StepReceiveAmount, StepReceiveReview},
		Validate: rf.validateStep,
	}
	return rf
}

func (rf *ReceiveFlow) Flow() *wizard.Flow {
	return rf.flow
}

func (rf *ReceiveFlow) validateStep(step wizard.Step, data json.RawMessage) map[string]string {
	switch step {
	case StepReceiveDetails:
		var s ReceiveDetailsStep
		return rf.validator.ValidateStepPayload(data, &s)
	case StepReceiveAmount:
		var s ReceiveAmountStep
		if errs := rf.validator.ValidateStepPayload(data, &s); len(errs) > 0 {
			return errs
		}
		if !currency.Supported(s.Currency) {
			return map[string]string{"currency": "is not a supported currency"}
		}
		return nil
	case StepReceiveReview:
		var s ReceiveReviewStep
		return rf.validator.ValidateStepPayload(data, &s)
	}
	return map[string]string{"_step": "unknown step"}
}

func (rf *ReceiveFlow) OnStepData(ctx context.Context, st *wizard.State) error {
	return nil
}

// Submit creates the payment request and its shareable link.
func (rf *ReceiveFlow) Submit(ctx context.Context, st *wizard.State) (any, error) {
	var details ReceiveDetailsStep
	if err := st.DecodeStep(StepReceiveDetails, &details); err != nil {
		return nil, fmt.Errorf("decode details step: %w", err)
	}
	var amount ReceiveAmountStep
	if err := st.DecodeStep(StepReceiveAmount, &amount); err != nil {
		return nil, fmt.Errorf("decode amount step: %w", err)
	}

	userID, _ := ctx.Value("userID").(string)
	pr := models.PaymentRequest{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          models.RequestPending,
		AmountRequested: amount.Amount,
		Currency:        amount.Currency,
		Description:     details.Description,
		CreatedAt:       time.Now(),
		Payments:        []models.PaymentEntry{},
	}
	if amount.ExpiresInDays > 0 {
		expires := pr.CreatedAt.AddDate(0, 0, amount.ExpiresInDays)
		pr.ExpiresAt = &expires
	}
	pr.PaymentLink = rf.requests.PaymentLink(pr.ID)

	if err := rf.requests.Insert(ctx, &pr); err != nil {
		return nil, fmt.Errorf("store payment request: %w", err)
	}

	log.Printf("[RECEIVE] Payment request %s created for %s", pr.ID,
		currency.Format(pr.AmountRequested, pr.Currency))
	return pr, nil
}
