package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/swiftremit/backend/internal/models"
	"github.com/swiftremit/backend/internal/wizard"
)

// KYC onboarding wizard: personal -> address -> document -> review.
const (
	StepKYCPersonal wizard.Step = "personal"
	StepKYCAddress  wizard.Step = "address"
	StepKYCDocument wizard.Step = "document"
	StepKYCReview   wizard.Step = "review"
)

type KYCPersonalStep struct {
	FirstName   string `json:"firstName" validate:"required,min=2,max=50"`
	LastName    string `json:"lastName" validate:"required,min=2,max=50"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Nationality string `json:"nationality" validate:"required,len=2"`
}

type KYCAddressStep struct {
	Street     string `json:"street" validate:"required,min=3,max=120"`
	City       string `json:"city" validate:"required,min=2,max=60"`
	PostalCode string `json:"postalCode" validate:"required,min=3,max=12"`
	Country    string `json:"country" validate:"required,len=2"`
}

type KYCDocumentStep struct {
	DocumentType   string `json:"documentType" validate:"required,oneof=passport national_id drivers_license"`
	DocumentNumber string `json:"documentNumber" validate:"required,alphanum,min=5,max=20"`
}

type KYCReviewStep struct {
	ConsentGiven bool `json:"consentGiven" validate:"eq=true"`
}

// KYCFlow drives identity-verification onboarding; submit files the
// dossier for review.
type KYCFlow struct {
	flow      *wizard.Flow
	validator *ValidationHelper
	db        *sql.DB
}

func NewKYCFlow(vh *ValidationHelper, db *sql.DB) *KYCFlow {
	kf := &KYCFlow{
		validator: vh,
		db:        db,
	}
	kf.flow = &wizard.Flow{
		Name:     "kyc",
		Steps:    []wizard.Step{StepKYCPersonal, StepKYCAddress, StepKYCDocument, StepKYCReview},
		Validate: kf.validateStep,
	}
	return kf
}

func (kf *KYCFlow) Flow() *wizard.Flow {
	return kf.flow
}

func (kf *KYCFlow) validateStep(step wizard.Step, data json.RawMessage) map[string]string {
	switch step {
	case StepKYCPersonal:
		var s KYCPersonalStep
		if errs := kf.validator.ValidateStepPayload(data, &s); len(errs) > 0 {
			return errs
		}
		if dob, err := time.Parse("2006-01-02", s.DateOfBirth); err == nil {
			// The 18th birthday by the calendar, not a day count.
			if dob.AddDate(18, 0, 0).After(time.Now()) {
				return map[string]string{"dateOfBirth": "you must be at least 18 years old"}
			}
		}
		return nil
	case StepKYCAddress:
		var s KYCAddressStep
		return kf.validator.ValidateStepPayload(data, &s)
	case StepKYCDocument:
		var s KYCDocumentStep
		return kf.validator.ValidateStepPayload(data, &s)
	case StepKYCReview:
		var s KYCReviewStep
		return kf.validator.ValidateStepPayload(data, &s)
	}
	return map[string]string{"_step": "unknown step"}
}

func (kf *KYCFlow) OnStepData(ctx context.Context, st *wizard.State) error {
	return nil
}

// Submit files the submission with status PENDING_REVIEW. Verification
// itself happens off-line; the flow only gathers and stores the dossier.
func (kf *KYCFlow) Submit(ctx context.Context, st *wizard.State) (any, error) {
	var personal KYCPersonalStep
	if err := st.DecodeStep(StepKYCPersonal, &personal); err != nil {
		return nil, fmt.Errorf("decode personal step: %w", err)
	}
	var address KYCAddressStep
	if err := st.DecodeStep(StepKYCAddress, &address); err != nil {
		return nil, fmt.Errorf("decode address step: %w", err)
	}
	var document KYCDocumentStep
	if err := st.DecodeStep(StepKYCDocument, &document); err != nil {
		return nil, fmt.Errorf("decode document step: %w", err)
	}

	userID, _ := ctx.Value("userID").(string)
	submission := models.KYCSubmission{
		ID:             uuid.NewString(),
		UserID:         userID,
		FirstName:      personal.FirstName,
		LastName:       personal.LastName,
		DateOfBirth:    personal.DateOfBirth,
		Nationality:    personal.Nationality,
		Street:         address.Street,
		City:           address.City,
		PostalCode:     address.PostalCode,
		Country:        address.Country,
		DocumentType:   document.DocumentType,
		DocumentNumber: document.DocumentNumber,
		Status:         models.KYCPendingReview,
		SubmittedAt:    time.Now(),
	}

	_, err := kf.db.ExecContext(ctx, `
        INSERT INTO kyc_submissions
        (id, user_id, first_name, last_name, date_of_birth, nationality, street, city, postal_code, country, document_type, document_number, status, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, submission.ID, submission.UserID, submission.FirstName, submission.LastName,
		submission.DateOfBirth, submission.Nationality, submission.Street, submission.City,
		submission.PostalCode, submission.Country, submission.DocumentType,
		submission.DocumentNumber, submission.Status, submission.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("store kyc submission: %w", err)
	}

	log.Printf("[KYC] Submission %s filed for review (user %s)", submission.ID, userID)
	return submission, nil
}
