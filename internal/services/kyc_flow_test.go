package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/swiftremit/backend/internal/models"
	"github.com/swiftremit/backend/internal/wizard"
)

func TestKYCFlow_ValidateStep(t *testing.T) {
	kf := NewKYCFlow(NewValidationHelper(), nil)

	t.Run("personal step", func(t *testing.T) {
		errs := kf.validateStep(StepKYCPersonal, json.RawMessage(
			`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"1990-04-12","nationality":"NG"}`))
		assert.Empty(t, errs)

		errs = kf.validateStep(StepKYCPersonal, json.RawMessage(
			`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"12/04/1990","nationality":"NG"}`))
		assert.Equal(t, "must be a valid date (YYYY-MM-DD)", errs["dateOfBirth"])
	})

	t.Run("minors are rejected", func(t *testing.T) {
		errs := kf.validateStep(StepKYCPersonal, json.RawMessage(
			`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"2020-01-01","nationality":"NG"}`))
		assert.Equal(t, "you must be at least 18 years old", errs["dateOfBirth"])
	})

	t.Run("a few days short of 18 is still a minor", func(t *testing.T) {
		dob := time.Now().AddDate(-18, 0, 2).Format("2006-01-02")
		errs := kf.validateStep(StepKYCPersonal, json.RawMessage(fmt.Sprintf(
			`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"%s","nationality":"NG"}`, dob)))
		assert.Equal(t, "you must be at least 18 years old", errs["dateOfBirth"])

		dob = time.Now().AddDate(-18, 0, -1).Format("2006-01-02")
		errs = kf.validateStep(StepKYCPersonal, json.RawMessage(fmt.Sprintf(
			`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"%s","nationality":"NG"}`, dob)))
		assert.Empty(t, errs)
	})

	t.Run("document step restricts types", func(t *testing.T) {
		errs := kf.validateStep(StepKYCDocument, json.RawMessage(
			`{"documentType":"library_card","documentNumber":"AB12345"}`))
		assert.Contains(t, errs["documentType"], "must be one of")

		errs = kf.validateStep(StepKYCDocument, json.RawMessage(
			`{"documentType":"passport","documentNumber":"AB12345"}`))
		assert.Empty(t, errs)
	})

	t.Run("review step requires consent", func(t *testing.T) {
		errs := kf.validateStep(StepKYCReview, json.RawMessage(`{"consentGiven":false}`))
		assert.Equal(t, "must be accepted", errs["consentGiven"])
	})
}

func TestKYCFlow_Submit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	kf := NewKYCFlow(NewValidationHelper(), db)
	flow := kf.Flow()

	st := wizard.NewState(flow)
	assert.NoError(t, flow.SetStepData(st, StepKYCPersonal, json.RawMessage(
		`{"firstName":"Ada","lastName":"Obi","dateOfBirth":"1990-04-12","nationality":"NG"}`)))
	assert.True(t, flow.Advance(st))
	assert.NoError(t, flow.SetStepData(st, StepKYCAddress, json.RawMessage(
		`{"street":"1 Marina Rd","city":"Lagos","postalCode":"101001","country":"NG"}`)))
	assert.True(t, flow.Advance(st))
	assert.NoError(t, flow.SetStepData(st, StepKYCDocument, json.RawMessage(
		`{"documentType":"passport","documentNumber":"A01234567"}`)))
	assert.True(t, flow.Advance(st))
	assert.NoError(t, flow.SetStepData(st, StepKYCReview, json.RawMessage(`{"consentGiven":true}`)))

	mock.ExpectExec("INSERT INTO kyc_submissions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := context.WithValue(context.Background(), "userID", "42")
	result, err := kf.Submit(ctx, st)
	assert.NoError(t, err)

	submission, ok := result.(models.KYCSubmission)
	assert.True(t, ok)
	assert.Equal(t, "42", submission.UserID)
	assert.Equal(t, models.KYCPendingReview, submission.Status)
	assert.Equal(t, "passport", submission.DocumentType)
	assert.NotEmpty(t, submission.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
