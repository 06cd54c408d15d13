package models

import "time"

// KYCStatus follows the onboarding pipeline states.
type KYCStatus string

const (
	KYCNotStarted    KYCStatus = "NOT_STARTED"
	KYCPendingReview KYCStatus = "PENDING_REVIEW"
	KYCInProgress    KYCStatus = "KYC_IN_PROGRESS"
	KYCApproved      KYCStatus = "APPROVED"
	KYCRejected      KYCStatus = "REJECTED"
)

type User struct {
	ID          int       `json:"id" example:"1"`
	Email       string    `json:"email" example:"user@example.com"`
	FirstName   string    `json:"firstName" example:"John"`
	LastName    string    `json:"lastName" example:"Doe"`
	AccountID   string    `json:"accountId" example:"1234567890"`
	PhoneNumber string    `json:"phoneNumber" example:"+2348012345678"`
	Country     string    `json:"country" example:"NG"`
	KYCStatus   KYCStatus `json:"kycStatus"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// KYCSubmission is the persisted output of the KYC onboarding flow.
type KYCSubmission struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	DateOfBirth    string    `json:"dateOfBirth"`
	Nationality    string    `json:"nationality"`
	Street         string    `json:"street"`
	City           string    `json:"city"`
	PostalCode     string    `json:"postalCode"`
	Country        string    `json:"country"`
	DocumentType   string    `json:"documentType"`
	DocumentNumber string    `json:"documentNumber"`
	Status         KYCStatus `json:"status"`
	SubmittedAt    time.Time `json:"submittedAt"`
}
