package models

import (
	"errors"
	"time"
)

// PaymentRequestStatus tracks how far a request has been paid down.
type PaymentRequestStatus string

const (
	RequestPending       PaymentRequestStatus = "pending"
	RequestPartiallyPaid PaymentRequestStatus = "partially_paid"
	RequestCompleted     PaymentRequestStatus = "completed"
	RequestExpired       PaymentRequestStatus = "expired"
	RequestCancelled     PaymentRequestStatus = "cancelled"
)

var (
	ErrRequestClosed        = errors.New("payment request is no longer accepting payments")
	ErrNonPositivePayment   = errors.New("payment amount must be positive")
	ErrPaymentCurrencyMatch = errors.New("payment currency does not match request currency")
)

// PaymentEntry is one incoming payment against a request.
type PaymentEntry struct {
	ID         string    `json:"id"`
	PayerName  string    `json:"payerName"`
	PayerEmail string    `json:"payerEmail,omitempty"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	PaidAt     time.Time `json:"paidAt"`
}

// PaymentRequest is created by the Receive flow. AmountReceived only ever
// grows; status follows it: pending -> partially_paid -> completed.
type PaymentRequest struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId,omitempty"`
	Status          PaymentRequestStatus `json:"status"`
	AmountRequested float64              `json:"amountRequested"`
	AmountReceived  float64              `json:"amountReceived"`
	Currency        string               `json:"currency"`
	Description     string               `json:"description"`
	CreatedAt       time.Time            `json:"createdAt"`
	ExpiresAt       *time.Time           `json:"expiresAt,omitempty"`
	Payments        []PaymentEntry       `json:"payments"`
	PaymentLink     string               `json:"paymentLink"`
}

// Open reports whether the request can still take payments.
func (pr *PaymentRequest) Open() bool {
	switch pr.Status {
	case RequestCompleted, RequestExpired, RequestCancelled:
		return false
	}
	if pr.ExpiresAt != nil && time.Now().After(*pr.ExpiresAt) {
		return false
	}
	return true
}

// RecordPayment appends an incoming payment and re-derives the status.
// AmountReceived never decreases.
func (pr *PaymentRequest) RecordPayment(entry PaymentEntry) error {
	if entry.Amount <= 0 {
		return ErrNonPositivePayment
	}
	if entry.Currency != "" && entry.Currency != pr.Currency {
		return ErrPaymentCurrencyMatch
	}
	if !pr.Open() {
		return ErrRequestClosed
	}

	if entry.PaidAt.IsZero() {
		entry.PaidAt = time.Now()
	}
	entry.Currency = pr.Currency

	pr.Payments = append(pr.Payments, entry)
	pr.AmountReceived += entry.Amount

	if pr.AmountReceived >= pr.AmountRequested {
		pr.Status = RequestCompleted
	} else if pr.AmountReceived > 0 {
		pr.Status = RequestPartiallyPaid
	}

	return nil
}

// Cancel closes the request. Completed requests stay completed.
func (pr *PaymentRequest) Cancel() error {
	if pr.Status == RequestCompleted {
		return ErrRequestClosed
	}
	pr.Status = RequestCancelled
	return nil
}

// MarkExpiredIfDue flips an overdue open request to expired.
func (pr *PaymentRequest) MarkExpiredIfDue(now time.Time) {
	if pr.ExpiresAt == nil {
		return
	}
	switch pr.Status {
	case RequestPending, RequestPartiallyPaid:
		if now.After(*pr.ExpiresAt) {
			pr.Status = RequestExpired
		}
	}
}
