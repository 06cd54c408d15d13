package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/viper"

	"github.com/swiftremit/backend/internal/models"
)

// RequestService persists payment requests and serves the shareable
// payment-link surface, including the link QR code.
type RequestService struct {
	db        *sql.DB
	baseURL   string
	validator *ValidationHelper
}

func NewRequestService(db *sql.DB, vh *ValidationHelper) *RequestService {
	viper.SetDefault("app.pay_base_url", "https://pay.swiftremit.example")
	return &RequestService{
		db:        db,
		baseURL:   strings.TrimRight(viper.GetString("app.pay_base_url"), "/"),
		validator: vh,
	}
}

// PaymentLink is the shareable URL for a request.
func (rs *RequestService) PaymentLink(requestID string) string {
	return fmt.Sprintf("%s/pay/%s", rs.baseURL, requestID)
}

// Insert stores a newly minted payment request.
func (rs *RequestService) Insert(ctx context.Context, pr *models.PaymentRequest) error {
	payments, err := json.Marshal(pr.Payments)
	if err != nil {
		return err
	}

	_, err = rs.db.ExecContext(ctx, `
        INSERT INTO payment_requests
        (id, user_id, status, amount_requested, amount_received, currency, description, payment_link, payments, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, pr.ID, pr.UserID, pr.Status, pr.AmountRequested, pr.AmountReceived,
		pr.Currency, pr.Description, pr.PaymentLink, payments, pr.CreatedAt, pr.ExpiresAt)
	return err
}

const selectRequestSQL = `
        SELECT id, user_id, status, amount_requested, amount_received, currency, description, payment_link, payments, created_at, expires_at
        FROM payment_requests
        WHERE id = $1`

func scanRequest(row *sql.Row) (*models.PaymentRequest, error) {
	var pr models.PaymentRequest
	var payments []byte
	err := row.Scan(
		&pr.ID, &pr.UserID, &pr.Status, &pr.AmountRequested, &pr.AmountReceived,
		&pr.Currency, &pr.Description, &pr.PaymentLink, &payments, &pr.CreatedAt, &pr.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payments, &pr.Payments); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (rs *RequestService) fetch(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	return scanRequest(rs.db.QueryRowContext(ctx, selectRequestSQL, requestID))
}

// fetchForUpdate row-locks the request so concurrent payments against the
// same (public) link serialize instead of overwriting each other's totals.
func (rs *RequestService) fetchForUpdate(ctx context.Context, tx *sql.Tx, requestID string) (*models.PaymentRequest, error) {
	return scanRequest(tx.QueryRowContext(ctx, selectRequestSQL+" FOR UPDATE", requestID))
}

type requestExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (rs *RequestService) update(ctx context.Context, db requestExecer, pr *models.PaymentRequest) error {
	payments, err := json.Marshal(pr.Payments)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        UPDATE payment_requests
        SET status = $1, amount_received = $2, payments = $3
        WHERE id = $4
    `, pr.Status, pr.AmountReceived, payments, pr.ID)
	return err
}

// GetRequest returns a payment request by ID
// @Summary Get payment request
// @Description Fetch a payment request; overdue open requests show as expired
// @Tags requests
// @Produce json
// @Param requestID path string true "Payment request ID"
// @Success 200 {object} models.PaymentRequest
// @Failure 404 {object} ErrorResponse
// @Router /requests/{requestID} [get]
func (rs *RequestService) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	pr, err := rs.fetch(r.Context(), requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Payment request not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[RECEIVE] Failed to fetch request %s: %v", requestID, err)
			SendErrorResponse(w, "Failed to fetch payment request", http.StatusInternalServerError, nil)
		}
		return
	}

	before := pr.Status
	pr.MarkExpiredIfDue(time.Now())
	if pr.Status != before {
		if err := rs.update(r.Context(), rs.db, pr); err != nil {
			log.Printf("[RECEIVE] Failed to persist expiry for request %s: %v", requestID, err)
		}
	}

	writeJSON(w, http.StatusOK, pr)
}

type recordPaymentRequest struct {
	PayerName  string  `json:"payerName" validate:"required,min=2,max=100"`
	PayerEmail string  `json:"payerEmail" validate:"omitempty,email"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

// RecordPayment applies an incoming payment to a request
// @Summary Record an incoming payment
// @Description Append a payment to the request; status moves pending -> partially_paid -> completed
// @Tags requests
// @Accept json
// @Produce json
// @Param requestID path string true "Payment request ID"
// @Param request body recordPaymentRequest true "Payment details"
// @Success 200 {object} models.PaymentRequest
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /requests/{requestID}/payments [post]
func (rs *RequestService) RecordPayment(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var req recordPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := rs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	dbTx, err := rs.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Printf("[RECEIVE] Failed to begin transaction for request %s: %v", requestID, err)
		SendErrorResponse(w, "Failed to record payment", http.StatusInternalServerError, nil)
		return
	}
	defer dbTx.Rollback()

	pr, err := rs.fetchForUpdate(r.Context(), dbTx, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Payment request not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[RECEIVE] Failed to fetch request %s: %v", requestID, err)
			SendErrorResponse(w, "Failed to fetch payment request", http.StatusInternalServerError, nil)
		}
		return
	}

	pr.MarkExpiredIfDue(time.Now())

	entry := models.PaymentEntry{
		ID:         uuid.NewString(),
		PayerName:  req.PayerName,
		PayerEmail: req.PayerEmail,
		Amount:     req.Amount,
		Currency:   pr.Currency,
		PaidAt:     time.Now(),
	}

	if err := pr.RecordPayment(entry); err != nil {
		switch err {
		case models.ErrRequestClosed:
			SendErrorResponse(w, "Payment request is no longer accepting payments", http.StatusConflict, nil)
		case models.ErrNonPositivePayment:
			SendErrorResponse(w, "Payment amount must be positive", http.StatusBadRequest, nil)
		default:
			SendErrorResponse(w, "Failed to record payment", http.StatusBadRequest, nil)
		}
		return
	}

	if err := rs.update(r.Context(), dbTx, pr); err != nil {
		log.Printf("[RECEIVE] Failed to persist payment for request %s: %v", requestID, err)
		SendErrorResponse(w, "Failed to record payment", http.StatusInternalServerError, nil)
		return
	}

	if err := dbTx.Commit(); err != nil {
		log.Printf("[RECEIVE] Failed to commit payment for request %s: %v", requestID, err)
		SendErrorResponse(w, "Failed to record payment", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[RECEIVE] Payment of %.2f %s recorded against request %s (status: %s)",
		entry.Amount, pr.Currency, pr.ID, pr.Status)
	writeJSON(w, http.StatusOK, pr)
}

// GenerateQR renders the payment link as a QR image
// @Summary Payment link QR code
// @Tags requests
// @Produce json
// @Param requestID path string true "Payment request ID"
// @Success 200 {object} object{paymentLink=string,qrImage=string}
// @Failure 404 {object} ErrorResponse
// @Router /requests/{requestID}/qr [get]
func (rs *RequestService) GenerateQR(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	pr, err := rs.fetch(r.Context(), requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Payment request not found", http.StatusNotFound, nil)
		} else {
			SendErrorResponse(w, "Failed to fetch payment request", http.StatusInternalServerError, nil)
		}
		return
	}

	qr, err := qrcode.New(pr.PaymentLink, qrcode.Medium)
	if err != nil {
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		SendErrorResponse(w, "Failed to render QR code", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"paymentLink": pr.PaymentLink,
		"qrImage":     base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}
