package services

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swiftremit/backend/internal/models"
)

// TransactionService persists history entries and serves the filtered list
// views. Filtering itself is the pure models.FilterTransactions; the
// service only fetches and projects.
type TransactionService struct {
	db *sql.DB
}

func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

// Insert appends a completed transaction. Records are never updated.
func (ts *TransactionService) Insert(ctx context.Context, tx models.Transaction) error {
	_, err := ts.db.ExecContext(ctx, `
        INSERT INTO transactions
        (id, user_id, description, amount, fee, total_amount, currency, status, type, recipient, reference, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, tx.ID, tx.UserID, tx.Description, tx.Amount, tx.Fee, tx.TotalAmount,
		tx.Currency, tx.Status, tx.Type, tx.Recipient, tx.Reference, tx.Date)
	return err
}

func (ts *TransactionService) fetchByUser(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	rows, err := ts.db.QueryContext(ctx, `
        SELECT id, user_id, description, amount, fee, total_amount, currency, status, type,
               COALESCE(recipient, '') as recipient, COALESCE(reference, '') as reference, created_at
        FROM transactions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Description, &tx.Amount, &tx.Fee, &tx.TotalAmount,
			&tx.Currency, &tx.Status, &tx.Type, &tx.Recipient, &tx.Reference, &tx.Date,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func (ts *TransactionService) fetchTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := ts.db.QueryRowContext(ctx, `
        SELECT id, user_id, description, amount, fee, total_amount, currency, status, type,
               COALESCE(recipient, '') as recipient, COALESCE(reference, '') as reference, created_at
        FROM transactions
        WHERE id = $1
    `, txID).Scan(
		&tx.ID, &tx.UserID, &tx.Description, &tx.Amount, &tx.Fee, &tx.TotalAmount,
		&tx.Currency, &tx.Status, &tx.Type, &tx.Recipient, &tx.Reference, &tx.Date,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions retrieves the caller's history with optional filters
// @Summary List transactions
// @Description Get the authenticated user's transactions, filtered by query, status, type, currency and date range
// @Tags transactions
// @Produce json
// @Param q query string false "Free-text match against description/recipient"
// @Param status query string false "Comma-separated statuses"
// @Param type query string false "Comma-separated types"
// @Param currency query string false "Comma-separated currency codes"
// @Param from query string false "Inclusive start date (RFC 3339)"
// @Param to query string false "Inclusive end date (RFC 3339)"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} object{transactions=[]models.Transaction,count=int}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [get]
func (ts *TransactionService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, convErr := strconv.Atoi(limitStr); convErr == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	transactions, err := ts.fetchByUser(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[TRANSACTION] Failed to fetch transactions for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch transactions", http.StatusInternalServerError, nil)
		return
	}

	filtered := models.FilterTransactions(transactions, filters)

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": filtered,
		"count":        len(filtered),
	})
}

// GetTransaction retrieves a specific transaction
// @Summary Get transaction by ID
// @Tags transactions
// @Produce json
// @Param txID path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions/{txID} [get]
func (ts *TransactionService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txID")

	tx, err := ts.fetchTransaction(r.Context(), txID)
	if err != nil {
		if err == sql.ErrNoRows {
			SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[TRANSACTION] Failed to fetch transaction %s: %v", txID, err)
			SendErrorResponse(w, "Failed to fetch transaction", http.StatusInternalServerError, nil)
		}
		return
	}

	userID, _ := r.Context().Value("userID").(string)
	if tx.UserID != "" && tx.UserID != userID {
		SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// parseFilters builds a TransactionFilters from list query parameters.
func parseFilters(q map[string][]string) (models.TransactionFilters, error) {
	get := func(key string) string {
		if vals := q[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	filters := models.TransactionFilters{Query: get("q")}

	for _, s := range splitCSV(get("status")) {
		filters.Statuses = append(filters.Statuses, models.TransactionStatus(s))
	}
	for _, t := range splitCSV(get("type")) {
		filters.Types = append(filters.Types, models.TransactionType(t))
	}
	filters.Currencies = splitCSV(get("currency"))

	if from := get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &t
	}
	if to := get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return filters, err
		}
		// A bare date upper bound is inclusive of the whole day.
		if len(get("to")) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filters.DateTo = &t
	}

	return filters, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
