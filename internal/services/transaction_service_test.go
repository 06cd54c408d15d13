package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/swiftremit/backend/internal/models"
)

func transactionColumns() []string {
	return []string{"id", "user_id", "description", "amount", "fee", "total_amount",
		"currency", "status", "type", "recipient", "reference", "created_at"}
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(context.WithValue(req.Context(), "userID", "42"))
}

func TestTransactionService_ListTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewTransactionService(db)

	t.Run("returns the user's transactions", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(transactionColumns()).
			AddRow("tx1", "42", "Transfer to Ada", 200.0, 1.0, 201.0, "USD", "successful", "send", "Ada Obi", "SR-1", now).
			AddRow("tx2", "42", "Card payment", 15.0, 0.0, 15.0, "USD", "pending", "card_transaction", "", "", now)

		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("42", 50).
			WillReturnRows(rows)

		w := httptest.NewRecorder()
		service.ListTransactions(w, authedRequest("GET", "/transactions"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Transactions []models.Transaction `json:"transactions"`
			Count        int                  `json:"count"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 2, response.Count)
		assert.Equal(t, "tx1", response.Transactions[0].ID)
	})

	t.Run("filters apply after the fetch", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(transactionColumns()).
			AddRow("tx1", "42", "Transfer to Ada", 200.0, 1.0, 201.0, "USD", "successful", "send", "Ada Obi", "SR-1", now).
			AddRow("tx2", "42", "Card payment", 15.0, 0.0, 15.0, "USD", "pending", "card_transaction", "", "", now)

		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("42", 50).
			WillReturnRows(rows)

		w := httptest.NewRecorder()
		service.ListTransactions(w, authedRequest("GET", "/transactions?status=pending"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Transactions []models.Transaction `json:"transactions"`
			Count        int                  `json:"count"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Count)
		assert.Equal(t, "tx2", response.Transactions[0].ID)
	})

	t.Run("limit is capped", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("42", 50).
			WillReturnRows(sqlmock.NewRows(transactionColumns()))

		w := httptest.NewRecorder()
		service.ListTransactions(w, authedRequest("GET", "/transactions?limit=9999"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid date filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.ListTransactions(w, authedRequest("GET", "/transactions?from=not-a-date"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing user context", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.ListTransactions(w, httptest.NewRequest("GET", "/transactions", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTransactionService_GetTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewTransactionService(db)

	router := chi.NewRouter()
	router.Get("/transactions/{txID}", service.GetTransaction)

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("tx1").
			WillReturnRows(sqlmock.NewRows(transactionColumns()).
				AddRow("tx1", "42", "Transfer to Ada", 200.0, 1.0, 201.0, "USD", "successful", "send", "Ada Obi", "SR-1", now))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("GET", "/transactions/tx1"))

		assert.Equal(t, http.StatusOK, w.Code)

		var tx models.Transaction
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tx))
		assert.Equal(t, "tx1", tx.ID)
		assert.Equal(t, models.TypeSend, tx.Type)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("GET", "/transactions/missing"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("another user's transaction reads as not found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM transactions").
			WithArgs("tx9").
			WillReturnRows(sqlmock.NewRows(transactionColumns()).
				AddRow("tx9", "77", "Private", 10.0, 0.0, 10.0, "USD", "successful", "send", "", "", now))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest("GET", "/transactions/tx9"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestParseFilters(t *testing.T) {
	t.Run("csv lists", func(t *testing.T) {
		filters, err := parseFilters(map[string][]string{
			"status":   {"successful, pending"},
			"type":     {"send"},
			"currency": {"USD,NGN"},
		})
		assert.NoError(t, err)
		assert.Len(t, filters.Statuses, 2)
		assert.Len(t, filters.Types, 1)
		assert.Equal(t, []string{"USD", "NGN"}, filters.Currencies)
	})

	t.Run("bare end date covers the whole day", func(t *testing.T) {
		filters, err := parseFilters(map[string][]string{"to": {"2026-03-15"}})
		assert.NoError(t, err)
		assert.NotNil(t, filters.DateTo)

		endOfDay := time.Date(2026, 3, 15, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		assert.True(t, filters.DateTo.Equal(endOfDay))
	})

	t.Run("rfc3339 dates pass through", func(t *testing.T) {
		filters, err := parseFilters(map[string][]string{"from": {"2026-03-15T08:30:00Z"}})
		assert.NoError(t, err)
		assert.Equal(t, 8, filters.DateFrom.Hour())
	})

	t.Run("bad date errors", func(t *testing.T) {
		_, err := parseFilters(map[string][]string{"from": {"yesterday"}})
		assert.Error(t, err)
	})
}
