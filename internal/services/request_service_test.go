package services

import (
	"bytes"
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

func requestColumns() []string {
	return []string{"id", "user_id", "status", "amount_requested", "amount_received",
		"currency", "description", "payment_link", "payments", "created_at", "expires_at"}
}

func requestRouter(rs *RequestService) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/requests/{requestID}", rs.GetRequest)
	r.Post("/requests/{requestID}/payments", rs.RecordPayment)
	r.Get("/requests/{requestID}/qr", rs.GenerateQR)
	return r
}

func TestRequestService_PaymentLink(t *testing.T) {
	rs := NewRequestService(nil, NewValidationHelper())
	link := rs.PaymentLink("req1")
	assert.Contains(t, link, "/pay/req1")
}

func TestRequestService_GetRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rs := NewRequestService(db, NewValidationHelper())
	router := requestRouter(rs)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payment_requests").
			WithArgs("req1").
			WillReturnRows(sqlmock.NewRows(requestColumns()).
				AddRow("req1", "42", "pending", 100.0, 0.0, "USD", "Dinner split",
					"https://pay.swiftremit.example/pay/req1", []byte("[]"), time.Now(), nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/requests/req1", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var pr models.PaymentRequest
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pr))
		assert.Equal(t, models.RequestPending, pr.Status)
		assert.Equal(t, 100.0, pr.AmountRequested)
	})

	t.Run("overdue request reads as expired and is persisted", func(t *testing.T) {
		expired := time.Now().Add(-time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM payment_requests").
			WithArgs("req2").
			WillReturnRows(sqlmock.NewRows(requestColumns()).
				AddRow("req2", "42", "pending", 100.0, 0.0, "USD", "Old request",
					"https://pay.swiftremit.example/pay/req2", []byte("[]"), time.Now().Add(-48*time.Hour), expired))

		mock.ExpectExec("UPDATE payment_requests").
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/requests/req2", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var pr models.PaymentRequest
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pr))
		assert.Equal(t, models.RequestExpired, pr.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payment_requests").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/requests/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequestService_RecordPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rs := NewRequestService(db, NewValidationHelper())
	router := requestRouter(rs)

	post := func(target string, body any) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", target, bytes.NewBuffer(data)))
		return w
	}

	t.Run("partial payment applies under a row lock", func(t *testing.T) {
		// The read, mutation and write all happen inside one transaction
		// with the row locked, so concurrent payers cannot both observe
		// the same amount_received.
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM payment_requests WHERE id = (.+) FOR UPDATE").
			WithArgs("req1").
			WillReturnRows(sqlmock.NewRows(requestColumns()).
				AddRow("req1", "42", "pending", 100.0, 0.0, "USD", "Dinner split",
					"https://pay.swiftremit.example/pay/req1", []byte("[]"), time.Now(), nil))
		mock.ExpectExec("UPDATE payment_requests").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		w := post("/requests/req1/payments", recordPaymentRequest{PayerName: "Jane", Amount: 40})
		assert.Equal(t, http.StatusOK, w.Code)

		var pr models.PaymentRequest
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pr))
		assert.Equal(t, models.RequestPartiallyPaid, pr.Status)
		assert.Equal(t, 40.0, pr.AmountReceived)
		assert.Len(t, pr.Payments, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment against a completed request conflicts", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM payment_requests WHERE id = (.+) FOR UPDATE").
			WithArgs("req1").
			WillReturnRows(sqlmock.NewRows(requestColumns()).
				AddRow("req1", "42", "completed", 100.0, 100.0, "USD", "Dinner split",
					"https://pay.swiftremit.example/pay/req1", []byte("[]"), time.Now(), nil))
		mock.ExpectRollback()

		w := post("/requests/req1/payments", recordPaymentRequest{PayerName: "Jane", Amount: 40})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation failure", func(t *testing.T) {
		w := post("/requests/req1/payments", recordPaymentRequest{PayerName: "J", Amount: 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestService_GenerateQR(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rs := NewRequestService(db, NewValidationHelper())
	router := requestRouter(rs)

	mock.ExpectQuery("SELECT (.+) FROM payment_requests").
		WithArgs("req1").
		WillReturnRows(sqlmock.NewRows(requestColumns()).
			AddRow("req1", "42", "pending", 100.0, 0.0, "USD", "Dinner split",
				"https://pay.swiftremit.example/pay/req1", []byte("[]"), time.Now(), nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/requests/req1/qr", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "https://pay.swiftremit.example/pay/req1", response["paymentLink"])
	assert.NotEmpty(t, response["qrImage"])
}
