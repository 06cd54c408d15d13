package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swiftremit/backend/internal/models"
)

func settlementTestTransaction() *models.Transaction {
	return &models.Transaction{
		ID:          "tx123",
		UserID:      "42",
		Date:        time.Now(),
		Description: "Transfer to Ada",
		Amount:      200.50,
		Fee:         1.0,
		TotalAmount: 201.50,
		Currency:    "USD",
		Status:      models.StatusSuccessful,
		Type:        models.TypeSend,
		Recipient:   "Ada Obi",
		Reference:   "SR-1",
	}
}

func TestSettlementService_CreatePacs008(t *testing.T) {
	service := NewSettlementService(NewValidationHelper())

	t.Run("maps transaction fields into the message", func(t *testing.T) {
		tx := settlementTestTransaction()

		doc, err := service.CreatePacs008(tx, "044150")
		assert.NoError(t, err)

		assert.Equal(t, "1", string(doc.GrpHdr.NbOfTxs))
		assert.Equal(t, 200.50, doc.GrpHdr.TtlIntrBkSttlmAmt.Value)
		assert.Equal(t, "USD", string(doc.GrpHdr.TtlIntrBkSttlmAmt.Ccy))

		assert.Len(t, doc.CdtTrfTxInf, 1)
		info := doc.CdtTrfTxInf[0]
		assert.Equal(t, "tx123", string(*info.PmtId.InstrId))
		assert.Equal(t, "SR-1", string(info.PmtId.EndToEndId))
		assert.Equal(t, "Ada Obi", string(*info.Cdtr.Nm))
		assert.Equal(t, "044150", string(info.CdtrAgt.FinInstnId.ClrSysMmbId.MmbId))
	})

	t.Run("missing currency errors", func(t *testing.T) {
		tx := settlementTestTransaction()
		tx.Currency = ""

		_, err := service.CreatePacs008(tx, "")
		assert.Error(t, err)
	})
}

func TestSettlementService_ConvertToXML(t *testing.T) {
	service := NewSettlementService(NewValidationHelper())

	doc, err := service.CreatePacs008(settlementTestTransaction(), "044150")
	assert.NoError(t, err)

	xmlData, err := service.ConvertToXML(doc)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(xmlData, "<?xml"))
	assert.Contains(t, xmlData, "tx123")
	assert.Contains(t, xmlData, "Ada Obi")
}

func TestSettlementService_ExportTransaction(t *testing.T) {
	service := NewSettlementService(NewValidationHelper())

	err := service.ExportTransaction(settlementTestTransaction(), "044150")
	assert.NoError(t, err)

	tx := settlementTestTransaction()
	tx.Currency = ""
	assert.Error(t, service.ExportTransaction(tx, "044150"))
}

func TestSettlementService_CreatePacs002(t *testing.T) {
	service := NewSettlementService(NewValidationHelper())

	doc, err := service.CreatePacs002(settlementTestTransaction(), "ACCP")
	assert.NoError(t, err)
	assert.Len(t, doc.TxInfAndSts, 1)
	assert.Equal(t, "tx123", string(*doc.TxInfAndSts[0].OrgnlInstrId))
	assert.Equal(t, "ACCP", string(*doc.TxInfAndSts[0].TxSts))
}

func TestSettlementService_ConvertTransactionHandler(t *testing.T) {
	service := NewSettlementService(NewValidationHelper())

	t.Run("successful conversion", func(t *testing.T) {
		body, _ := json.Marshal(settlementTestTransaction())
		r := httptest.NewRequest("POST", "/settlement/convert", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		service.ConvertTransaction(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]any
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, "converted", response["status"])
		assert.Equal(t, "pacs.008.001.08", response["messageType"])
		assert.NotEmpty(t, response["xml"])
	})

	t.Run("invalid request body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/settlement/convert", bytes.NewBuffer([]byte("invalid")))
		w := httptest.NewRecorder()

		service.ConvertTransaction(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
