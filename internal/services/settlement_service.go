package services

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"

	"github.com/swiftremit/backend/internal/models"
)

// SettlementService turns committed transfers into ISO 20022 messages for
// the clearing rail. Export happens off the request path.
type SettlementService struct {
	validator *ValidationHelper
}

func NewSettlementService(vh *ValidationHelper) *SettlementService {
	return &SettlementService{validator: vh}
}

// ExportTransaction builds and submits a pacs.008 for a committed transfer,
// then records the rail's acceptance as a pacs.002 status report.
func (ss *SettlementService) ExportTransaction(tx *models.Transaction, bankCode string) error {
	doc, err := ss.CreatePacs008(tx, bankCode)
	if err != nil {
		return fmt.Errorf("build pacs.008: %w", err)
	}
	if err := ss.SendToSettlement(doc); err != nil {
		return err
	}

	// The stub rail accepts synchronously.
	ack, err := ss.CreatePacs002(tx, "ACCP")
	if err != nil {
		return fmt.Errorf("build pacs.002: %w", err)
	}
	ackXML, err := ss.ConvertToXML(ack)
	if err != nil {
		return fmt.Errorf("render pacs.002: %w", err)
	}
	log.Printf("[SETTLEMENT] Transaction %s accepted, pacs.002 recorded (%d bytes)", tx.ID, len(ackXML))
	return nil
}

// ConvertTransaction exposes the pacs.008 export over HTTP
// @Summary Convert a transaction to ISO 20022
// @Description Build the pacs.008 credit transfer message for a transaction
// @Tags settlement
// @Accept json
// @Produce json
// @Param transaction body models.Transaction true "Transaction to convert"
// @Success 200 {object} object{status=string,messageType=string,xml=string}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settlement/convert [post]
func (ss *SettlementService) ConvertTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.Transaction
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ss.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	doc, err := ss.CreatePacs008(&req, "")
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	xmlData, err := ss.ConvertToXML(doc)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "converted",
		"messageType": "pacs.008.001.08",
		"xml":         xmlData,
	})
}

// CreatePacs008 creates a pacs.008 FIToFICustomerCreditTransfer message
func (ss *SettlementService) CreatePacs008(tx *models.Transaction, bankCode string) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if tx.Currency == "" {
		return nil, fmt.Errorf("transaction %s has no currency", tx.ID)
	}

	msgId := uuid.New().String()
	creDtTm := time.Now()
	settlementDate := time.Now()

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgId),
			CreDtTm: common.ISODateTime(creDtTm),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(tx.Currency),
				Value: tx.Amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG", // Clearing
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
					EndToEndId: common.Max35Text(tx.Reference),
					TxId:       &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(tx.Currency),
					Value: tx.Amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier("SWFTRMIT")}[0],
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(tx.UserID)}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						ClrSysMmbId: &pacs_v08.ClearingSystemMemberIdentification2{
							MmbId: common.Max35Text(bankCode),
						},
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(tx.Recipient)}[0],
				},
			},
		},
	}

	return doc, nil
}

// CreatePacs002 creates a pacs.002 payment status report
func (ss *SettlementService) CreatePacs002(tx *models.Transaction, status string) (*pacs_v08.FIToFIPaymentStatusReportV08, error) {
	msgId := uuid.New().String()
	creDtTm := time.Now()

	doc := &pacs_v08.FIToFIPaymentStatusReportV08{
		GrpHdr: pacs_v08.GroupHeader53{
			MsgId:   common.Max35Text(msgId),
			CreDtTm: common.ISODateTime(creDtTm),
		},
		TxInfAndSts: []pacs_v08.PaymentTransaction80{
			{
				OrgnlInstrId:    &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				OrgnlEndToEndId: &[]common.Max35Text{common.Max35Text(tx.Reference)}[0],
				OrgnlTxId:       &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				TxSts:           &[]pacs_v08.ExternalPaymentTransactionStatus1Code{pacs_v08.ExternalPaymentTransactionStatus1Code(status)}[0], // ACCP, RJCT, ACSC
			},
		},
	}

	return doc, nil
}

// ConvertToXML converts an ISO 20022 document to an XML string
func (ss *SettlementService) ConvertToXML(doc interface{}) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}

// SendToSettlement hands the message to the clearing rail.
func (ss *SettlementService) SendToSettlement(doc interface{}) error {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal XML: %w", err)
	}

	// TODO: replace stdout handoff with the clearing partner's SFTP drop
	log.Printf("[SETTLEMENT] Submitting message (%d bytes)", len(xmlData))
	return nil
}
