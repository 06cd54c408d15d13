package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/swiftremit/backend/internal/currency"
	"github.com/swiftremit/backend/internal/models"
	"github.com/swiftremit/backend/internal/wizard"
)

// Send Money wizard: recipient -> amount -> review -> payment.
const (
	StepSendRecipient wizard.Step = "recipient"
	StepSendAmount    wizard.Step = "amount"
	StepSendReview    wizard.Step = "review"
	StepSendPayment   wizard.Step = "payment"
)

// SendRecipientStep is who the money goes to.
type SendRecipientStep struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Country       string `json:"country" validate:"required,len=2"`
	AccountNumber string `json:"accountNumber" validate:"required,min=8,max=20,numeric"`
	BankCode      string `json:"bankCode" validate:"omitempty,alphanum,min=3,max=6"`
}

// SendAmountStep is how much is being sent. ReceiveCurrency may be left
// empty, in which case it is derived from the recipient's country. Derived
// values carry a marker so a later recipient edit re-derives them instead
// of treating them as user-chosen.
type SendAmountStep struct {
	SendAmount             float64 `json:"sendAmount" validate:"required,gt=0"`
	SendCurrency           string  `json:"sendCurrency" validate:"required,len=3"`
	ReceiveCurrency        string  `json:"receiveCurrency" validate:"omitempty,len=3"`
	ReceiveCurrencyDerived bool    `json:"receiveCurrencyDerived,omitempty"`
	Description            string  `json:"description" validate:"omitempty,max=200"`
}

// SendReviewStep records that the sender saw and accepted the quote.
type SendReviewStep struct {
	QuoteAccepted bool `json:"quoteAccepted" validate:"eq=true"`
}

// SendPaymentStep selects the funding method.
type SendPaymentStep struct {
	Method string `json:"method" validate:"required,oneof=card bank_transfer wallet"`
}

// SendFlow drives the Send Money wizard and commits the transfer on submit.
type SendFlow struct {
	flow         *wizard.Flow
	validator    *ValidationHelper
	converter    *currency.Converter
	schedule     currency.FeeSchedule
	transactions *TransactionService
	settlement   *SettlementService
}

func NewSendFlow(vh *ValidationHelper, converter *currency.Converter, schedule currency.FeeSchedule, transactions *TransactionService, settlement *SettlementService) *SendFlow {
	sf := &SendFlow{
		validator:    vh,
		converter:    converter,
		schedule:     schedule,
		transactions: transactions,
		settlement:   settlement,
	}
	sf.flow = &wizard.Flow{
		Name:     "send",
		Steps:    []wizard.Step{StepSendRecipient, StepSendAmount, StepSendReview, StepSendPayment},
		Validate: sf.validateStep,
	}
	return sf
}

func (sf *SendFlow) Flow() *wizard.Flow {
	return sf.flow
}

func (sf *SendFlow) validateStep(step wizard.Step, data json.RawMessage) map[string]string {
	switch step {
	case StepSendRecipient:
		var s SendRecipientStep
		if errs := sf.validator.ValidateStepPayload(data, &s); len(errs) > 0 {
			return errs
		}
		if _, ok := currency.ForCountry(s.Country); !ok {
			return map[string]string{"country": "is not a supported destination"}
		}
		return nil
	case StepSendAmount:
		var s SendAmountStep
		if errs := sf.validator.ValidateStepPayload(data, &s); len(errs) > 0 {
			return errs
		}
		if !currency.Supported(s.SendCurrency) {
			return map[string]string{"sendCurrency": "is not a supported currency"}
		}
		if s.ReceiveCurrency != "" && !currency.Supported(s.ReceiveCurrency) {
			return map[string]string{"receiveCurrency": "is not a supported currency"}
		}
		return nil
	case StepSendReview:
		var s SendReviewStep
		return sf.validator.ValidateStepPayload(data, &s)
	case StepSendPayment:
		var s SendPaymentStep
		return sf.validator.ValidateStepPayload(data, &s)
	}
	return map[string]string{"_step": "unknown step"}
}

// OnStepData keeps receiveCurrency in sync with the recipient's country: a
// blank value on the amount step is filled in, and a previously derived
// value follows the country when the recipient is edited. A currency the
// user set explicitly is never overwritten.
func (sf *SendFlow) OnStepData(ctx context.Context, st *wizard.State) error {
	if st.CurrentStep != StepSendAmount && st.CurrentStep != StepSendRecipient {
		return nil
	}

	var amount SendAmountStep
	if err := st.DecodeStep(StepSendAmount, &amount); err != nil {
		// No amount data yet; nothing to derive into.
		return nil
	}
	if amount.ReceiveCurrency != "" && !amount.ReceiveCurrencyDerived {
		return nil
	}

	var recipient SendRecipientStep
	if err := st.DecodeStep(StepSendRecipient, &recipient); err != nil {
		return nil
	}

	code, ok := currency.ForCountry(recipient.Country)
	if !ok || amount.ReceiveCurrency == code {
		return nil
	}

	amount.ReceiveCurrency = code
	amount.ReceiveCurrencyDerived = true
	data, err := json.Marshal(amount)
	if err != nil {
		return err
	}
	st.Data[StepSendAmount] = data
	return nil
}

// SendResult is returned to the client after a successful submit.
type SendResult struct {
	Transaction     models.Transaction      `json:"transaction"`
	Quote           currency.CurrencyAmount `json:"quote"`
	FormattedTotal  string                  `json:"formattedTotal"`
	FormattedPayout string                  `json:"formattedPayout"`
}

// Submit prices the transfer and persists it. This is the real commit: a
// failed insert surfaces as a retryable error, never a simulated outcome.
func (sf *SendFlow) Submit(ctx context.Context, st *wizard.State) (any, error) {
	var recipient SendRecipientStep
	if err := st.DecodeStep(StepSendRecipient, &recipient); err != nil {
		return nil, fmt.Errorf("decode recipient step: %w", err)
	}
	var amount SendAmountStep
	if err := st.DecodeStep(StepSendAmount, &amount); err != nil {
		return nil, fmt.Errorf("decode amount step: %w", err)
	}

	receiveCurrency := amount.ReceiveCurrency
	if receiveCurrency == "" {
		if code, ok := currency.ForCountry(recipient.Country); ok {
			receiveCurrency = code
		} else {
			receiveCurrency = amount.SendCurrency
		}
	}

	quote, err := sf.converter.Quote(ctx, sf.schedule, amount.SendAmount, amount.SendCurrency, receiveCurrency)
	if err != nil {
		return nil, fmt.Errorf("price transfer: %w", err)
	}

	description := amount.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", recipient.FullName)
	}

	userID, _ := ctx.Value("userID").(string)
	tx := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        time.Now(),
		Description: description,
		Amount:      quote.SendAmount,
		Fee:         quote.Fees,
		TotalAmount: quote.TotalAmount,
		Currency:    quote.SendCurrency,
		Status:      models.StatusSuccessful,
		Type:        models.TypeSend,
		Recipient:   recipient.FullName,
		Reference:   fmt.Sprintf("SR-%d", time.Now().UnixNano()),
	}

	if err := sf.transactions.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("store transaction: %w", err)
	}

	// Settlement export runs after the commit; a failed export is logged
	// and retried by the rail, it never fails the user-facing submit.
	go func(tx models.Transaction, bankCode string) {
		if err := sf.settlement.ExportTransaction(&tx, bankCode); err != nil {
			log.Printf("[SETTLEMENT] Export failed for transaction %s: %v", tx.ID, err)
		}
	}(tx, recipient.BankCode)

	log.Printf("[SEND] Transfer %s committed: %s -> %s %s", tx.ID,
		currency.Format(quote.TotalAmount, quote.SendCurrency),
		currency.Format(quote.ReceiveAmount, quote.ReceiveCurrency),
		recipient.FullName)

	return SendResult{
		Transaction:     tx,
		Quote:           quote,
		FormattedTotal:  currency.Format(quote.TotalAmount, quote.SendCurrency),
		FormattedPayout: currency.Format(quote.ReceiveAmount, quote.ReceiveCurrency),
	}, nil
}

// QuoteHandler prices a prospective transfer without committing anything
// @Summary Quote a conversion
// @Description Convert an amount between currencies; stale=true marks a fallback rate
// @Tags rates
// @Produce json
// @Param amount query number true "Amount to convert"
// @Param from query string true "Source currency code"
// @Param to query string true "Target currency code"
// @Success 200 {object} currency.CurrencyAmount
// @Failure 400 {object} ErrorResponse
// @Router /rates/convert [get]
func (sf *SendFlow) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil || amount <= 0 {
		SendErrorResponse(w, "amount must be a positive number", http.StatusBadRequest, nil)
		return
	}

	from, to := q.Get("from"), q.Get("to")
	if !currency.Supported(from) || !currency.Supported(to) {
		SendErrorResponse(w, "from and to must be supported currency codes", http.StatusBadRequest, nil)
		return
	}

	quote, err := sf.converter.Quote(r.Context(), sf.schedule, amount, from, to)
	if err != nil {
		SendErrorResponse(w, "Failed to price conversion", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
