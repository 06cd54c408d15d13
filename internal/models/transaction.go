package models

import (
	"strings"
	"time"
)

// TransactionStatus is the settlement state of a history entry.
type TransactionStatus string

const (
	StatusSuccessful   TransactionStatus = "successful"
	StatusPending      TransactionStatus = "pending"
	StatusUnsuccessful TransactionStatus = "unsuccessful"
)

// TransactionType classifies how money moved.
type TransactionType string

const (
	TypeSend            TransactionType = "send"
	TypeReceive         TransactionType = "receive"
	TypeConversion      TransactionType = "conversion"
	TypeCardTransaction TransactionType = "card_transaction"
	TypeCashWithdrawal  TransactionType = "cash_withdrawal"
)

// Transaction is a single history entry. Records are append-only: once
// written they are never mutated, list views only project over them.
type Transaction struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"userId,omitempty" db:"user_id"`
	Date        time.Time         `json:"date" db:"created_at"`
	Description string            `json:"description" db:"description"`
	Amount      float64           `json:"amount" db:"amount"`
	Fee         float64           `json:"fee" db:"fee"`
	TotalAmount float64           `json:"totalAmount" db:"total_amount"`
	Currency    string            `json:"currency" db:"currency"`
	Status      TransactionStatus `json:"status" db:"status"`
	Type        TransactionType   `json:"type" db:"type"`
	Recipient   string            `json:"recipient,omitempty" db:"recipient"`
	Reference   string            `json:"reference,omitempty" db:"reference"`
}

// TransactionFilters is the predicate set applied to a transaction list.
// Empty fields match everything.
type TransactionFilters struct {
	Query      string              `json:"query"`
	Statuses   []TransactionStatus `json:"statuses"`
	Types      []TransactionType   `json:"types"`
	Currencies []string            `json:"currencies"`
	DateFrom   *time.Time          `json:"dateFrom"`
	DateTo     *time.Time          `json:"dateTo"`
}

// IsZero reports whether no filter field is set.
func (f TransactionFilters) IsZero() bool {
	return f.Query == "" &&
		len(f.Statuses) == 0 &&
		len(f.Types) == 0 &&
		len(f.Currencies) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil
}

// Matches reports whether tx satisfies every active predicate.
func (f TransactionFilters) Matches(tx Transaction) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(tx.Description), q) &&
			!strings.Contains(strings.ToLower(tx.Recipient), q) {
			return false
		}
	}

	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, tx.Status) {
		return false
	}

	if len(f.Types) > 0 && !containsType(f.Types, tx.Type) {
		return false
	}

	if len(f.Currencies) > 0 {
		found := false
		for _, c := range f.Currencies {
			if strings.EqualFold(c, tx.Currency) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Date bounds are inclusive; either may be open.
	if f.DateFrom != nil && tx.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && tx.Date.After(*f.DateTo) {
		return false
	}

	return true
}

// FilterTransactions projects list through filters. It is a pure function:
// the input slice is never mutated and the result preserves order.
func FilterTransactions(list []Transaction, filters TransactionFilters) []Transaction {
	if filters.IsZero() {
		out := make([]Transaction, len(list))
		copy(out, list)
		return out
	}

	out := []Transaction{}
	for _, tx := range list {
		if filters.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func containsStatus(set []TransactionStatus, s TransactionStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(set []TransactionType, t TransactionType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}
