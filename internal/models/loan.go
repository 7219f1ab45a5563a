package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanDirection distinguishes money lent out from money borrowed.
type LoanDirection string

const (
	LoanGiven LoanDirection = "given"
	LoanTaken LoanDirection = "taken"
)

// RepaymentStatus tracks how much of a loan has been paid back.
type RepaymentStatus string

const (
	RepaymentPending RepaymentStatus = "pending"
	RepaymentPartial RepaymentStatus = "partial"
	RepaymentPaid    RepaymentStatus = "paid"
)

// LoanRecord is one loan request, stored and reconciled with the same
// lifecycle as TransactionRecord but under its own slot and code prefix.
// Loans feed neither the balance fold nor the credit score.
type LoanRecord struct {
	ID              string          `json:"id"`
	TransactionCode string          `json:"transaction_code"`
	Direction       LoanDirection   `json:"loan_type"`
	Counterparty    string          `json:"borrower_lender"`
	Amount          decimal.Decimal `json:"amount"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	RepaymentStatus RepaymentStatus `json:"repayment_status"`
	AmountRepaid    decimal.Decimal `json:"amount_repaid"`
	Description     string          `json:"description,omitempty"`
	OwnerID         string          `json:"owner_id"`
	Status          SyncStatus      `json:"sync_status"`
	CreatedOffline  bool            `json:"created_offline"`
	LocalTimestamp  int64           `json:"local_timestamp"` // unix milliseconds
}
