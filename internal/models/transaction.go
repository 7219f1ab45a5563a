package models

import (
	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a wallet money movement.
type TransactionKind string

const (
	KindSend    TransactionKind = "send"
	KindReceive TransactionKind = "receive"
)

// SyncStatus is the reconciliation lifecycle state of a locally created record.
type SyncStatus string

const (
	StatusPendingSync     SyncStatus = "pending_sync"
	StatusOfflineVerified SyncStatus = "offline_verified"
	StatusSynced          SyncStatus = "synced"
	StatusFailed          SyncStatus = "failed"
)

// IsTerminal reports whether no further transition may leave this status.
func (s SyncStatus) IsTerminal() bool {
	return s == StatusSynced || s == StatusFailed
}

// IsCompleted reports whether the record counts toward balance and scoring.
// Offline verification is treated as equivalent to remote confirmation.
func (s SyncStatus) IsCompleted() bool {
	return s == StatusSynced || s == StatusOfflineVerified
}

// CanTransition reports whether the lifecycle allows moving from s to target.
// Terminal states never transition; offline_verified may only advance to
// synced. A same-status "transition" is not allowed here; callers treat it
// as an idempotent no-op instead.
func (s SyncStatus) CanTransition(target SyncStatus) bool {
	switch s {
	case StatusPendingSync:
		return target == StatusOfflineVerified || target == StatusSynced || target == StatusFailed
	case StatusOfflineVerified:
		return target == StatusSynced
	default:
		return false
	}
}

// TransactionRecord is one wallet money-movement event, first written to the
// local store and later reconciled against the remote system of record by its
// TransactionCode.
type TransactionRecord struct {
	ID               string          `json:"id"`
	TransactionCode  string          `json:"transaction_code"`
	Kind             TransactionKind `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Counterparty     string          `json:"counterparty"`
	OwnerID          string          `json:"owner_id"`
	Status           SyncStatus      `json:"status"`
	CreatedOffline   bool            `json:"created_offline"`
	LocalTimestamp   int64           `json:"local_timestamp"` // unix milliseconds
	VerificationHash string          `json:"verification_hash,omitempty"`
	QRPayload        string          `json:"qr_code,omitempty"`
}

// SignedAmount is the record's contribution to the wallet balance: positive
// for receive, negative for send.
func (t TransactionRecord) SignedAmount() decimal.Decimal {
	if t.Kind == KindSend {
		return t.Amount.Neg()
	}
	return t.Amount
}
