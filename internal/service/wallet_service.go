package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrMissingCounterparty = errors.New("counterparty is required")
	ErrMissingOwner        = errors.New("owner id is required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// WalletService owns the wallet ledger's business rules: creation
// preconditions, the conservative balance fold, and offline attestation.
type WalletService interface {
	SendPayment(ctx context.Context, ownerID string, amount decimal.Decimal, recipient string) (models.TransactionRecord, error)
	ReceivePayment(ctx context.Context, ownerID string, amount decimal.Decimal, sender string) (models.TransactionRecord, error)
	Transactions(ctx context.Context) ([]models.TransactionRecord, error)
	PendingTransactions(ctx context.Context) ([]models.TransactionRecord, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
	VerifyTransaction(ctx context.Context, code string) error
	VerifyIntegrity(ctx context.Context, code string) (bool, error)
	RemoveTransaction(ctx context.Context, code string) error
}

type walletService struct {
	repo ledger.TransactionRepository
}

// NewWalletService creates a wallet service over the given repository.
func NewWalletService(repo ledger.TransactionRepository) WalletService {
	return &walletService{repo: repo}
}

// SendPayment records an outgoing payment. The insufficient-balance check is
// a creation precondition here, not a repository rule: a send may never
// exceed the confirmed balance.
func (s *walletService) SendPayment(ctx context.Context, ownerID string, amount decimal.Decimal, recipient string) (models.TransactionRecord, error) {
	if err := validatePayment(ownerID, amount, recipient); err != nil {
		return models.TransactionRecord{}, err
	}

	balance, err := s.Balance(ctx)
	if err != nil {
		return models.TransactionRecord{}, err
	}
	if balance.LessThan(amount) {
		return models.TransactionRecord{}, ErrInsufficientBalance
	}

	return s.repo.Append(ctx, ledger.AppendTransactionParams{
		OwnerID:              ownerID,
		Kind:                 models.KindSend,
		Amount:               amount,
		Counterparty:         recipient,
		WithVerificationHash: true,
		WithQRPayload:        true,
	})
}

// ReceivePayment records an incoming payment. Receives carry no verification
// hash or QR payload.
func (s *walletService) ReceivePayment(ctx context.Context, ownerID string, amount decimal.Decimal, sender string) (models.TransactionRecord, error) {
	if err := validatePayment(ownerID, amount, sender); err != nil {
		return models.TransactionRecord{}, err
	}

	return s.repo.Append(ctx, ledger.AppendTransactionParams{
		OwnerID:      ownerID,
		Kind:         models.KindReceive,
		Amount:       amount,
		Counterparty: sender,
	})
}

func (s *walletService) Transactions(ctx context.Context) ([]models.TransactionRecord, error) {
	return s.repo.List(ctx)
}

func (s *walletService) PendingTransactions(ctx context.Context) ([]models.TransactionRecord, error) {
	return s.repo.ListPending(ctx)
}

// Balance folds over the full ledger, counting only confirmed records
// (synced or offline-verified). Pending and failed records never contribute,
// so a send that has not been confirmed yet is not deducted. Recomputed from
// scratch on every call.
func (s *walletService) Balance(ctx context.Context) (decimal.Decimal, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, record := range records {
		if record.Status.IsCompleted() {
			balance = balance.Add(record.SignedAmount())
		}
	}
	return balance, nil
}

// VerifyTransaction attests a pending record offline. Re-verifying an
// already verified or already synced record is a no-op success.
func (s *walletService) VerifyTransaction(ctx context.Context, code string) error {
	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrTransactionNotFound
	}
	if record.Status.IsCompleted() {
		return nil
	}
	return s.repo.MarkVerified(ctx, code)
}

// VerifyIntegrity recomputes the verification hash and compares it against
// the stored tag. Records without a tag (receives) report false without
// implying tampering.
func (s *walletService) VerifyIntegrity(ctx context.Context, code string) (bool, error) {
	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, ErrTransactionNotFound
	}
	if record.VerificationHash == "" {
		return false, nil
	}
	expected := codes.VerificationHash(record.Amount, record.OwnerID, record.LocalTimestamp)
	return record.VerificationHash == expected, nil
}

func (s *walletService) RemoveTransaction(ctx context.Context, code string) error {
	if err := s.repo.Remove(ctx, code); err != nil {
		return fmt.Errorf("failed to remove transaction %s: %w", code, err)
	}
	return nil
}

func validatePayment(ownerID string, amount decimal.Decimal, counterparty string) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if counterparty == "" {
		return ErrMissingCounterparty
	}
	return nil
}
