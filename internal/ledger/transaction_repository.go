package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/store"
)

const walletSlotKey = "sabiboss_offline_wallet"

var (
	// ErrRecordSynced is returned when removal of a synced record is refused.
	// Synced records are retained permanently as the local audit trail.
	ErrRecordSynced = errors.New("synced records cannot be removed")

	// ErrNotFound is returned by operations that require the record to exist.
	ErrNotFound = errors.New("record not found")
)

// AppendTransactionParams carries the caller-supplied fields of a new wallet
// record. Identifier, code, status and timestamp are repository-assigned.
type AppendTransactionParams struct {
	OwnerID      string
	Kind         models.TransactionKind
	Amount       decimal.Decimal
	Counterparty string

	// WithVerificationHash and WithQRPayload control the optional tags; the
	// send path sets both, the receive path neither.
	WithVerificationHash bool
	WithQRPayload        bool
}

// TransactionRepository is the sole writer of the wallet ledger. Every
// operation is a read-modify-write of the full collection against a single
// store slot, serialized by an internal mutex.
type TransactionRepository interface {
	Append(ctx context.Context, params AppendTransactionParams) (models.TransactionRecord, error)
	List(ctx context.Context) ([]models.TransactionRecord, error)
	ListPending(ctx context.Context) ([]models.TransactionRecord, error)
	FindByCode(ctx context.Context, code string) (*models.TransactionRecord, error)
	MarkSynced(ctx context.Context, code string) error
	MarkVerified(ctx context.Context, code string) error
	MarkStatus(ctx context.Context, code string, status models.SyncStatus) error
	Remove(ctx context.Context, code string) error
}

type transactionRepository struct {
	mu    sync.Mutex
	store store.SlotStore
	gen   *codes.Generator
}

// NewTransactionRepository creates a wallet ledger repository over the given
// slot store.
func NewTransactionRepository(slots store.SlotStore, gen *codes.Generator) TransactionRepository {
	return &transactionRepository{store: slots, gen: gen}
}

func (r *transactionRepository) Append(ctx context.Context, params AppendTransactionParams) (models.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := models.TransactionRecord{
		ID:              r.gen.RecordID(),
		TransactionCode: r.gen.TransactionCode(codes.WalletPrefix),
		Kind:            params.Kind,
		Amount:          params.Amount,
		Counterparty:    params.Counterparty,
		OwnerID:         params.OwnerID,
		Status:          models.StatusPendingSync,
		CreatedOffline:  true,
		LocalTimestamp:  time.Now().UnixMilli(),
	}
	if params.WithVerificationHash {
		record.VerificationHash = codes.VerificationHash(record.Amount, record.OwnerID, record.LocalTimestamp)
	}
	if params.WithQRPayload {
		record.QRPayload = codes.QRPayload(record.TransactionCode, record.Amount)
	}

	records, err := r.load(ctx)
	if err != nil {
		return models.TransactionRecord{}, err
	}
	records = append(records, record)
	if err := r.save(ctx, records); err != nil {
		return models.TransactionRecord{}, err
	}
	return record, nil
}

func (r *transactionRepository) List(ctx context.Context) ([]models.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *transactionRepository) ListPending(ctx context.Context) ([]models.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.TransactionRecord, 0)
	for _, record := range records {
		if record.Status == models.StatusPendingSync {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

func (r *transactionRepository) FindByCode(ctx context.Context, code string) (*models.TransactionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].TransactionCode == code {
			record := records[i]
			return &record, nil
		}
	}
	return nil, nil
}

func (r *transactionRepository) MarkSynced(ctx context.Context, code string) error {
	return r.MarkStatus(ctx, code, models.StatusSynced)
}

func (r *transactionRepository) MarkVerified(ctx context.Context, code string) error {
	return r.MarkStatus(ctx, code, models.StatusOfflineVerified)
}

// MarkStatus advances the record's lifecycle. A missing code, an already
// reached status or a transition the state machine forbids are all silent
// no-ops: the same code may legitimately be mutated twice during retry races,
// and terminal states must never be left.
func (r *transactionRepository) MarkStatus(ctx context.Context, code string, status models.SyncStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range records {
		if records[i].TransactionCode != code {
			continue
		}
		if records[i].Status == status || !records[i].Status.CanTransition(status) {
			return nil
		}
		records[i].Status = status
		changed = true
		break
	}
	if !changed {
		return nil
	}
	return r.save(ctx, records)
}

// Remove deletes the record with the given code. Synced records are retained
// permanently and refuse removal; a missing code is a no-op.
func (r *transactionRepository) Remove(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	kept := records[:0:0]
	for _, record := range records {
		if record.TransactionCode == code {
			if record.Status == models.StatusSynced {
				return ErrRecordSynced
			}
			continue
		}
		kept = append(kept, record)
	}
	if len(kept) == len(records) {
		return nil
	}
	return r.save(ctx, kept)
}

func (r *transactionRepository) load(ctx context.Context) ([]models.TransactionRecord, error) {
	blob, err := r.store.Load(ctx, walletSlotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet ledger: %w", err)
	}
	if len(blob) == 0 {
		return []models.TransactionRecord{}, nil
	}
	var records []models.TransactionRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		// Undecodable state degrades to an empty ledger.
		return []models.TransactionRecord{}, nil
	}
	return records, nil
}

func (r *transactionRepository) save(ctx context.Context, records []models.TransactionRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode wallet ledger: %w", err)
	}
	if err := r.store.Save(ctx, walletSlotKey, blob); err != nil {
		return fmt.Errorf("failed to save wallet ledger: %w", err)
	}
	return nil
}
