package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/store"
)

const loanSlotKey = "sabiboss_offline_loans"

// AppendLoanParams carries the caller-supplied fields of a new loan record.
type AppendLoanParams struct {
	OwnerID      string
	Direction    models.LoanDirection
	Counterparty string
	Amount       decimal.Decimal
	DueDate      *time.Time
	Description  string
}

// LoanRepository is the loan twin of TransactionRepository: same single-slot
// read-modify-write pattern under a distinct storage key and code prefix.
type LoanRepository interface {
	Append(ctx context.Context, params AppendLoanParams) (models.LoanRecord, error)
	List(ctx context.Context) ([]models.LoanRecord, error)
	ListPending(ctx context.Context) ([]models.LoanRecord, error)
	FindByCode(ctx context.Context, code string) (*models.LoanRecord, error)
	MarkSynced(ctx context.Context, code string) error
	MarkStatus(ctx context.Context, code string, status models.SyncStatus) error
	UpdateRepayment(ctx context.Context, code string, status models.RepaymentStatus, amountRepaid decimal.Decimal) error
	Remove(ctx context.Context, code string) error
}

type loanRepository struct {
	mu    sync.Mutex
	store store.SlotStore
	gen   *codes.Generator
}

// NewLoanRepository creates a loan ledger repository over the given slot store.
func NewLoanRepository(slots store.SlotStore, gen *codes.Generator) LoanRepository {
	return &loanRepository{store: slots, gen: gen}
}

func (r *loanRepository) Append(ctx context.Context, params AppendLoanParams) (models.LoanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := models.LoanRecord{
		ID:              r.gen.RecordID(),
		TransactionCode: r.gen.TransactionCode(codes.LoanPrefix),
		Direction:       params.Direction,
		Counterparty:    params.Counterparty,
		Amount:          params.Amount,
		DueDate:         params.DueDate,
		RepaymentStatus: models.RepaymentPending,
		AmountRepaid:    decimal.Zero,
		Description:     params.Description,
		OwnerID:         params.OwnerID,
		Status:          models.StatusPendingSync,
		CreatedOffline:  true,
		LocalTimestamp:  time.Now().UnixMilli(),
	}

	records, err := r.load(ctx)
	if err != nil {
		return models.LoanRecord{}, err
	}
	records = append(records, record)
	if err := r.save(ctx, records); err != nil {
		return models.LoanRecord{}, err
	}
	return record, nil
}

func (r *loanRepository) List(ctx context.Context) ([]models.LoanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *loanRepository) ListPending(ctx context.Context) ([]models.LoanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.LoanRecord, 0)
	for _, record := range records {
		if record.Status == models.StatusPendingSync {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

func (r *loanRepository) FindByCode(ctx context.Context, code string) (*models.LoanRecord, error) {
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

func (r *loanRepository) MarkSynced(ctx context.Context, code string) error {
	return r.MarkStatus(ctx, code, models.StatusSynced)
}

// MarkStatus mirrors the wallet repository's silent no-op semantics.
func (r *loanRepository) MarkStatus(ctx context.Context, code string, status models.SyncStatus) error {
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

// UpdateRepayment edits the repayment fields of an existing loan. Unlike the
// lifecycle mutations this is a data edit, so a missing code is an error.
func (r *loanRepository) UpdateRepayment(ctx context.Context, code string, status models.RepaymentStatus, amountRepaid decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].TransactionCode != code {
			continue
		}
		records[i].RepaymentStatus = status
		records[i].AmountRepaid = amountRepaid
		return r.save(ctx, records)
	}
	return ErrNotFound
}

func (r *loanRepository) Remove(ctx context.Context, code string) error {
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

func (r *loanRepository) load(ctx context.Context) ([]models.LoanRecord, error) {
	blob, err := r.store.Load(ctx, loanSlotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan ledger: %w", err)
	}
	if len(blob) == 0 {
		return []models.LoanRecord{}, nil
	}
	var records []models.LoanRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return []models.LoanRecord{}, nil
	}
	return records, nil
}

func (r *loanRepository) save(ctx context.Context, records []models.LoanRecord) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode loan ledger: %w", err)
	}
	if err := r.store.Save(ctx, loanSlotKey, blob); err != nil {
		return fmt.Errorf("failed to save loan ledger: %w", err)
	}
	return nil
}
