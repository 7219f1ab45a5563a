package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/logger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/metrics"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/remote"
)

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	Processed int `json:"processed"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// SyncService drains pending records against the remote system of record.
// Passes are serialized per ledger, so re-running while a previous run is in
// flight cannot replicate the same record twice, and each record's status is
// re-read immediately before its attempt to tolerate transitions that happen
// between the pass's initial read and per-record processing.
type SyncService interface {
	SyncTransactions(ctx context.Context) (SyncResult, error)
	SyncLoans(ctx context.Context) (SyncResult, error)
}

type syncService struct {
	txMu   sync.Mutex
	loanMu sync.Mutex

	transactions  ledger.TransactionRepository
	loans         ledger.LoanRepository
	remote        remote.SystemOfRecord
	recordTimeout time.Duration
	log           *logger.Logger
	metrics       *metrics.Metrics
}

// NewSyncService creates a sync service. recordTimeout bounds each remote
// call; a timed-out record stays pending for the next pass. metrics may be
// nil in tests.
func NewSyncService(
	transactions ledger.TransactionRepository,
	loans ledger.LoanRepository,
	systemOfRecord remote.SystemOfRecord,
	recordTimeout time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) SyncService {
	return &syncService{
		transactions:  transactions,
		loans:         loans,
		remote:        systemOfRecord,
		recordTimeout: recordTimeout,
		log:           log,
		metrics:       m,
	}
}

// SyncTransactions replicates every pending wallet record in order. A record
// the remote explicitly rejects moves to failed; a record the remote could
// not be reached for stays pending. Synced records are never deleted.
func (s *syncService) SyncTransactions(ctx context.Context) (SyncResult, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	pending, err := s.transactions.ListPending(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if len(pending) == 0 {
		return SyncResult{}, nil
	}
	s.countRun("wallet")

	var result SyncResult
	for _, record := range pending {
		if ctx.Err() != nil {
			// Cancelled mid-pass: already-synced records keep their new
			// state, the rest stays pending.
			result.Remaining += len(pending) - result.Processed
			return result, ctx.Err()
		}

		current, err := s.transactions.FindByCode(ctx, record.TransactionCode)
		if err != nil {
			return result, err
		}
		if current == nil || current.Status != models.StatusPendingSync {
			continue
		}
		result.Processed++

		callCtx, cancel := context.WithTimeout(ctx, s.recordTimeout)
		err = s.remote.InsertTransaction(callCtx, *current)
		cancel()

		switch {
		case err == nil:
			if err := s.transactions.MarkSynced(ctx, record.TransactionCode); err != nil {
				return result, err
			}
			result.Synced++
			s.countRecord("wallet", "synced")
		case errors.Is(err, remote.ErrRejected):
			if err := s.transactions.MarkStatus(ctx, record.TransactionCode, models.StatusFailed); err != nil {
				return result, err
			}
			result.Failed++
			s.countRecord("wallet", "failed")
			s.log.WithField("transaction_code", record.TransactionCode).WithError(err).
				Warn("Remote rejected transaction")
		default:
			// Transient failure: leave the record pending for retry rather
			// than risk losing a legitimate transaction.
			result.Remaining++
			s.countRecord("wallet", "retry")
			s.log.WithField("transaction_code", record.TransactionCode).WithError(err).
				Warn("Could not reach remote, transaction left pending")
		}
	}

	s.gaugePending("wallet", result.Remaining)
	s.log.WithFields(map[string]interface{}{
		"processed": result.Processed,
		"synced":    result.Synced,
		"failed":    result.Failed,
		"remaining": result.Remaining,
	}).Info("Wallet sync pass completed")
	return result, nil
}

// SyncLoans is the loan analog of SyncTransactions: same retention policy,
// same rejection/transient split.
func (s *syncService) SyncLoans(ctx context.Context) (SyncResult, error) {
	s.loanMu.Lock()
	defer s.loanMu.Unlock()

	pending, err := s.loans.ListPending(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if len(pending) == 0 {
		return SyncResult{}, nil
	}
	s.countRun("loan")

	var result SyncResult
	for _, record := range pending {
		if ctx.Err() != nil {
			result.Remaining += len(pending) - result.Processed
			return result, ctx.Err()
		}

		current, err := s.loans.FindByCode(ctx, record.TransactionCode)
		if err != nil {
			return result, err
		}
		if current == nil || current.Status != models.StatusPendingSync {
			continue
		}
		result.Processed++

		callCtx, cancel := context.WithTimeout(ctx, s.recordTimeout)
		err = s.remote.InsertLoan(callCtx, *current)
		cancel()

		switch {
		case err == nil:
			if err := s.loans.MarkSynced(ctx, record.TransactionCode); err != nil {
				return result, err
			}
			result.Synced++
			s.countRecord("loan", "synced")
		case errors.Is(err, remote.ErrRejected):
			if err := s.loans.MarkStatus(ctx, record.TransactionCode, models.StatusFailed); err != nil {
				return result, err
			}
			result.Failed++
			s.countRecord("loan", "failed")
			s.log.WithField("transaction_code", record.TransactionCode).WithError(err).
				Warn("Remote rejected loan")
		default:
			result.Remaining++
			s.countRecord("loan", "retry")
			s.log.WithField("transaction_code", record.TransactionCode).WithError(err).
				Warn("Could not reach remote, loan left pending")
		}
	}

	s.gaugePending("loan", result.Remaining)
	s.log.WithFields(map[string]interface{}{
		"processed": result.Processed,
		"synced":    result.Synced,
		"failed":    result.Failed,
		"remaining": result.Remaining,
	}).Info("Loan sync pass completed")
	return result, nil
}

func (s *syncService) countRun(ledgerName string) {
	if s.metrics != nil {
		s.metrics.SyncRuns.WithLabelValues(ledgerName).Inc()
	}
}

func (s *syncService) countRecord(ledgerName, outcome string) {
	if s.metrics != nil {
		s.metrics.SyncRecords.WithLabelValues(ledgerName, outcome).Inc()
	}
}

func (s *syncService) gaugePending(ledgerName string, remaining int) {
	if s.metrics != nil {
		s.metrics.PendingRecords.WithLabelValues(ledgerName).Set(float64(remaining))
	}
}
