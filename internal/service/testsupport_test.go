package service

import (
	"context"
	"sync"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/logger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

// fakeSlotStore backs real repositories with an in-memory slot map.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[string][]byte)}
}

func (f *fakeSlotStore) Save(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeSlotStore) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[key], nil
}

func newTestRepos() (ledger.TransactionRepository, ledger.LoanRepository) {
	slots := newFakeSlotStore()
	gen := codes.NewGenerator()
	return ledger.NewTransactionRepository(slots, gen), ledger.NewLoanRepository(slots, gen)
}

func testLogger() *logger.Logger {
	return logger.NewLogger("test")
}

// mockSystemOfRecord scripts per-counterparty outcomes and records every
// replication attempt.
type mockSystemOfRecord struct {
	mu                sync.Mutex
	errByCounterparty map[string]error
	transactionCalls  []string
	loanCalls         []string
}

func newMockSystemOfRecord() *mockSystemOfRecord {
	return &mockSystemOfRecord{errByCounterparty: make(map[string]error)}
}

func (m *mockSystemOfRecord) InsertTransaction(_ context.Context, record models.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactionCalls = append(m.transactionCalls, record.TransactionCode)
	return m.errByCounterparty[record.Counterparty]
}

func (m *mockSystemOfRecord) InsertLoan(_ context.Context, record models.LoanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loanCalls = append(m.loanCalls, record.TransactionCode)
	return m.errByCounterparty[record.Counterparty]
}
