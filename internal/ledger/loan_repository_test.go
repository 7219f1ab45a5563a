package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/codes"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

func newTestLoanRepo(t *testing.T) LoanRepository {
	t.Helper()
	return NewLoanRepository(newFakeSlotStore(), codes.NewGenerator())
}

func appendLoan(t *testing.T, repo LoanRepository) models.LoanRecord {
	t.Helper()
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	record, err := repo.Append(context.Background(), AppendLoanParams{
		OwnerID:      "owner-1",
		Direction:    models.LoanGiven,
		Counterparty: "Bola",
		Amount:       decimal.NewFromInt(20000),
		DueDate:      &due,
		Description:  "stock purchase",
	})
	require.NoError(t, err)
	return record
}

func TestLoanRepository_AppendAssignsFields(t *testing.T) {
	repo := newTestLoanRepo(t)

	record := appendLoan(t, repo)

	assert.NotEmpty(t, record.ID)
	assert.True(t, strings.HasPrefix(record.TransactionCode, "LN-"))
	assert.Equal(t, models.StatusPendingSync, record.Status)
	assert.Equal(t, models.RepaymentPending, record.RepaymentStatus)
	assert.True(t, record.AmountRepaid.IsZero())
	assert.True(t, record.CreatedOffline)
}

func TestLoanRepository_UpdateRepayment(t *testing.T) {
	repo := newTestLoanRepo(t)
	ctx := context.Background()
	record := appendLoan(t, repo)

	err := repo.UpdateRepayment(ctx, record.TransactionCode, models.RepaymentPartial, decimal.NewFromInt(5000))
	require.NoError(t, err)

	found, err := repo.FindByCode(ctx, record.TransactionCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.RepaymentPartial, found.RepaymentStatus)
	assert.True(t, found.AmountRepaid.Equal(decimal.NewFromInt(5000)))
}

func TestLoanRepository_UpdateRepaymentUnknownCode(t *testing.T) {
	repo := newTestLoanRepo(t)

	err := repo.UpdateRepayment(context.Background(), "LN-NOPE", models.RepaymentPaid, decimal.Zero)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoanRepository_SyncedLoansAreRetained(t *testing.T) {
	repo := newTestLoanRepo(t)
	ctx := context.Background()
	record := appendLoan(t, repo)

	require.NoError(t, repo.MarkSynced(ctx, record.TransactionCode))
	require.NoError(t, repo.MarkSynced(ctx, record.TransactionCode))

	err := repo.Remove(ctx, record.TransactionCode)
	assert.ErrorIs(t, err, ErrRecordSynced)

	records, listErr := repo.List(ctx)
	require.NoError(t, listErr)
	assert.Len(t, records, 1)
	assert.Equal(t, models.StatusSynced, records[0].Status)
}

func TestLoanRepository_ListPending(t *testing.T) {
	repo := newTestLoanRepo(t)
	ctx := context.Background()

	first := appendLoan(t, repo)
	second := appendLoan(t, repo)
	require.NoError(t, repo.MarkSynced(ctx, first.TransactionCode))

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.TransactionCode, pending[0].TransactionCode)
}
