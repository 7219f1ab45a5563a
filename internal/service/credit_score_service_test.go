package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

// cannedTransactionRepo serves a fixed record set; only List is exercised by
// the scorer.
type cannedTransactionRepo struct {
	records []models.TransactionRecord
}

func (r *cannedTransactionRepo) Append(context.Context, ledger.AppendTransactionParams) (models.TransactionRecord, error) {
	return models.TransactionRecord{}, nil
}
func (r *cannedTransactionRepo) List(context.Context) ([]models.TransactionRecord, error) {
	return r.records, nil
}
func (r *cannedTransactionRepo) ListPending(context.Context) ([]models.TransactionRecord, error) {
	return nil, nil
}
func (r *cannedTransactionRepo) FindByCode(context.Context, string) (*models.TransactionRecord, error) {
	return nil, nil
}
func (r *cannedTransactionRepo) MarkSynced(context.Context, string) error   { return nil }
func (r *cannedTransactionRepo) MarkVerified(context.Context, string) error { return nil }
func (r *cannedTransactionRepo) MarkStatus(context.Context, string, models.SyncStatus) error {
	return nil
}
func (r *cannedTransactionRepo) Remove(context.Context, string) error { return nil }

var scoreNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestScorer(records []models.TransactionRecord) CreditScoreService {
	return &creditScoreService{
		repo: &cannedTransactionRepo{records: records},
		now:  func() time.Time { return scoreNow },
	}
}

func scoreRecord(kind models.TransactionKind, amount int64, status models.SyncStatus, ageDays int) models.TransactionRecord {
	return models.TransactionRecord{
		Kind:           kind,
		Amount:         decimal.NewFromInt(amount),
		Status:         status,
		LocalTimestamp: scoreNow.Add(-time.Duration(ageDays) * 24 * time.Hour).UnixMilli(),
	}
}

func TestCreditScore_EmptyLedger(t *testing.T) {
	score, err := newTestScorer(nil).Score(context.Background())
	require.NoError(t, err)

	// 50*.35 + 50*.30 + 20*.15 + 25*.10 + 70*.10 = 45 -> 548
	assert.Equal(t, 548, score.Score)
	assert.Equal(t, "Poor", score.Level)
}

func TestCreditScore_AlwaysWithinBounds(t *testing.T) {
	tests := []struct {
		name    string
		records []models.TransactionRecord
	}{
		{"empty", nil},
		{"single pending", []models.TransactionRecord{
			scoreRecord(models.KindReceive, 100, models.StatusPendingSync, 0),
		}},
		{"all failed", []models.TransactionRecord{
			scoreRecord(models.KindSend, 100, models.StatusFailed, 5),
			scoreRecord(models.KindReceive, 200, models.StatusFailed, 3),
		}},
		{"long steady history", func() []models.TransactionRecord {
			var records []models.TransactionRecord
			for i := 0; i < 25; i++ {
				records = append(records, scoreRecord(models.KindReceive, 100, models.StatusSynced, 30*i))
			}
			return records
		}()},
		{"burst of pending", func() []models.TransactionRecord {
			var records []models.TransactionRecord
			for i := 0; i < 10; i++ {
				records = append(records, scoreRecord(models.KindSend, 9999, models.StatusPendingSync, 1))
			}
			return records
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := newTestScorer(tt.records).Score(context.Background())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, score.Score, 300)
			assert.LessOrEqual(t, score.Score, 850)
			assert.Contains(t, []string{"Excellent", "Very Good", "Good", "Fair", "Poor"}, score.Level)
		})
	}
}

func TestCreditScore_LevelMatchesThresholds(t *testing.T) {
	tests := []struct {
		score int
		level string
	}{
		{850, "Excellent"}, {800, "Excellent"},
		{799, "Very Good"}, {740, "Very Good"},
		{739, "Good"}, {670, "Good"},
		{669, "Fair"}, {580, "Fair"},
		{579, "Poor"}, {300, "Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, scoreLevel(tt.score), "score %d", tt.score)
	}
}

func TestCreditScore_CreditMixFactor(t *testing.T) {
	both := []models.TransactionRecord{
		scoreRecord(models.KindSend, 100, models.StatusSynced, 10),
		scoreRecord(models.KindReceive, 100, models.StatusSynced, 10),
	}
	score, err := newTestScorer(both).Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75.0, score.Factors.CreditMix)

	single := []models.TransactionRecord{
		scoreRecord(models.KindReceive, 100, models.StatusSynced, 10),
	}
	score, err = newTestScorer(single).Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, score.Factors.CreditMix)
}

func TestCreditScore_HistoryLengthFactor(t *testing.T) {
	old := []models.TransactionRecord{
		scoreRecord(models.KindReceive, 100, models.StatusSynced, 800),
	}
	score, err := newTestScorer(old).Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Factors.CreditHistoryLength)

	young := []models.TransactionRecord{
		scoreRecord(models.KindReceive, 100, models.StatusSynced, 10),
	}
	score, err = newTestScorer(young).Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20.0, score.Factors.CreditHistoryLength)
}

func TestCreditScore_PendingBacklogPenalty(t *testing.T) {
	var heavy []models.TransactionRecord
	for i := 0; i < 6; i++ {
		heavy = append(heavy, scoreRecord(models.KindSend, 100, models.StatusPendingSync, 100))
	}
	heavyScore, err := newTestScorer(heavy).Score(context.Background())
	require.NoError(t, err)

	light := []models.TransactionRecord{
		scoreRecord(models.KindSend, 100, models.StatusPendingSync, 100),
	}
	lightScore, err := newTestScorer(light).Score(context.Background())
	require.NoError(t, err)

	assert.Less(t, heavyScore.Factors.NewCredit, lightScore.Factors.NewCredit)
}

func TestCreditScore_OfflineVerifiedCountsAsCompleted(t *testing.T) {
	records := []models.TransactionRecord{
		scoreRecord(models.KindReceive, 100, models.StatusOfflineVerified, 10),
	}
	score, err := newTestScorer(records).Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50.0, score.Factors.CreditMix)
	assert.NotEqual(t, 25.0, score.Factors.CreditMix)
}
