package service

import (
	"context"
	"math"
	"time"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

// Score bounds and factor weights.
const (
	scoreFloor   = 300
	scoreCeiling = 850

	weightPaymentHistory    = 0.35
	weightCreditUtilization = 0.30
	weightHistoryLength     = 0.15
	weightCreditMix         = 0.10
	weightNewCredit         = 0.10
)

// CreditFactors is the normalized [0,100] breakdown behind a score.
type CreditFactors struct {
	PaymentHistory      float64 `json:"payment_history"`
	CreditUtilization   float64 `json:"credit_utilization"`
	CreditHistoryLength float64 `json:"credit_history_length"`
	CreditMix           float64 `json:"credit_mix"`
	NewCredit           float64 `json:"new_credit"`
}

// CreditScore is a point-in-time heuristic summary of wallet behavior, not a
// bureau score. Recomputed on request, never persisted.
type CreditScore struct {
	Score   int           `json:"score"`
	Level   string        `json:"level"`
	Factors CreditFactors `json:"factors"`
}

// CreditScoreService computes the credit-worthiness heuristic from the full
// current wallet record set.
type CreditScoreService interface {
	Score(ctx context.Context) (CreditScore, error)
}

type creditScoreService struct {
	repo ledger.TransactionRepository
	now  func() time.Time
}

// NewCreditScoreService creates a scorer over the wallet ledger.
func NewCreditScoreService(repo ledger.TransactionRepository) CreditScoreService {
	return &creditScoreService{repo: repo, now: time.Now}
}

func (s *creditScoreService) Score(ctx context.Context) (CreditScore, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return CreditScore{}, err
	}

	var completed, pending []models.TransactionRecord
	for _, record := range records {
		switch {
		case record.Status.IsCompleted():
			completed = append(completed, record)
		case record.Status == models.StatusPendingSync:
			pending = append(pending, record)
		}
	}

	now := s.now()
	historyMonths := s.historyMonths(completed, now)

	factors := CreditFactors{
		PaymentHistory:      paymentHistoryFactor(completed),
		CreditUtilization:   utilizationFactor(completed, historyMonths),
		CreditHistoryLength: historyLengthFactor(completed, historyMonths),
		CreditMix:           creditMixFactor(completed),
		NewCredit:           newCreditFactor(records, pending, historyMonths, now),
	}

	weighted := factors.PaymentHistory*weightPaymentHistory +
		factors.CreditUtilization*weightCreditUtilization +
		factors.CreditHistoryLength*weightHistoryLength +
		factors.CreditMix*weightCreditMix +
		factors.NewCredit*weightNewCredit

	score := int(math.Round(weighted/100*550 + 300))
	if score < scoreFloor {
		score = scoreFloor
	}
	if score > scoreCeiling {
		score = scoreCeiling
	}

	return CreditScore{
		Score:   score,
		Level:   scoreLevel(score),
		Factors: factors,
	}, nil
}

// historyMonths is the elapsed time since the oldest completed record, in
// months, floored at 1 so volume ratios stay defined for young ledgers.
func (s *creditScoreService) historyMonths(completed []models.TransactionRecord, now time.Time) float64 {
	if len(completed) == 0 {
		return 1
	}
	oldest := completed[0].LocalTimestamp
	for _, record := range completed[1:] {
		if record.LocalTimestamp < oldest {
			oldest = record.LocalTimestamp
		}
	}
	months := float64(now.UnixMilli()-oldest) / float64(30*24*time.Hour/time.Millisecond)
	if months < 1 {
		return 1
	}
	return months
}

// paymentHistoryFactor rewards volume of completed activity and consistency
// of amounts (low variance relative to the mean).
func paymentHistoryFactor(completed []models.TransactionRecord) float64 {
	factor := 50.0
	if len(completed) >= 10 {
		factor += 20
	}
	if len(completed) >= 20 {
		factor += 15
	}
	if len(completed) > 0 {
		mean := 0.0
		for _, record := range completed {
			mean += record.Amount.InexactFloat64()
		}
		mean /= float64(len(completed))

		variance := 0.0
		for _, record := range completed {
			diff := record.Amount.InexactFloat64() - mean
			variance += diff * diff
		}
		variance /= float64(len(completed))

		if variance < mean/2 {
			factor += 15
		}
	}
	return clampFactor(factor)
}

// utilizationFactor compares the confirmed balance to the estimated monthly
// volume; a low ratio scores high.
func utilizationFactor(completed []models.TransactionRecord, historyMonths float64) float64 {
	total := 0.0
	balance := 0.0
	for _, record := range completed {
		total += record.Amount.InexactFloat64()
		balance += record.SignedAmount().InexactFloat64()
	}
	monthlyVolume := total / historyMonths
	if monthlyVolume == 0 {
		return 50
	}

	ratio := balance / monthlyVolume
	switch {
	case ratio < 0.3:
		return 100
	case ratio < 0.5:
		return 80
	case ratio < 0.7:
		return 60
	case ratio < 0.9:
		return 40
	default:
		return 20
	}
}

func historyLengthFactor(completed []models.TransactionRecord, historyMonths float64) float64 {
	if len(completed) == 0 {
		return 20
	}
	switch {
	case historyMonths > 24:
		return 100
	case historyMonths > 12:
		return 80
	case historyMonths > 6:
		return 60
	case historyMonths > 3:
		return 40
	default:
		return 20
	}
}

// creditMixFactor counts distinct kinds among completed records. With only
// send and receive defined it effectively caps at 75.
func creditMixFactor(completed []models.TransactionRecord) float64 {
	kinds := make(map[models.TransactionKind]struct{})
	for _, record := range completed {
		kinds[record.Kind] = struct{}{}
	}
	switch {
	case len(kinds) >= 3:
		return 100
	case len(kinds) == 2:
		return 75
	case len(kinds) == 1:
		return 50
	default:
		return 25
	}
}

// newCreditFactor penalizes a large pending backlog and sudden activity
// bursts, and rewards steady recent use.
func newCreditFactor(records, pending []models.TransactionRecord, historyMonths float64, now time.Time) float64 {
	factor := 70.0

	switch {
	case len(pending) > 5:
		factor -= 30
	case len(pending) > 2:
		factor -= 15
	}

	cutoff := now.Add(-30 * 24 * time.Hour).UnixMilli()
	recent := 0
	for _, record := range records {
		if record.LocalTimestamp >= cutoff {
			recent++
		}
	}
	switch {
	case recent >= 5:
		factor += 20
	case recent >= 2:
		factor += 10
	}

	monthlyAverage := float64(len(records)) / historyMonths
	if float64(recent) > 3*monthlyAverage {
		factor -= 20
	}

	return clampFactor(factor)
}

func clampFactor(factor float64) float64 {
	if factor < 0 {
		return 0
	}
	if factor > 100 {
		return 100
	}
	return factor
}

func scoreLevel(score int) string {
	switch {
	case score >= 800:
		return "Excellent"
	case score >= 740:
		return "Very Good"
	case score >= 670:
		return "Good"
	case score >= 580:
		return "Fair"
	default:
		return "Poor"
	}
}
