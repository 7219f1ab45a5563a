package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

var (
	ErrLoanNotFound = errors.New("loan not found")
	ErrInvalidLoan  = errors.New("invalid loan request")
)

// CreateLoanDTO carries the fields of a new loan request.
type CreateLoanDTO struct {
	OwnerID      string  `json:"-" validate:"required"`
	Direction    string  `json:"loan_type" validate:"required,oneof=given taken"`
	Counterparty string  `json:"borrower_lender" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	DueDate      string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description  string  `json:"description"`
}

// UpdateRepaymentDTO carries a repayment-progress update.
type UpdateRepaymentDTO struct {
	Status       string  `json:"repayment_status" validate:"required,oneof=pending partial paid"`
	AmountRepaid float64 `json:"amount_repaid" validate:"gte=0"`
}

// LoanService owns the loan ledger's business rules. Loans share the wallet
// ledger's lifecycle but feed no balance or score.
type LoanService interface {
	RecordLoan(ctx context.Context, dto CreateLoanDTO) (models.LoanRecord, error)
	Loans(ctx context.Context) ([]models.LoanRecord, error)
	PendingLoans(ctx context.Context) ([]models.LoanRecord, error)
	UpdateRepayment(ctx context.Context, code string, dto UpdateRepaymentDTO) error
	RemoveLoan(ctx context.Context, code string) error
}

type loanService struct {
	repo     ledger.LoanRepository
	validate *validator.Validate
}

// NewLoanService creates a loan service over the given repository.
func NewLoanService(repo ledger.LoanRepository) LoanService {
	return &loanService{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *loanService) RecordLoan(ctx context.Context, dto CreateLoanDTO) (models.LoanRecord, error) {
	if err := s.validate.Struct(dto); err != nil {
		return models.LoanRecord{}, fmt.Errorf("%w: %v", ErrInvalidLoan, err)
	}

	var dueDate *time.Time
	if dto.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", dto.DueDate)
		if err != nil {
			return models.LoanRecord{}, fmt.Errorf("%w: bad due date: %v", ErrInvalidLoan, err)
		}
		dueDate = &parsed
	}

	return s.repo.Append(ctx, ledger.AppendLoanParams{
		OwnerID:      dto.OwnerID,
		Direction:    models.LoanDirection(dto.Direction),
		Counterparty: dto.Counterparty,
		Amount:       decimal.NewFromFloat(dto.Amount),
		DueDate:      dueDate,
		Description:  dto.Description,
	})
}

func (s *loanService) Loans(ctx context.Context) ([]models.LoanRecord, error) {
	return s.repo.List(ctx)
}

func (s *loanService) PendingLoans(ctx context.Context) ([]models.LoanRecord, error) {
	return s.repo.ListPending(ctx)
}

func (s *loanService) UpdateRepayment(ctx context.Context, code string, dto UpdateRepaymentDTO) error {
	if err := s.validate.Struct(dto); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLoan, err)
	}

	err := s.repo.UpdateRepayment(ctx, code, models.RepaymentStatus(dto.Status), decimal.NewFromFloat(dto.AmountRepaid))
	if errors.Is(err, ledger.ErrNotFound) {
		return ErrLoanNotFound
	}
	return err
}

func (s *loanService) RemoveLoan(ctx context.Context, code string) error {
	if err := s.repo.Remove(ctx, code); err != nil {
		return fmt.Errorf("failed to remove loan %s: %w", code, err)
	}
	return nil
}
