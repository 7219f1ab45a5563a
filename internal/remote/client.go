package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

// ErrRejected marks a record the remote system of record explicitly refused.
// Callers must treat it differently from transport failures: a rejected
// record moves to the failed state, while an unreachable remote leaves the
// record pending for retry.
var ErrRejected = errors.New("remote rejected record")

// SystemOfRecord replicates locally created records to the remote datastore,
// keyed by transaction code.
type SystemOfRecord interface {
	InsertTransaction(ctx context.Context, record models.TransactionRecord) error
	InsertLoan(ctx context.Context, record models.LoanRecord) error
}

// Client talks to the remote REST datastore.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a remote client with a bounded per-request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type transactionPayload struct {
	TransactionCode string `json:"transaction_code"`
	UserID          string `json:"user_id"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Counterparty    string `json:"counterparty"`
	CreatedOffline  bool   `json:"created_offline"`
	LocalTimestamp  int64  `json:"local_timestamp"`
}

type loanPayload struct {
	TransactionCode string  `json:"transaction_code"`
	UserID          string  `json:"user_id"`
	LoanType        string  `json:"loan_type"`
	BorrowerLender  string  `json:"borrower_lender"`
	Amount          string  `json:"amount"`
	DueDate         *string `json:"due_date,omitempty"`
	RepaymentStatus string  `json:"repayment_status"`
	AmountRepaid    string  `json:"amount_repaid"`
	Description     string  `json:"description,omitempty"`
	CreatedOffline  bool    `json:"created_offline"`
	LocalTimestamp  int64   `json:"local_timestamp"`
}

// InsertTransaction replicates a wallet record.
func (c *Client) InsertTransaction(ctx context.Context, record models.TransactionRecord) error {
	payload := transactionPayload{
		TransactionCode: record.TransactionCode,
		UserID:          record.OwnerID,
		Type:            string(record.Kind),
		Amount:          record.Amount.String(),
		Counterparty:    record.Counterparty,
		CreatedOffline:  record.CreatedOffline,
		LocalTimestamp:  record.LocalTimestamp,
	}
	return c.insert(ctx, "/rest/v1/wallet_transactions", payload)
}

// InsertLoan replicates a loan record.
func (c *Client) InsertLoan(ctx context.Context, record models.LoanRecord) error {
	var dueDate *string
	if record.DueDate != nil {
		formatted := record.DueDate.Format("2006-01-02")
		dueDate = &formatted
	}
	payload := loanPayload{
		TransactionCode: record.TransactionCode,
		UserID:          record.OwnerID,
		LoanType:        string(record.Direction),
		BorrowerLender:  record.Counterparty,
		Amount:          record.Amount.String(),
		DueDate:         dueDate,
		RepaymentStatus: string(record.RepaymentStatus),
		AmountRepaid:    record.AmountRepaid.String(),
		Description:     record.Description,
		CreatedOffline:  record.CreatedOffline,
		LocalTimestamp:  record.LocalTimestamp,
	}
	return c.insert(ctx, "/rest/v1/loans", payload)
}

func (c *Client) insert(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach remote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, respBody)
	}
	return fmt.Errorf("remote returned status %d: %s", resp.StatusCode, respBody)
}
