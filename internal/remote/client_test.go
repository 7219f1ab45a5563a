package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/models"
)

func testRecord() models.TransactionRecord {
	return models.TransactionRecord{
		ID:              "id-1",
		TransactionCode: "TX-ABC123XYZ",
		Kind:            models.KindSend,
		Amount:          decimal.NewFromInt(3000),
		Counterparty:    "Ada",
		OwnerID:         "owner-1",
		Status:          models.StatusPendingSync,
		CreatedOffline:  true,
		LocalTimestamp:  1700000000000,
	}
}

func TestClient_InsertTransaction(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/wallet_transactions", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	err := client.InsertTransaction(context.Background(), testRecord())
	require.NoError(t, err)

	assert.Equal(t, "TX-ABC123XYZ", captured["transaction_code"])
	assert.Equal(t, "send", captured["type"])
	assert.Equal(t, "3000", captured["amount"])
}

func TestClient_RejectionIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate transaction_code"}`, http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	err := client.InsertTransaction(context.Background(), testRecord())
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	err := client.InsertTransaction(context.Background(), testRecord())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestClient_UnreachableRemoteIsTransient(t *testing.T) {
	// Point at a closed port.
	client := NewClient("http://127.0.0.1:1", "test-key", 200*time.Millisecond)
	err := client.InsertTransaction(context.Background(), testRecord())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestClient_InsertLoan(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/loans", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	record := models.LoanRecord{
		TransactionCode: "LN-ABC123XYZ",
		Direction:       models.LoanTaken,
		Counterparty:    "Bola",
		Amount:          decimal.NewFromInt(15000),
		DueDate:         &due,
		RepaymentStatus: models.RepaymentPending,
		AmountRepaid:    decimal.Zero,
		OwnerID:         "owner-1",
		Status:          models.StatusPendingSync,
		CreatedOffline:  true,
		LocalTimestamp:  1700000000000,
	}

	client := NewClient(server.URL, "test-key", time.Second)
	require.NoError(t, client.InsertLoan(context.Background(), record))

	assert.Equal(t, "LN-ABC123XYZ", captured["transaction_code"])
	assert.Equal(t, "taken", captured["loan_type"])
	assert.Equal(t, "2026-12-01", captured["due_date"])
}
