package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/service"
)

// ownerHeader carries the explicit owner identity on every request instead of
// an ambient session context.
const ownerHeader = "X-Owner-ID"

// WalletHandler exposes the wallet ledger over HTTP.
type WalletHandler struct {
	wallet service.WalletService
	scorer service.CreditScoreService
	sync   service.SyncService
}

// NewWalletHandler creates a wallet handler.
func NewWalletHandler(wallet service.WalletService, scorer service.CreditScoreService, syncService service.SyncService) *WalletHandler {
	return &WalletHandler{wallet: wallet, scorer: scorer, sync: syncService}
}

// Register mounts the wallet routes.
func (h *WalletHandler) Register(r gin.IRouter) {
	wallet := r.Group("/wallet")
	wallet.POST("/send", h.SendPayment)
	wallet.POST("/receive", h.ReceivePayment)
	wallet.GET("/transactions", h.ListTransactions)
	wallet.GET("/transactions/pending", h.ListPending)
	wallet.GET("/balance", h.Balance)
	wallet.GET("/credit-score", h.CreditScore)
	wallet.POST("/sync", h.Sync)
	wallet.POST("/transactions/:code/verify", h.VerifyTransaction)
	wallet.GET("/transactions/:code/integrity", h.VerifyIntegrity)
	wallet.DELETE("/transactions/:code", h.RemoveTransaction)
}

type paymentRequest struct {
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Counterparty string  `json:"counterparty" binding:"required"`
}

func (h *WalletHandler) SendPayment(c *gin.Context) {
	ownerID := c.GetHeader(ownerHeader)
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.wallet.SendPayment(c.Request.Context(), ownerID, decimal.NewFromFloat(req.Amount), req.Counterparty)
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *WalletHandler) ReceivePayment(c *gin.Context) {
	ownerID := c.GetHeader(ownerHeader)
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.wallet.ReceivePayment(c.Request.Context(), ownerID, decimal.NewFromFloat(req.Amount), req.Counterparty)
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	records, err := h.wallet.Transactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": records})
}

func (h *WalletHandler) ListPending(c *gin.Context) {
	records, err := h.wallet.PendingTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": records})
}

func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.wallet.Balance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *WalletHandler) CreditScore(c *gin.Context) {
	score, err := h.scorer.Score(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, score)
}

func (h *WalletHandler) Sync(c *gin.Context) {
	result, err := h.sync.SyncTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *WalletHandler) VerifyTransaction(c *gin.Context) {
	if err := h.wallet.VerifyTransaction(c.Request.Context(), c.Param("code")); err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

func (h *WalletHandler) VerifyIntegrity(c *gin.Context) {
	intact, err := h.wallet.VerifyIntegrity(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"intact": intact})
}

func (h *WalletHandler) RemoveTransaction(c *gin.Context) {
	if err := h.wallet.RemoveTransaction(c.Request.Context(), c.Param("code")); err != nil {
		c.JSON(walletErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func walletErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingCounterparty),
		errors.Is(err, service.ErrMissingOwner):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrRecordSynced):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
