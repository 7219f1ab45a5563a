package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/ledger"
	"github.com/Ammar-git-face/sabi-boss-biz-aid/internal/service"
)

// LoanHandler exposes the loan ledger over HTTP.
type LoanHandler struct {
	loans service.LoanService
	sync  service.SyncService
}

// NewLoanHandler creates a loan handler.
func NewLoanHandler(loans service.LoanService, syncService service.SyncService) *LoanHandler {
	return &LoanHandler{loans: loans, sync: syncService}
}

// Register mounts the loan routes.
func (h *LoanHandler) Register(r gin.IRouter) {
	loans := r.Group("/loans")
	loans.POST("", h.RecordLoan)
	loans.GET("", h.ListLoans)
	loans.GET("/pending", h.ListPending)
	loans.POST("/sync", h.Sync)
	loans.PATCH("/:code/repayment", h.UpdateRepayment)
	loans.DELETE("/:code", h.RemoveLoan)
}

func (h *LoanHandler) RecordLoan(c *gin.Context) {
	var dto service.CreateLoanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dto.OwnerID = c.GetHeader(ownerHeader)

	record, err := h.loans.RecordLoan(c.Request.Context(), dto)
	if err != nil {
		c.JSON(loanErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	records, err := h.loans.Loans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": records})
}

func (h *LoanHandler) ListPending(c *gin.Context) {
	records, err := h.loans.PendingLoans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": records})
}

func (h *LoanHandler) Sync(c *gin.Context) {
	result, err := h.sync.SyncLoans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *LoanHandler) UpdateRepayment(c *gin.Context) {
	var dto service.UpdateRepaymentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.loans.UpdateRepayment(c.Request.Context(), c.Param("code"), dto); err != nil {
		c.JSON(loanErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *LoanHandler) RemoveLoan(c *gin.Context) {
	if err := h.loans.RemoveLoan(c.Request.Context(), c.Param("code")); err != nil {
		c.JSON(loanErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func loanErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrRecordSynced):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidLoan):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
