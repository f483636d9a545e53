// Package http 帳戶與轉帳的 REST API (gin)
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// AccountService handler 需要的核心操作 (*usecase.CoreUseCase)
type AccountService interface {
	CreateAccount(ctx context.Context, accountID string, balance decimal.Decimal) (domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (domain.Account, error)
	Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal) (domain.TransferResult, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	core AccountService
	log  *zap.Logger
}

func NewHandler(core AccountService, log *zap.Logger) *Handler {
	return &Handler{
		core: core,
		log:  log,
	}
}

// CreateAccount handles POST /v1/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	if _, err := h.core.CreateAccount(c.Request.Context(), req.AccountID, *req.Balance); err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusCreated)
}

// GetAccount handles GET /v1/accounts/:accountId
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.core.GetAccount(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(account))
}

// Transfer handles POST /v1/accounts/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.core.Transfer(c.Request.Context(), req.AccountFromID, req.AccountToID, *req.Amount)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, TransferResponse{
		Status:            result.Status,
		TransferredAmount: json.Number(result.Amount.String()),
		TransferID:        result.TransferID.String(),
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) fail(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:    "Failure",
		Code:      code,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

// statusClientClosedRequest 呼叫端在結果出來前斷線 (nginx 慣例)
const statusClientClosedRequest = 499

// statusFor 把 domain 錯誤對應到 HTTP 狀態碼
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
