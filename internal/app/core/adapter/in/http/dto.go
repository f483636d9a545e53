package http

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// CreateAccountRequest POST /v1/accounts
type CreateAccountRequest struct {
	AccountID string           `json:"accountId" binding:"required"`
	Balance   *decimal.Decimal `json:"balance" binding:"required"`
}

// AccountResponse GET /v1/accounts/:accountId
type AccountResponse struct {
	AccountID string      `json:"accountId"`
	Balance   json.Number `json:"balance"`
}

func newAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.ID,
		Balance:   json.Number(a.Balance.String()),
	}
}

// TransferRequest POST /v1/accounts/transfer
type TransferRequest struct {
	AccountFromID string           `json:"accountFromId" binding:"required"`
	AccountToID   string           `json:"accountToId" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
}

// TransferResponse 轉帳成功
type TransferResponse struct {
	Status            domain.TransferStatus `json:"status"`
	TransferredAmount json.Number           `json:"transferredAmount"`
	TransferID        string                `json:"transferId"`
}

// ErrorResponse 所有錯誤的回應格式
type ErrorResponse struct {
	Status    string    `json:"status"`
	Code      int       `json:"code"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
