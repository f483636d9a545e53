package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus 轉帳結果
type TransferStatus string

const (
	TransferStatusSuccess TransferStatus = "SUCCESS"
	TransferStatusFailure TransferStatus = "FAILURE"
)

// TransferRequest 轉帳請求 (不可變)
type TransferRequest struct {
	PayerID string
	PayeeID string
	Amount  decimal.Decimal
}

// NewTransferRequest 建立並檢查轉帳請求
// 在取得任何鎖或查詢帳戶之前就拒絕不合法的請求
func NewTransferRequest(payerID, payeeID string, amount decimal.Decimal) (TransferRequest, error) {
	req := TransferRequest{
		PayerID: CanonicalAccountID(payerID),
		PayeeID: CanonicalAccountID(payeeID),
		Amount:  amount,
	}
	return req, req.Validate()
}

// Validate 檢查請求前置條件
func (r TransferRequest) Validate() error {
	if r.PayerID == "" || r.PayeeID == "" {
		return invalidf("payer and payee must not be empty")
	}
	if r.PayerID == r.PayeeID {
		return invalidf("transfer between same account is not allowed")
	}
	if !r.Amount.IsPositive() {
		return invalidf("transfer amount must be greater than zero")
	}
	return nil
}

// LockIDs 回傳需要鎖定的帳號 ID，依字典序排列以避免死鎖
// PayerID == PayeeID 已由 Validate 拒絕，這裡不處理
func (r TransferRequest) LockIDs() (first, second string) {
	if r.PayerID < r.PayeeID {
		return r.PayerID, r.PayeeID
	}
	return r.PayeeID, r.PayerID
}

// TransferResult 轉帳結果，沒有部分成功
type TransferResult struct {
	TransferID uuid.UUID
	Status     TransferStatus
	Amount     decimal.Decimal
}

// Notification 交易完成後送出的通知
type Notification struct {
	TransferID uuid.UUID
	Account    Account
	Message    string
	SentAt     time.Time
}

// TransferNotifications 組出一筆成功轉帳的兩則通知: 付款方 (轉出) 與收款方 (收到)
func TransferNotifications(transferID uuid.UUID, payer, payee Account, amount decimal.Decimal, now time.Time) [2]Notification {
	return [2]Notification{
		{
			TransferID: transferID,
			Account:    payer,
			Message:    fmt.Sprintf("Successfully transferred %s to account: %s", amount.String(), payee.ID),
			SentAt:     now,
		},
		{
			TransferID: transferID,
			Account:    payee,
			Message:    fmt.Sprintf("Amount %s received from account: %s", amount.String(), payer.ID),
			SentAt:     now,
		},
	}
}
