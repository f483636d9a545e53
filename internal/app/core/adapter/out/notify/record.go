// Package notify 轉帳通知的輸出端
package notify

import (
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Record 通知的 JSON 格式，journal 與 NATS 共用
type Record struct {
	TransferID string    `json:"transfer_id"`
	AccountID  string    `json:"account_id"`
	Balance    string    `json:"balance"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

// NewRecord 由 domain.Notification 轉換
func NewRecord(n domain.Notification) Record {
	return Record{
		TransferID: n.TransferID.String(),
		AccountID:  n.Account.ID,
		Balance:    n.Account.Balance.String(),
		Message:    n.Message,
		SentAt:     n.SentAt.UTC(),
	}
}
