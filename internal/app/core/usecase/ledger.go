package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Ledger 是轉帳引擎的介面
type Ledger interface {
	// Transfer 執行轉帳，成功時兩邊餘額同時更新，失敗時都不變
	Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error)
	// Account 取得帳戶快照 (值拷貝)
	Account(ctx context.Context, accountID string) (domain.Account, error)
}

// AccountStore 帳戶儲存
type AccountStore interface {
	// Create 新增帳戶，ID 已存在時回傳 domain.ErrDuplicateAccount
	Create(account *domain.Account) error
	// Get 取得帳戶 (內部指標，只能在持有帳戶鎖時修改)
	Get(accountID string) (*domain.Account, error)
}

// Notifier 通知 (best effort)，錯誤不會影響已完成的轉帳
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
