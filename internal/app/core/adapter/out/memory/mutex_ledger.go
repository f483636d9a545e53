package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/keylock"
)

// MutexLedger 以帳戶為單位加鎖的帳本
//
// 結構:
//
//	store: 帳戶資料
//	locks: 帳號 -> 互斥鎖，轉帳依字典序取得雙方的鎖
//	lockTimeout: 等待單一帳戶鎖的上限，0 表示只看 ctx
//	notifier: 轉帳完成後在鎖外送出通知
type MutexLedger struct {
	store       usecase.AccountStore
	locks       *keylock.Registry
	lockTimeout time.Duration
	notifier    notifier
	log         *zap.Logger
}

// MutexLedgerOption MutexLedger 的設定選項
type MutexLedgerOption func(*MutexLedger)

// WithLockTimeout 設定等待帳戶鎖的上限
func WithLockTimeout(d time.Duration) MutexLedgerOption {
	return func(m *MutexLedger) {
		m.lockTimeout = d
	}
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	store: 帳戶儲存
//	n: 通知 (可為 nil)
//	log: logger
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(store usecase.AccountStore, n usecase.Notifier, log *zap.Logger, opts ...MutexLedgerOption) *MutexLedger {
	m := &MutexLedger{
		store:    store,
		locks:    keylock.New(),
		notifier: notifier{next: n, log: log},
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transfer 處理轉帳 (兩階段加鎖)
//
// 1. 依字典序決定加鎖順序：任何兩筆涉及相同帳戶的轉帳都以相同順序取得鎖，不會形成循環等待
// 2. 持有兩把鎖時查詢帳戶、檢查餘額、更新餘額
// 3. 釋放鎖後送出通知
//
// 回傳:
//
//	domain.TransferResult: 結果
//	error: ErrInvalidRequest, ErrAccountNotFound, ErrInsufficientFunds, ErrLockTimeout
func (m *MutexLedger) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return failure(req), err
	}

	s, err := m.transferLocked(ctx, req)
	if err != nil {
		return failure(req), err
	}

	m.notifier.settle(ctx, s)
	return s.result, nil
}

// transferLocked 在持有雙方帳戶鎖的情況下執行轉帳，回傳前釋放所有鎖
func (m *MutexLedger) transferLocked(ctx context.Context, req domain.TransferRequest) (settlement, error) {
	first, second := req.LockIDs()

	unlockFirst, err := m.lock(ctx, first)
	if err != nil {
		return settlement{}, err
	}
	defer unlockFirst()

	unlockSecond, err := m.lock(ctx, second)
	if err != nil {
		return settlement{}, err
	}
	defer unlockSecond()

	return applyTransfer(m.store, req)
}

// Account 在持有帳戶鎖的情況下取得快照
func (m *MutexLedger) Account(ctx context.Context, accountID string) (domain.Account, error) {
	unlock, err := m.lock(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	defer unlock()

	account, err := m.store.Get(accountID)
	if err != nil {
		return domain.Account{}, err
	}
	return account.Snapshot(), nil
}

// lock 取得單一帳戶的鎖，逾時回傳 ErrLockTimeout，呼叫端取消回傳 context.Canceled
func (m *MutexLedger) lock(ctx context.Context, accountID string) (func(), error) {
	if m.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.lockTimeout)
		defer cancel()
	}
	unlock, err := m.locks.Lock(ctx, accountID)
	if err != nil {
		m.log.Debug("account lock wait aborted", zap.String("account_id", accountID), zap.Error(err))
		return nil, domain.LockWaitError(accountID, err)
	}
	return unlock, nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
