package memory

import (
	"sync"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// AccountStore 記憶體帳戶儲存
//
// mu 只保護 map 的 key space；帳戶餘額由 Ledger 的帳戶鎖保護
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewAccountStore 建立空的 AccountStore
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Create 新增帳戶，不覆蓋已存在的帳戶
//
// 回傳:
//
//	error: ErrDuplicateAccount
func (s *AccountStore) Create(account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return domain.NewAccountError(account.ID, domain.ErrDuplicateAccount)
	}
	s.accounts[account.ID] = account
	return nil
}

// Get 取得帳戶
//
// 回傳:
//
//	*domain.Account: 內部指標
//	error: ErrAccountNotFound
func (s *AccountStore) Get(accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.NewAccountError(accountID, domain.ErrAccountNotFound)
	}
	return account, nil
}

// Clear 清空所有帳戶 (測試用)
func (s *AccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*domain.Account)
}

var _ usecase.AccountStore = (*AccountStore)(nil)
