package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Account 帳戶
//
// ID 建立後不可變更；Balance 只在持有該帳戶鎖的情況下由 Ledger 修改
type Account struct {
	ID      string
	Balance decimal.Decimal
}

// CanonicalAccountID 回傳帳號的標準形式 (去除前後空白)
// 建立、查詢、轉帳都必須使用同一個標準形式，鎖的字典序才會一致
func CanonicalAccountID(id string) string {
	return strings.TrimSpace(id)
}

// ParseAccountID 回傳標準化後的帳號，空字串回傳 ErrInvalidRequest
func ParseAccountID(id string) (string, error) {
	id = CanonicalAccountID(id)
	if id == "" {
		return "", invalidf("account id must not be empty")
	}
	return id, nil
}

// NewAccount 建立帳戶，初始餘額不得為負
//
// 參數:
//
//	id: 帳戶 ID
//	balance: 初始餘額
//
// 回傳:
//
//	*Account: 帳戶
//	error: ErrInvalidRequest
func NewAccount(id string, balance decimal.Decimal) (*Account, error) {
	id, err := ParseAccountID(id)
	if err != nil {
		return nil, err
	}
	if balance.IsNegative() {
		return nil, invalidf("initial balance must not be negative")
	}
	return &Account{
		ID:      id,
		Balance: balance,
	}, nil
}

// Snapshot 回傳值拷貝，呼叫端必須持有帳戶鎖
func (a *Account) Snapshot() Account {
	return Account{ID: a.ID, Balance: a.Balance}
}

// Covers 餘額是否足以支付 amount
func (a *Account) Covers(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
