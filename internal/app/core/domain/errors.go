package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest 請求不合法 (金額 <= 0、付款方等於收款方、帳號為空)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateAccount 帳戶已存在
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLockTimeout 等待帳戶鎖逾時，交易未執行
	ErrLockTimeout = errors.New("account lock wait timed out")
)

// AccountError 帶有帳戶 ID 的錯誤
// 用 errors.Is 判斷種類，用 errors.As 取得帳戶 ID
type AccountError struct {
	AccountID string
	Err       error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.AccountID)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}

// NewAccountError 建立帶帳戶 ID 的錯誤
func NewAccountError(accountID string, err error) error {
	return &AccountError{AccountID: accountID, Err: err}
}

// LockWaitError 放棄等待帳戶鎖時的錯誤
// 呼叫端取消 (context.Canceled) 保留原本的錯誤，其餘視為 ErrLockTimeout
func LockWaitError(accountID string, err error) error {
	if errors.Is(err, context.Canceled) {
		return NewAccountError(accountID, context.Canceled)
	}
	return NewAccountError(accountID, ErrLockTimeout)
}

// invalidf 包裝 ErrInvalidRequest 並附上原因
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
