package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/telemetry"
)

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	store  AccountStore
	ledger Ledger
	log    *zap.Logger
}

func NewCoreUseCase(store AccountStore, ledger Ledger, log *zap.Logger) *CoreUseCase {
	return &CoreUseCase{
		store:  store,
		ledger: ledger,
		log:    log,
	}
}

// CreateAccount 建立帳戶
//
// 回傳:
//
//	domain.Account: 建立後的帳戶快照
//	error: ErrInvalidRequest, ErrDuplicateAccount
func (c *CoreUseCase) CreateAccount(ctx context.Context, accountID string, balance decimal.Decimal) (domain.Account, error) {
	account, err := domain.NewAccount(accountID, balance)
	if err != nil {
		return domain.Account{}, err
	}
	// 快照要在交給 store 之前取，之後帳戶就可能被轉帳修改
	snapshot := account.Snapshot()
	if err := c.store.Create(account); err != nil {
		c.log.Warn("create account rejected", zap.String("account_id", account.ID), zap.Error(err))
		return domain.Account{}, err
	}
	telemetry.AccountsCreated.Inc()
	c.log.Info("account created", zap.String("account_id", account.ID), zap.Stringer("balance", account.Balance))
	return snapshot, nil
}

// GetAccount 取得帳戶快照
func (c *CoreUseCase) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	id, err := domain.ParseAccountID(accountID)
	if err != nil {
		return domain.Account{}, err
	}
	return c.ledger.Account(ctx, id)
}

// Transfer 轉帳
//
// 參數:
//
//	ctx: 上下文 (等待帳戶鎖的期限)
//	payerID: 付款方
//	payeeID: 收款方
//	amount: 金額，必須 > 0
//
// 回傳:
//
//	domain.TransferResult: 結果
//	error: ErrInvalidRequest, ErrAccountNotFound, ErrInsufficientFunds, ErrLockTimeout
func (c *CoreUseCase) Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal) (domain.TransferResult, error) {
	start := time.Now()
	req, err := domain.NewTransferRequest(payerID, payeeID, amount)
	if err != nil {
		telemetry.TransfersTotal.WithLabelValues(telemetry.TransferOutcome(err)).Inc()
		return domain.TransferResult{Status: domain.TransferStatusFailure}, err
	}

	result, err := c.ledger.Transfer(ctx, req)
	telemetry.TransferDuration.Observe(time.Since(start).Seconds())
	telemetry.TransfersTotal.WithLabelValues(telemetry.TransferOutcome(err)).Inc()
	if err != nil {
		c.log.Warn("transfer rejected",
			zap.String("payer", req.PayerID),
			zap.String("payee", req.PayeeID),
			zap.Stringer("amount", req.Amount),
			zap.Error(err),
		)
		return result, err
	}

	c.log.Info("transfer committed",
		zap.Stringer("transfer_id", result.TransferID),
		zap.String("payer", req.PayerID),
		zap.String("payee", req.PayeeID),
		zap.Stringer("amount", result.Amount),
	)
	return result, nil
}
