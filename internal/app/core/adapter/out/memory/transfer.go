package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/telemetry"
)

// settlement 一筆已提交轉帳的結果與雙方快照，用來在鎖外送通知
type settlement struct {
	result domain.TransferResult
	payer  domain.Account
	payee  domain.Account
}

// applyTransfer 查詢雙方帳戶、檢查餘額、更新餘額
// 呼叫端必須已持有雙方帳戶的鎖 (或在單一 writer goroutine 中)
//
// 回傳:
//
//	settlement: 提交後的結果
//	error: ErrAccountNotFound, ErrInsufficientFunds，發生錯誤時沒有任何帳戶被修改
func applyTransfer(store usecase.AccountStore, req domain.TransferRequest) (settlement, error) {
	payer, err := store.Get(req.PayerID)
	if err != nil {
		return settlement{}, err
	}
	payee, err := store.Get(req.PayeeID)
	if err != nil {
		return settlement{}, err
	}

	if !payer.Covers(req.Amount) {
		return settlement{}, domain.NewAccountError(payer.ID, domain.ErrInsufficientFunds)
	}
	payer.Balance = payer.Balance.Sub(req.Amount)
	payee.Balance = payee.Balance.Add(req.Amount)

	return settlement{
		result: domain.TransferResult{
			TransferID: newTransferID(),
			Status:     domain.TransferStatusSuccess,
			Amount:     req.Amount,
		},
		payer: payer.Snapshot(),
		payee: payee.Snapshot(),
	}, nil
}

// newTransferID 產生時間有序的 UUID v7，失敗時退回 v4
func newTransferID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// failure 失敗結果
func failure(req domain.TransferRequest) domain.TransferResult {
	return domain.TransferResult{Status: domain.TransferStatusFailure, Amount: req.Amount}
}

// notifier 包裝 usecase.Notifier，吞掉錯誤與 panic
type notifier struct {
	next usecase.Notifier
	log  *zap.Logger
}

// settle 送出付款方與收款方通知，任何失敗只記錄不回傳
func (n notifier) settle(ctx context.Context, s settlement) {
	if n.next == nil {
		return
	}
	// 轉帳已提交，呼叫端取消 ctx 不應該影響通知
	ctx = context.WithoutCancel(ctx)
	for _, msg := range domain.TransferNotifications(s.result.TransferID, s.payer, s.payee, s.result.Amount, time.Now()) {
		n.deliver(ctx, msg)
	}
}

func (n notifier) deliver(ctx context.Context, msg domain.Notification) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.NotificationFailures.WithLabelValues("panic").Inc()
			n.log.Error("notifier panicked",
				zap.Stringer("transfer_id", msg.TransferID),
				zap.String("account_id", msg.Account.ID),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	if err := n.next.Notify(ctx, msg); err != nil {
		telemetry.NotificationFailures.WithLabelValues("error").Inc()
		n.log.Warn("notification failed",
			zap.Stringer("transfer_id", msg.TransferID),
			zap.String("account_id", msg.Account.ID),
			zap.Error(err),
		)
	}
}
