package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// LogNotifier 把通知寫成 log
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notification")}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.log.Info(msg.Message,
		zap.Stringer("transfer_id", msg.TransferID),
		zap.String("account_id", msg.Account.ID),
		zap.Stringer("balance", msg.Account.Balance),
	)
	return nil
}

var _ usecase.Notifier = (*LogNotifier)(nil)
