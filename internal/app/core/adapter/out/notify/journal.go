package notify

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
)

// JournalNotifier 把通知追加到 JSON Lines 檔案
// 檔案只是通知紀錄，不會被讀回帳戶餘額
type JournalNotifier struct {
	journal *journal.Journal
}

func NewJournalNotifier(j *journal.Journal) *JournalNotifier {
	return &JournalNotifier{journal: j}
}

func (n *JournalNotifier) Notify(_ context.Context, msg domain.Notification) error {
	if err := n.journal.Append(NewRecord(msg)); err != nil {
		return fmt.Errorf("append notification journal: %w", err)
	}
	return nil
}

var _ usecase.Notifier = (*JournalNotifier)(nil)
