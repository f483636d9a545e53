package mysql

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// sqlNotification 對應資料庫的 transfer_notifications 表
type sqlNotification struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TransferID []byte `gorm:"column:transfer_id;type:binary(16);index"` // 對應 domain.Notification.TransferID
	AccountID  string `gorm:"column:account_id;size:191;index"`
	Balance    string `gorm:"column:balance;type:decimal(38,10)"`
	Message    string `gorm:"column:message;size:512"`
	SentAt     int64  `gorm:"column:sent_at"` // unix milli
	CreatedAt  int64  `gorm:"autoCreateTime:milli"`
}

func (*sqlNotification) TableName() string {
	return "transfer_notifications"
}

// NotificationRepository 把通知寫入 MySQL
// 只是通知紀錄，帳戶餘額不會從這裡載入
type NotificationRepository struct {
	client *mysql.Client
}

func NewNotificationRepository(client *mysql.Client) *NotificationRepository {
	return &NotificationRepository{
		client: client,
	}
}

// Migrate 建立或更新資料表
func (r *NotificationRepository) Migrate(ctx context.Context) error {
	return r.client.DB().WithContext(ctx).AutoMigrate(&sqlNotification{})
}

// Notify 寫入一筆通知
func (r *NotificationRepository) Notify(ctx context.Context, msg domain.Notification) error {
	row := toRow(msg)
	if err := r.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func toRow(msg domain.Notification) sqlNotification {
	return sqlNotification{
		TransferID: msg.TransferID[:],
		AccountID:  msg.Account.ID,
		Balance:    msg.Account.Balance.String(),
		Message:    msg.Message,
		SentAt:     msg.SentAt.UnixMilli(),
	}
}

var _ usecase.Notifier = (*NotificationRepository)(nil)
