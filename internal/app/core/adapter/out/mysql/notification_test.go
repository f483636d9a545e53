package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// newDryRunDB 不連線的 GORM，只產生 SQL
// 關掉預設交易，否則 Create 會先 BeginTx 連到資料庫
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "bank:bank@tcp(127.0.0.1:3306)/bank",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func sampleNotification() domain.Notification {
	return domain.Notification{
		TransferID: uuid.New(),
		Account:    domain.Account{ID: "Id-456", Balance: decimal.RequireFromString("150.50")},
		Message:    "Amount 50 received from account: Id-123",
		SentAt:     time.UnixMilli(1700000000000),
	}
}

func TestToRow(t *testing.T) {
	msg := sampleNotification()
	row := toRow(msg)

	assert.Equal(t, msg.TransferID[:], row.TransferID)
	assert.Equal(t, "Id-456", row.AccountID)
	assert.Equal(t, "150.5", row.Balance)
	assert.Equal(t, int64(1700000000000), row.SentAt)
}

func TestNotificationRepository_Insert(t *testing.T) {
	db := newDryRunDB(t)
	var captured string
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_sql", func(tx *gorm.DB) {
		captured = tx.Statement.SQL.String()
	}))
	repo := NewNotificationRepository(mysql.NewClientFromDB(db))

	require.NoError(t, repo.Notify(context.Background(), sampleNotification()))

	assert.Contains(t, captured, "INSERT INTO `transfer_notifications`")
	assert.Contains(t, captured, "`account_id`")
	assert.Contains(t, captured, "`transfer_id`")
}
