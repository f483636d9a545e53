package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// DefaultSubjectPrefix 通知的 subject 前綴，完整 subject 為 <prefix>.<account id>
const DefaultSubjectPrefix = "bank.notifications"

// Publisher nats.Conn 中 NATSNotifier 用到的部分
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier 把通知發佈到 NATS (fire and forget)
type NATSNotifier struct {
	pub    Publisher
	prefix string
}

func NewNATSNotifier(pub Publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// Subject 帳戶的通知 subject
func (n *NATSNotifier) Subject(accountID string) string {
	return n.prefix + "." + accountID
}

func (n *NATSNotifier) Notify(_ context.Context, msg domain.Notification) error {
	data, err := json.Marshal(NewRecord(msg))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.pub.Publish(n.Subject(msg.Account.ID), data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// ConnectNATS 建立 NATS 連線
func ConnectNATS(url string, log *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("go-mem-bank"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

var (
	_ usecase.Notifier = (*NATSNotifier)(nil)
	_ Publisher        = (*nats.Conn)(nil)
)
