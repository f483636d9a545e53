package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
)

func sample() domain.Notification {
	return domain.Notification{
		TransferID: uuid.MustParse("0190b7a0-0000-7000-8000-000000000001"),
		Account:    domain.Account{ID: "Id-123", Balance: decimal.RequireFromString("150.50")},
		Message:    "Successfully transferred 50 to account: Id-456",
		SentAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), sample()))

	entries := logs.FilterMessage(sample().Message).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Id-123", fields["account_id"])
	assert.Equal(t, "150.5", fields["balance"])
}

func TestJournalNotifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.log")
	j, err := journal.Open(path)
	require.NoError(t, err)

	n := NewJournalNotifier(j)
	require.NoError(t, n.Notify(context.Background(), sample()))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Record
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		var r Record
		require.NoError(t, json.Unmarshal(line, &r))
		got = append(got, r)
	}
	require.Len(t, got, 1)
	want := NewRecord(sample())
	assert.Equal(t, want.TransferID, got[0].TransferID)
	assert.Equal(t, want.AccountID, got[0].AccountID)
	assert.Equal(t, want.Balance, got[0].Balance)
	assert.Equal(t, want.Message, got[0].Message)
	assert.True(t, want.SentAt.Equal(got[0].SentAt))
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subject = subject
	p.data = data
	return p.err
}

func TestNATSNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewNATSNotifier(pub, "")

	require.NoError(t, n.Notify(context.Background(), sample()))
	assert.Equal(t, "bank.notifications.Id-123", pub.subject)

	var r Record
	require.NoError(t, json.Unmarshal(pub.data, &r))
	assert.Equal(t, "0190b7a0-0000-7000-8000-000000000001", r.TransferID)
	assert.Equal(t, "150.5", r.Balance)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	n := NewNATSNotifier(pub, "custom")

	err := n.Notify(context.Background(), sample())
	require.Error(t, err)
	assert.Equal(t, "custom.Id-123", pub.subject)
}

type failing struct{ err error }

func (f failing) Notify(context.Context, domain.Notification) error { return f.err }

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	errA := errors.New("a down")
	pub := &fakePublisher{}
	m := Multi{failing{errA}, NewNATSNotifier(pub, "")}

	err := m.Notify(context.Background(), sample())
	require.ErrorIs(t, err, errA)
	// 第一個失敗，第二個仍然收到
	assert.Equal(t, "bank.notifications.Id-123", pub.subject)

	assert.NoError(t, Multi{}.Notify(context.Background(), sample()))
}
