package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewAccountStore()
	core := usecase.NewCoreUseCase(store, memory.NewMutexLedger(store, nil, log), log)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(UnaryServerInterceptor(log)))
	RegisterAccountServiceServer(s, NewGrpcServer(core, log))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestGrpcServer_CreateAndGet(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	created, err := c.CreateAccount(ctx, &CreateAccountRequest{AccountID: " Id-123 ", Balance: decimal.RequireFromString("200.50")})
	require.NoError(t, err)
	assert.Equal(t, "Id-123", created.AccountID)

	got, err := c.GetAccount(ctx, &GetAccountRequest{AccountID: "Id-123"})
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("200.5")))

	_, err = c.CreateAccount(ctx, &CreateAccountRequest{AccountID: "Id-123", Balance: decimal.NewFromInt(1)})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.GetAccount(ctx, &GetAccountRequest{AccountID: "Id-404"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGrpcServer_Transfer(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()
	_, err := c.CreateAccount(ctx, &CreateAccountRequest{AccountID: "A", Balance: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = c.CreateAccount(ctx, &CreateAccountRequest{AccountID: "B", Balance: decimal.Zero})
	require.NoError(t, err)

	reply, err := c.Transfer(ctx, &TransferRequest{FromAccountID: "A", ToAccountID: "B", Amount: decimal.RequireFromString("40.25")})
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", reply.Status)
	assert.NotEmpty(t, reply.TransferID)
	assert.True(t, reply.Amount.Equal(decimal.RequireFromString("40.25")))

	b, err := c.GetAccount(ctx, &GetAccountRequest{AccountID: "B"})
	require.NoError(t, err)
	assert.True(t, b.Balance.Equal(decimal.RequireFromString("40.25")))
}

func TestGrpcServer_TransferErrorCodes(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()
	_, err := c.CreateAccount(ctx, &CreateAccountRequest{AccountID: "A", Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = c.CreateAccount(ctx, &CreateAccountRequest{AccountID: "B", Balance: decimal.Zero})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *TransferRequest
		want codes.Code
	}{
		{"same account", &TransferRequest{FromAccountID: "A", ToAccountID: "A", Amount: decimal.NewFromInt(1)}, codes.InvalidArgument},
		{"zero amount", &TransferRequest{FromAccountID: "A", ToAccountID: "B", Amount: decimal.Zero}, codes.InvalidArgument},
		{"unknown payee", &TransferRequest{FromAccountID: "A", ToAccountID: "C", Amount: decimal.NewFromInt(1)}, codes.NotFound},
		{"insufficient funds", &TransferRequest{FromAccountID: "B", ToAccountID: "A", Amount: decimal.NewFromInt(1)}, codes.FailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Transfer(ctx, tt.req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}
