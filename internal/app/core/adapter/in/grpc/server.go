package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/telemetry"
)

// AccountService server 需要的核心操作 (*usecase.CoreUseCase)
type AccountService interface {
	CreateAccount(ctx context.Context, accountID string, balance decimal.Decimal) (domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (domain.Account, error)
	Transfer(ctx context.Context, payerID, payeeID string, amount decimal.Decimal) (domain.TransferResult, error)
}

type GrpcServer struct {
	core AccountService
	log  *zap.Logger
}

func NewGrpcServer(core AccountService, log *zap.Logger) *GrpcServer {
	return &GrpcServer{
		core: core,
		log:  log,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*AccountReply, error) {
	account, err := s.core.CreateAccount(ctx, req.AccountID, req.Balance)
	if err != nil {
		return nil, toStatus(err)
	}
	return newAccountReply(account), nil
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountReply, error) {
	account, err := s.core.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return newAccountReply(account), nil
}

// Transfer 業務拒絕一律回傳 status error，client 用 status.Code 判斷
func (s *GrpcServer) Transfer(ctx context.Context, req *TransferRequest) (*TransferReply, error) {
	result, err := s.core.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TransferReply{
		TransferID: result.TransferID.String(),
		Status:     string(result.Status),
		Amount:     result.Amount,
	}, nil
}

func newAccountReply(a domain.Account) *AccountReply {
	return &AccountReply{
		AccountID: a.ID,
		Balance:   a.Balance,
	}
}

// toStatus 把 domain 錯誤對應到 gRPC status code
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrDuplicateAccount):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrAccountNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrLockTimeout):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

// UnaryServerInterceptor 紀錄每個 RPC 的結果
func UnaryServerInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		code := status.Code(err)
		telemetry.GRPCRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
		if code == codes.Internal || code == codes.Unknown {
			log.Error("rpc failed", zap.String("method", info.FullMethod), zap.Error(err))
		}
		return resp, err
	}
}

var _ AccountServiceServer = (*GrpcServer)(nil)
