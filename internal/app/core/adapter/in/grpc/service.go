package grpc

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

const serviceName = "bank.AccountService"

// full method names
const (
	CreateAccountMethod = "/" + serviceName + "/CreateAccount"
	GetAccountMethod    = "/" + serviceName + "/GetAccount"
	TransferMethod      = "/" + serviceName + "/Transfer"
)

type CreateAccountRequest struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type GetAccountRequest struct {
	AccountID string `json:"account_id"`
}

type AccountReply struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type TransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type TransferReply struct {
	TransferID string          `json:"transfer_id"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
}

// AccountServiceServer bank.AccountService 的伺服器端介面
type AccountServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountReply, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountReply, error)
	Transfer(context.Context, *TransferRequest) (*TransferReply, error)
}

// RegisterAccountServiceServer 把 srv 註冊到 grpc.Server
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&accountServiceDesc, srv)
}

var accountServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: createAccountHandler},
		{MethodName: "GetAccount", Handler: getAccountHandler},
		{MethodName: "Transfer", Handler: transferHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bank/account_service",
}

func createAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountServiceServer).CreateAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateAccountMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccountServiceServer).CreateAccount(ctx, req.(*CreateAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountServiceServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAccountMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccountServiceServer).GetAccount(ctx, req.(*GetAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func transferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AccountServiceServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TransferMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AccountServiceServer).Transfer(ctx, req.(*TransferRequest))
	}
	return interceptor(ctx, in, info, handler)
}
