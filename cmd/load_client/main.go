package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-mem-bank/pkg/logger"
	grpc_pool "github.com/JoeShih716/go-mem-bank/pkg/grpc"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	accounts := flag.Int("accounts", 10, "number of accounts to create")
	totalCount := flag.Int("transfers", 100000, "number of transfers")
	concurrency := flag.Int("concurrency", 200, "concurrent in-flight transfers")
	timeout := flag.Duration("timeout", 120*time.Second, "overall timeout")
	flag.Parse()
	if *accounts < 2 {
		log.Fatalf("need at least 2 accounts, got %d", *accounts)
	}

	zl, err := logger.New("info", true)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	pool := grpc_pool.NewPool(
		grpc_pool.WithLogger(zl),
		grpc_pool.WithCallOptions(grpc.CallContentSubtype(grpc_adapter.CodecName)),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(*addr)
	if err != nil {
		zl.Fatal("did not connect", zap.Error(err))
	}
	c := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// 每次執行用新的帳號，避免跟上一輪衝突
	ids := make([]string, *accounts)
	initial := decimal.NewFromInt(1000)
	prefix := uuid.NewString()[:8]
	for i := range ids {
		ids[i] = fmt.Sprintf("load-%s-%d", prefix, i)
		if _, err := c.CreateAccount(ctx, &grpc_adapter.CreateAccountRequest{AccountID: ids[i], Balance: initial}); err != nil {
			zl.Fatal("create account failed", zap.String("account_id", ids[i]), zap.Error(err))
		}
	}

	var committed, insufficient, failed atomic.Int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *totalCount; i++ {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// 隨機方向，刻意讓同一對帳戶的轉帳互相交錯
			from := rand.IntN(len(ids))
			to := (from + 1 + rand.IntN(len(ids)-1)) % len(ids)
			_, err := c.Transfer(ctx, &grpc_adapter.TransferRequest{
				FromAccountID: ids[from],
				ToAccountID:   ids[to],
				Amount:        decimal.NewFromInt(int64(1 + rand.IntN(50))),
			})

			switch status.Code(err) {
			case codes.OK:
				committed.Add(1)
			case codes.FailedPrecondition:
				insufficient.Add(1)
			default:
				failed.Add(1)
				if idx%10000 == 0 {
					zl.Warn("transfer failed", zap.Int("idx", idx), zap.Error(err))
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	// 餘額總和必須不變
	total := decimal.Zero
	for _, id := range ids {
		reply, err := c.GetAccount(ctx, &grpc_adapter.GetAccountRequest{AccountID: id})
		if err != nil {
			zl.Fatal("get account failed", zap.String("account_id", id), zap.Error(err))
		}
		if reply.Balance.IsNegative() {
			zl.Error("negative balance", zap.String("account_id", id), zap.Stringer("balance", reply.Balance))
		}
		total = total.Add(reply.Balance)
	}
	expected := initial.Mul(decimal.NewFromInt(int64(len(ids))))

	fmt.Printf("Completed %d requests in %v\n", *totalCount, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*totalCount)/elapsed.Seconds())
	fmt.Printf("committed=%d insufficient=%d failed=%d\n", committed.Load(), insufficient.Load(), failed.Load())
	if !total.Equal(expected) {
		zl.Fatal("balance not conserved", zap.Stringer("expected", expected), zap.Stringer("actual", total))
	}
	fmt.Printf("Balance conserved: %s\n", total)
}
