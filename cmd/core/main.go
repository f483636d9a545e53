package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/in/http"
	memory_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/adapter/out/notify"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/config"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
	"github.com/JoeShih716/go-mem-bank/pkg/logger"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 結束前 Sync，緩衝中的 log 才會寫出
	if err := run(cfg, zl); err != nil {
		zl.Error("server exited with error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	zl.Info("server exited")
	_ = zl.Sync()
}

func run(cfg config.Config, zl *zap.Logger) error {
	// 2. 初始化通知 sinks
	notifier, closeSinks, err := buildNotifier(cfg, zl)
	if err != nil {
		return err
	}
	defer closeSinks()

	// 3. 建立帳戶
	store := memory_adapter.NewAccountStore()

	// 4. 選擇 Ledger
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ledger usecase.Ledger
	var lmax *memory_adapter.LMAXLedger
	stopLMAX := func() {}
	switch cfg.Ledger.Type {
	case config.LedgerTypeMutex:
		ledger = memory_adapter.NewMutexLedger(store, notifier, zl.Named("ledger"),
			memory_adapter.WithLockTimeout(cfg.Ledger.LockTimeout))
	case config.LedgerTypeLMAX:
		lmax = memory_adapter.NewLMAXLedger(store, notifier, zl.Named("ledger"), cfg.Ledger.QueueSize)
		// 等 server 都停止後才停 ledger，避免處理中的請求拿到 ErrLedgerStopped
		ledgerCtx, stopLedger := context.WithCancel(context.Background())
		defer stopLedger()
		lmax.Start(ledgerCtx)
		stopLMAX = stopLedger
		ledger = lmax
	}
	zl.Info("ledger initialized", zap.String("type", string(cfg.Ledger.Type)))

	// 5. 初始化 UseCase
	core := usecase.NewCoreUseCase(store, ledger, zl.Named("core"))
	if err := seedAccounts(ctx, core, cfg.Accounts); err != nil {
		return err
	}

	// 6. 啟動 gRPC / HTTP / metrics
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.UnaryServerInterceptor(zl.Named("grpc"))))
	grpc_adapter.RegisterAccountServiceServer(grpcServer, grpc_adapter.NewGrpcServer(core, zl.Named("grpc")))

	gin.SetMode(cfg.Server.GinMode)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: http_adapter.NewRouter(http_adapter.NewHandler(core, zl.Named("http")), zl.Named("http")),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}

	serveErr := make(chan error, 3)
	go func() {
		zl.Info("starting gRPC server", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		zl.Info("starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		zl.Info("starting metrics server", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	// Graceful Shutdown
	var runErr error
	select {
	case <-ctx.Done():
		zl.Info("shutting down server...")
	case runErr = <-serveErr:
		zl.Error("server failed, shutting down", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zl.Warn("metrics shutdown", zap.Error(err))
	}
	stopLMAX()
	if lmax != nil {
		select {
		case <-lmax.Done():
		case <-shutdownCtx.Done():
			zl.Warn("ledger did not drain before shutdown timeout")
		}
	}
	return runErr
}

// buildNotifier 依設定組合通知 sinks，回傳的 close 會釋放所有連線與檔案
func buildNotifier(cfg config.Config, zl *zap.Logger) (usecase.Notifier, func(), error) {
	var sinks notify.Multi
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.HasSink(config.SinkLog) {
		sinks = append(sinks, notify.NewLogNotifier(zl))
	}
	if cfg.HasSink(config.SinkJournal) {
		var opts []journal.Option
		if cfg.Notifier.JournalSync {
			opts = append(opts, journal.WithSync())
		}
		j, err := journal.Open(cfg.Notifier.JournalPath, opts...)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		closers = append(closers, func() { _ = j.Close() })
		sinks = append(sinks, notify.NewJournalNotifier(j))
	}
	if cfg.HasSink(config.SinkMySQL) {
		client, err := mysql.NewClient(cfg.MySQL, zl.Named("mysql"))
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		repo := mysql_adapter.NewNotificationRepository(client)
		if err := repo.Migrate(context.Background()); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to migrate notifications table: %w", err)
		}
		sinks = append(sinks, repo)
	}
	if cfg.HasSink(config.SinkNATS) {
		conn, err := notify.ConnectNATS(cfg.NATS.URL, zl.Named("nats"))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = conn.Drain() })
		sinks = append(sinks, notify.NewNATSNotifier(conn, cfg.NATS.SubjectPrefix))
	}

	zl.Info("notifier initialized", zap.Strings("sinks", cfg.Notifier.Sinks))
	if len(sinks) == 1 {
		return sinks[0], closeAll, nil
	}
	return sinks, closeAll, nil
}

// seedAccounts 建立設定檔中的帳戶
func seedAccounts(ctx context.Context, core *usecase.CoreUseCase, accounts []config.SeedAccount) error {
	for _, a := range accounts {
		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			return fmt.Errorf("seed account %q: %w", a.ID, err)
		}
		if _, err := core.CreateAccount(ctx, a.ID, balance); err != nil {
			return fmt.Errorf("seed account %q: %w", a.ID, err)
		}
	}
	return nil
}
