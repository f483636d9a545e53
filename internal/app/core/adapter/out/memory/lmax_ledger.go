package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/telemetry"
)

// ErrLedgerStopped 核心引擎已停止，不再接收請求
var ErrLedgerStopped = errors.New("ledger stopped")

// ledgerRequest 請求包裝channel，讓呼叫端可以等待結果
// transfer 和 accountID 只會有一個有值
type ledgerRequest struct {
	transfer  *domain.TransferRequest
	accountID string
	Result    chan ledgerResponse
}

type ledgerResponse struct {
	settlement settlement
	account    domain.Account
	err        error
}

// LMAXLedger 單一 writer 的帳本
//
// 所有轉帳與查詢都由 run loop 依序處理，帳戶狀態不需要任何鎖
type LMAXLedger struct {
	store    usecase.AccountStore
	notifier notifier
	log      *zap.Logger
	// 輸送帶 負責接收請求
	requestChan chan *ledgerRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool
	// stopped 之後不再接收新請求；inflight 追蹤已進入 submit 的請求
	mu       sync.RWMutex
	stopped  bool
	inflight sync.WaitGroup
	// done 在 run loop 結束後關閉
	done chan struct{}
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 才會開始處理
//
// 參數:
//
//	store: 帳戶儲存
//	n: 通知 (可為 nil)
//	log: logger
//	queueSize: 輸送帶容量
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(store usecase.AccountStore, n usecase.Notifier, log *zap.Logger, queueSize int) *LMAXLedger {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &LMAXLedger{
		store:       store,
		notifier:    notifier{next: n, log: log},
		log:         log,
		requestChan: make(chan *ledgerRequest, queueSize),
		requestPool: sync.Pool{
			New: func() any {
				return &ledgerRequest{
					Result: make(chan ledgerResponse, 1),
				}
			},
		},
		done: make(chan struct{}),
	}
}

// Start 啟動核心引擎 (非同步)，ctx 結束後處理完剩下的請求並停止
// 在 Start 之前送出的請求會留在輸送帶上等待
func (l *LMAXLedger) Start(ctx context.Context) {
	go l.run(ctx)
}

// Done 核心引擎停止後關閉
func (l *LMAXLedger) Done() <-chan struct{} {
	return l.done
}

// Transfer 把轉帳放上輸送帶並等待結果，通知在呼叫端的 goroutine 送出
//
// 放入輸送帶前會看 ctx；一旦放入就一定等到結果，避免回報失敗但實際已提交
//
// PostTransfer -> Channel -> Run Loop (核心) -> Map Update -> Result Channel -> 通知
func (l *LMAXLedger) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return failure(req), err
	}

	resp, err := l.submit(ctx, &ledgerRequest{transfer: &req})
	if err != nil {
		return failure(req), err
	}
	if resp.err != nil {
		return failure(req), resp.err
	}

	l.notifier.settle(ctx, resp.settlement)
	return resp.settlement.result, nil
}

// Account 透過 run loop 取得帳戶快照
func (l *LMAXLedger) Account(ctx context.Context, accountID string) (domain.Account, error) {
	resp, err := l.submit(ctx, &ledgerRequest{accountID: accountID})
	if err != nil {
		return domain.Account{}, err
	}
	return resp.account, resp.err
}

func (l *LMAXLedger) submit(ctx context.Context, in *ledgerRequest) (ledgerResponse, error) {
	// select 在兩邊都可用時隨機挑選，已結束的 ctx 先擋下
	if err := ctx.Err(); err != nil {
		return ledgerResponse{}, domain.LockWaitError(in.lockHint(), err)
	}
	l.mu.RLock()
	if l.stopped {
		l.mu.RUnlock()
		return ledgerResponse{}, ErrLedgerStopped
	}
	l.inflight.Add(1)
	l.mu.RUnlock()
	defer l.inflight.Done()

	// 使用 sync.Pool 減少 GC
	req := l.requestPool.Get().(*ledgerRequest)
	req.transfer = in.transfer
	req.accountID = in.accountID

	telemetry.LedgerQueueDepth.Inc()
	select {
	case l.requestChan <- req:
	case <-ctx.Done():
		telemetry.LedgerQueueDepth.Dec()
		l.requestPool.Put(req)
		return ledgerResponse{}, domain.LockWaitError(in.lockHint(), ctx.Err())
	}

	resp := <-req.Result
	req.transfer = nil
	req.accountID = ""
	l.requestPool.Put(req)
	return resp, nil
}

// lockHint 逾時錯誤要帶的帳號
func (r *ledgerRequest) lockHint() string {
	if r.transfer != nil {
		first, _ := r.transfer.LockIDs()
		return first
	}
	return r.accountID
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case req := <-l.requestChan:
			l.process(req)
		}
	}
}

// shutdown 停止接收新請求，並把已進入 submit 的請求處理完
func (l *LMAXLedger) shutdown() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(idle)
	}()

	for {
		select {
		case req := <-l.requestChan:
			l.process(req)
		case <-idle:
			return
		}
	}
}

// process 處理單筆請求並回傳結果
func (l *LMAXLedger) process(req *ledgerRequest) {
	telemetry.LedgerQueueDepth.Dec()
	if req.transfer == nil {
		account, err := l.store.Get(req.accountID)
		if err != nil {
			req.Result <- ledgerResponse{err: err}
			return
		}
		req.Result <- ledgerResponse{account: account.Snapshot()}
		return
	}

	s, err := applyTransfer(l.store, *req.transfer)
	req.Result <- ledgerResponse{settlement: s, err: err}
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
