// Package keylock 提供以字串 key 為單位的互斥鎖
//
// 每個 key 的鎖在第一次使用時建立，沒有任何持有者或等待者時移除，
// 所以 registry 的大小只跟「目前正在使用的 key」有關。
// 等待鎖的過程可以被 context 取消。
package keylock

import (
	"context"
	"sync"
)

// entry 單一 key 的鎖
//
//	token: 容量為 1 的 channel，放得進去代表取得鎖
//	refs: 持有者 + 等待者數量，由 Registry.mu 保護
type entry struct {
	token chan struct{}
	refs  int
}

// Registry key -> 鎖 的對照表
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New 建立一個空的 Registry
func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Lock 取得 key 的互斥鎖，直到取得或 ctx 結束
//
// 參數:
//
//	ctx: 上下文 (逾時或取消會放棄等待)
//	key: 鎖的 key
//
// 回傳:
//
//	func(): 解鎖函式，重複呼叫只會生效一次
//	error: ctx.Err()
func (r *Registry) Lock(ctx context.Context, key string) (func(), error) {
	e := r.ref(key)

	// 已經取消的 ctx 不搶鎖
	if err := ctx.Err(); err != nil {
		r.unref(key, e)
		return nil, err
	}

	select {
	case e.token <- struct{}{}:
		return sync.OnceFunc(func() {
			<-e.token
			r.unref(key, e)
		}), nil
	case <-ctx.Done():
		r.unref(key, e)
		return nil, ctx.Err()
	}
}

// Len 目前被持有或等待中的 key 數量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) ref(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{token: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	return e
}

func (r *Registry) unref(key string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
}
