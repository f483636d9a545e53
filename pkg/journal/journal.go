// Package journal 以 JSON Lines 格式追加寫入檔案
package journal

import (
	"encoding/json"
	"io/fs"
	"os"
	"sync"
)

// FileModeReadOnly rw-r--r--
const FileModeReadOnly fs.FileMode = 0644

// Journal 追加寫入的 JSON Lines 檔案
type Journal struct {
	file *os.File
	mu   sync.Mutex
	// 每筆寫入後 fsync
	syncEachWrite bool
}

// Option Journal 的設定選項
type Option func(*Journal)

// WithSync 每筆寫入後呼叫 fsync
func WithSync() Option {
	return func(j *Journal) {
		j.syncEachWrite = true
	}
}

// Open 開啟或建立 journal 檔案
// O_APPEND 每次寫入時自動跳到檔案末尾
func Open(path string, opts ...Option) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	j := &Journal{file: file}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Append 寫入一筆資料 (一行 JSON)
func (j *Journal) Append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := json.NewEncoder(j.file).Encode(v); err != nil {
		return err
	}
	if j.syncEachWrite {
		return j.file.Sync()
	}
	return nil
}

// Close 關閉檔案
func (j *Journal) Close() error {
	return j.file.Close()
}
