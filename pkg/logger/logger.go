package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New 建立 zap Logger
//
// 參數:
//
//	level: "debug", "info", "warn", "error"
//	development: true 時使用 console 格式
//
// 回傳:
//
//	*zap.Logger
//	error: level 無法解析或 zap 建立失敗
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
