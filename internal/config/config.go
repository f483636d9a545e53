// Package config 載入服務設定 (yaml)
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

// LedgerType 使用哪種 Ledger
type LedgerType string

const (
	// LedgerTypeMutex 每個帳戶一把鎖
	LedgerTypeMutex LedgerType = "mutex"
	// LedgerTypeLMAX 單一 writer goroutine
	LedgerTypeLMAX LedgerType = "lmax"
)

// Notification sinks
const (
	SinkLog     = "log"
	SinkJournal = "journal"
	SinkMySQL   = "mysql"
	SinkNATS    = "nats"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Notifier NotifierConfig `yaml:"notifier"`
	MySQL    mysql.Config   `yaml:"mysql"`
	NATS     NATSConfig     `yaml:"nats"`
	Log      LogConfig      `yaml:"log"`
	// Accounts 啟動時建立的帳戶 (只存在於記憶體)
	Accounts []SeedAccount `yaml:"accounts"`
}

type ServerConfig struct {
	GRPCAddr        string        `yaml:"grpc_addr"`
	HTTPAddr        string        `yaml:"http_addr"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	GinMode         string        `yaml:"gin_mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LedgerConfig struct {
	Type LedgerType `yaml:"type"`
	// LockTimeout 等待單一帳戶鎖的上限 (mutex)，0 表示不限
	LockTimeout time.Duration `yaml:"lock_timeout"`
	// QueueSize 輸送帶容量 (lmax)
	QueueSize int `yaml:"queue_size"`
}

type NotifierConfig struct {
	Sinks       []string `yaml:"sinks"`
	JournalPath string   `yaml:"journal_path"`
	JournalSync bool     `yaml:"journal_sync"`
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type SeedAccount struct {
	ID      string `yaml:"id"`
	Balance string `yaml:"balance"`
}

// Load 讀取 yaml 設定檔並補全預設值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 yaml 並補全預設值
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":50051"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = ":9090"
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Ledger.Type == "" {
		c.Ledger.Type = LedgerTypeMutex
	}
	if c.Ledger.QueueSize == 0 {
		c.Ledger.QueueSize = 1000
	}
	if len(c.Notifier.Sinks) == 0 {
		c.Notifier.Sinks = []string{SinkLog}
	}
	if c.Notifier.JournalPath == "" {
		c.Notifier.JournalPath = "notifications.log"
	}
	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	// MySQL 只有在 sink 用到時才連線，預設值照補
	c.MySQL.SetDefaults()
}

func (c *Config) validate() error {
	switch c.Ledger.Type {
	case LedgerTypeMutex, LedgerTypeLMAX:
	default:
		return fmt.Errorf("invalid ledger type: %q", c.Ledger.Type)
	}
	for _, sink := range c.Notifier.Sinks {
		switch sink {
		case SinkLog, SinkJournal, SinkMySQL, SinkNATS:
		default:
			return fmt.Errorf("invalid notifier sink: %q", sink)
		}
	}
	for _, a := range c.Accounts {
		if _, err := decimal.NewFromString(a.Balance); err != nil {
			return fmt.Errorf("invalid balance for seed account %q: %w", a.ID, err)
		}
	}
	return nil
}

// HasSink 是否啟用指定的通知 sink
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Notifier.Sinks {
		if s == name {
			return true
		}
	}
	return false
}
