package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3307, User: "bank", Password: "secret", DBName: "notifications"}
	assert.Equal(t, "bank:secret@tcp(db:3307)/notifications?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{MaxOpenConns: 5}
	cfg.SetDefaults()

	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 5, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 10, cfg.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.ConnectRetryDelay)
}
