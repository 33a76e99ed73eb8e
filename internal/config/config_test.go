package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()
	req.NoError(err)
	req.Equal("release", cfg.Mode)
	req.Equal(3000, cfg.Port)
	req.Equal("127.0.0.1:6379", cfg.RedisAddr)
	req.Equal("chat:history:", cfg.HistoryPrefix)
	req.Equal(32, cfg.SendBuffer)
	req.Equal(5*time.Second, cfg.WriteTimeout)
	req.Equal(5, cfg.TypingLimit)
	req.Equal(2*time.Second, cfg.TypingInterval)
}
