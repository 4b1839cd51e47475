package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadConfig("")
	req.NoError(err)

	req.Equal("relay-go", cfg.AppName)
	req.Equal("8080", cfg.Server.Port)
	req.Equal("/ws", cfg.Server.WebSocketPath)
	req.Equal(100, cfg.History.MaxRecords)
	req.Equal(7*24*time.Hour, cfg.History.AttachmentMaxAge)
	req.Equal("@hourly", cfg.History.CleanupSpec)
	req.Equal(int64(20), cfg.Storage.MaxFileSizeMB)
	req.Equal("/static/uploads", cfg.Storage.UploadBaseURL)
	req.Equal(256, cfg.WebSocket.SendBufferSize)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	req := require.New(t)

	t.Setenv("HISTORY_MAX_RECORDS", "50")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig("")
	req.NoError(err)
	req.Equal(50, cfg.History.MaxRecords)
	req.Equal("9090", cfg.Server.Port)
}
