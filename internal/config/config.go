package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the relay server.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName    string          `mapstructure:"APP_NAME"`
	AppVersion string          `mapstructure:"APP_VERSION"`
	LogLevel   string          `mapstructure:"LOG_LEVEL"`
	Server     ServerConfig    `mapstructure:"SERVER"`
	Storage    StorageConfig   `mapstructure:"STORAGE"`
	History    HistoryConfig   `mapstructure:"HISTORY"`
	WebSocket  WebSocketConfig `mapstructure:"WEBSOCKET"`
	CORS       CORSConfig      `mapstructure:"CORS"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           string        `mapstructure:"PORT"`
	WebSocketPath  string        `mapstructure:"WEBSOCKET_PATH"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"MAX_HEADER_BYTES"`
}

// StorageConfig holds configuration for the binary content store.
type StorageConfig struct {
	UploadPath    string `mapstructure:"UPLOAD_PATH"`
	UploadBaseURL string `mapstructure:"UPLOAD_BASE_URL"`
	MaxFileSizeMB int64  `mapstructure:"MAX_FILE_SIZE_MB"`
}

// HistoryConfig holds configuration for the durable message store and its
// maintenance pass.
type HistoryConfig struct {
	MessagePath      string        `mapstructure:"MESSAGE_PATH"`
	MaxRecords       int           `mapstructure:"MAX_RECORDS"`
	AttachmentMaxAge time.Duration `mapstructure:"ATTACHMENT_MAX_AGE"`
	CleanupSpec      string        `mapstructure:"CLEANUP_SPEC"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// WebSocketConfig holds configuration for WebSocket connections.
type WebSocketConfig struct {
	WriteWaitSeconds    int `mapstructure:"WRITE_WAIT_SECONDS"`
	PongWaitSeconds     int `mapstructure:"PONG_WAIT_SECONDS"`
	PingPeriodSeconds   int `mapstructure:"PING_PERIOD_SECONDS"`
	MaxMessageSizeBytes int `mapstructure:"MAX_MESSAGE_SIZE_BYTES"`
	SendBufferSize      int `mapstructure:"SEND_BUFFER_SIZE"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "relay-go")
	v.SetDefault("APP_VERSION", "0.0.1")
	v.SetDefault("LOG_LEVEL", "info")

	// Server Defaults
	v.SetDefault("SERVER.HOST", "0.0.0.0")
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.WEBSOCKET_PATH", "/ws")
	v.SetDefault("SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB

	// Storage Defaults
	v.SetDefault("STORAGE.UPLOAD_PATH", "./static/uploads")
	v.SetDefault("STORAGE.UPLOAD_BASE_URL", "/static/uploads")
	v.SetDefault("STORAGE.MAX_FILE_SIZE_MB", 20)

	// History Defaults
	v.SetDefault("HISTORY.MESSAGE_PATH", "./messages")
	v.SetDefault("HISTORY.MAX_RECORDS", 100)
	v.SetDefault("HISTORY.ATTACHMENT_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("HISTORY.CLEANUP_SPEC", "@hourly")

	// CORS Defaults
	v.SetDefault("CORS.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("CORS.ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("CORS.ALLOWED_HEADERS", []string{"Accept", "Content-Type"})
	v.SetDefault("CORS.ALLOW_CREDENTIALS", false)
	v.SetDefault("CORS.MAX_AGE", 300) // 5 minutes

	// WebSocket Defaults
	v.SetDefault("WEBSOCKET.WRITE_WAIT_SECONDS", 10)
	v.SetDefault("WEBSOCKET.PONG_WAIT_SECONDS", 60)
	v.SetDefault("WEBSOCKET.PING_PERIOD_SECONDS", 54) // (60 * 9) / 10
	v.SetDefault("WEBSOCKET.MAX_MESSAGE_SIZE_BYTES", 4096)
	v.SetDefault("WEBSOCKET.SEND_BUFFER_SIZE", 256)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	// Nested keys map to underscored env vars: HISTORY.MAX_RECORDS -> HISTORY_MAX_RECORDS.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Config file not found; defaults plus env vars are enough.
	}

	err = v.Unmarshal(&config)
	return
}
