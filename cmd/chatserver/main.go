package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"relay-go/internal/config"
	chathandlers "relay-go/internal/handlers/chatserver"
	"relay-go/internal/history"
	"relay-go/internal/presence"
	"relay-go/internal/relay"
	"relay-go/internal/scheduler"
	"relay-go/internal/storage"
	ws "relay-go/internal/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitLogger(cfg.LogLevel)
	defer zap.S().Sync()
	zap.S().Infow("configuration loaded", "app", cfg.AppName, "version", cfg.AppVersion)

	// Durable record store and binary content store.
	store, err := history.NewStore(cfg.History.MessagePath, cfg.History.MaxRecords)
	if err != nil {
		zap.S().Fatalw("failed to initialize record store", "error", err)
	}
	contentStore, err := storage.NewLocalContentStore(cfg.Storage)
	if err != nil {
		zap.S().Fatalw("failed to initialize content store", "error", err)
	}

	// Presence, transport hub and the broadcast router.
	registry := presence.NewRegistry()
	hub := ws.NewHub()
	go hub.Run()
	router := relay.NewRouter(store, registry, hub)

	// Maintenance: run once at startup, then on the cron spec.
	maint := scheduler.NewScheduler(store, contentStore, cfg.History.AttachmentMaxAge, cfg.History.CleanupSpec)
	maint.Start()
	defer maint.Stop()

	// Handlers and routes.
	wsHandler := chathandlers.NewWebSocketHandler(hub, router, cfg)
	joinHandler := chathandlers.NewJoinHandler()
	uploadHandler := chathandlers.NewUploadHandler(contentStore, cfg.Storage)

	r := mux.NewRouter()
	r.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWS)
	r.HandleFunc("/join", joinHandler.JoinRoomHandler).Methods(http.MethodGet)
	r.HandleFunc("/upload", uploadHandler.UploadFileHandler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", chathandlers.HealthCheckHandler).Methods(http.MethodGet)

	staticPath := cfg.Storage.UploadBaseURL + "/"
	r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.Dir(cfg.Storage.UploadPath))))

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.CORS.AllowedHeaders),
		handlers.MaxAge(cfg.CORS.MaxAge),
	}
	if cfg.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	handler := handlers.CORS(corsOptions...)(r)
	handler = handlers.LoggingHandler(os.Stdout, handler)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		IdleTimeout:    60 * time.Second,
	}

	go func() {
		zap.S().Infow("relay server listening", "addr", serverAddr, "wsPath", cfg.Server.WebSocketPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutdown signal received")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zap.S().Fatalw("forced shutdown", "error", err)
	}
	zap.S().Info("relay server stopped")
}
