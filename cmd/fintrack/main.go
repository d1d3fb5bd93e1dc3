package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"fintrack/internal/assistant"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/persist/memory"
	"fintrack/internal/persist/mongo"
	"fintrack/internal/relay"
	"fintrack/internal/session"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	// Local staging store, the adapter active before login.
	var local session.LocalAdapter
	switch cfg.DataBackend {
	case "sqlite":
		local = cli.InitSQLite(logger, cfg.SQLiteDBPath)
	default:
		local = memory.New()
	}
	logger.Info("Initialized local backend", "backend", cfg.DataBackend)

	// Optional event relay. The engine runs fine without it.
	var pub finance.Publisher
	var relayClient *relay.Client
	if cfg.AMQPURL != "" {
		c, err := relay.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Event relay unavailable, continuing without it", "error", err)
		} else {
			relayClient = c
			pub = c
			logger.Info("Connected event relay", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	store := finance.NewStore(local, pub)
	if err := store.Start(context.Background()); err != nil {
		logger.Error("Failed to load local state", "error", err)
		os.Exit(1)
	}

	factory := func(ctx context.Context, ident core.Identity) (session.RemoteAdapter, error) {
		if cfg.MongoURI == "" {
			return memory.NewRemote(), nil
		}
		return mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase, ident.UID)
	}
	sessions := session.NewManager(store, local, session.IdentityTokenAuthenticator{}, factory)
	sessions.SetMigrationConcurrency(cfg.MigrationConcurrency)

	var chat *assistant.Client
	if cfg.OpenAIAPIKey != "" {
		chat = assistant.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		logger.Info("Assistant enabled")
	}

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	srv := apphttp.NewServer(":"+cfg.Port, store, sessions, chat, httpLogger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := store.Close(shutdownCtx); err != nil {
			logger.Error("Store close error", "error", err)
		}
		if err := local.Close(shutdownCtx); err != nil {
			logger.Error("Local store close error", "error", err)
		}
		if relayClient != nil {
			if err := relayClient.Close(); err != nil {
				logger.Error("Relay close error", "error", err)
			}
		}
	})

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
