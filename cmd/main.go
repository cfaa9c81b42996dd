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

	"chat-relay/api"
	"chat-relay/auth"
	"chat-relay/bridge"
	"chat-relay/observability"
	"chat-relay/realtime"
	"chat-relay/registry"
	"chat-relay/repositories"
	"chat-relay/rooms"
	"chat-relay/routing"
	"chat-relay/runtime/workers"
	"chat-relay/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (like the database close) runs
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	auth.SetSigningKey(config.TokenSigningKey)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core wiring
	connectionRegistry := registry.NewConnectionRegistry(log)
	roomManager := rooms.NewRoomManager(log)
	messageRouter := routing.NewMessageRouter(connectionRegistry, roomManager, log)
	inbox := repositories.NewInboxRepository(db, log, config.InboxTTL)
	metrics := observability.NewMetrics()
	relay := services.NewRelayService(messageRouter, connectionRegistry, roomManager, inbox, metrics, log)
	notificationBridge := bridge.NewNotificationBridge(config.NotifySharedSecret, messageRouter, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewStatsReporter(connectionRegistry, roomManager, metrics, config.StatsInterval, log),
		workers.NewStorageGC(db, config.StorageGCInterval, log),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP surface: triggers, health, diagnostics, websocket
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	api.NewServer(notificationBridge, connectionRegistry, roomManager, metrics, log).Routes(engine)
	engine.GET("/chat", realtime.NewHandler(relay, config.ConnectionBufferSize, log).Serve)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: engine}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
