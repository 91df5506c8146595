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

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"team-hub/auth"
	"team-hub/infrastructure/ws"
	"team-hub/internal"
	"team-hub/moderation"
	"team-hub/observability"
	"team-hub/repositories"
	"team-hub/runtime"
	"team-hub/runtime/workers"
	"team-hub/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the gateway and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Storage facade
	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	channelRepository := repositories.NewChannelRepository(db)
	store := repositories.NewStore(messageRepository, channelRepository)

	// 4. Moderation
	censored, err := moderation.LoadEmbedded()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info("Moderation dictionaries loaded",
		"languages", censored.Languages, "words", len(censored.Words))
	moderator, err := moderation.NewModerator(censored.Words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
	}

	// 5. Runtime state & services
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry, monitoring)
	typingTracker := runtime.NewTypingTracker(config.TypingTTL)

	tokens := auth.NewTokenService(config.JWTSecret, config.AuthTokenDuration)
	resolver := auth.NewResolver(tokens, userRepository)

	chatService := services.NewChatService(log, store, registry, broadcaster,
		typingTracker, &moderator, config.HistoryLimit)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewTypingExpiryWorker(log, typingTracker, config.TypingSweepInterval, chatService.ExpireTyping),
		workers.NewHeartbeatWorker(log, monitoring, config.HeartbeatInterval),
	)
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx) // blocks until every worker has finished
	}()

	// 8. Websocket gateway
	gateway := ws.NewGateway(log, resolver, chatService, monitoring, config.ConnectionBufferSize)
	mux := http.NewServeMux()
	mux.Handle("/ws", gateway)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gateway", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("gateway server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return exitOK, nil
}
