package main

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/bridge"
	httpapi "chat-relay/infrastructure/http"
	"chat-relay/infrastructure/search"
	"chat-relay/infrastructure/storage"
	"chat-relay/infrastructure/websocket"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	telemetryBufferSize   = 1024
	lowCapacityThreshold  = 16
	queueSamplingInterval = 5 * time.Second
	inspectorEndpoint     = "/inspect"
	readHeaderTimeout     = 10 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run wires one chat node and blocks until a signal or a server failure.
// Returning instead of exiting lets every deferred close run.
func run() (int, error) {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, _ := config.CharacterRune()
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	store, err := openStore(ctx, logger, config)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		logger.Info("Closing store...")
		_ = store.Close()
	}()

	// 2. Broadcast bridge
	chatBridge, err := openBridge(ctx, logger, config)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = chatBridge.Close() }()

	// 3. Moderation and search
	moderator, err := loadModerator(logger, config, charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}
	index, err := search.OpenPath(config.BlugeFilepath, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = index.Close() }()

	// 4. Telemetry and supervision
	counter := event.NewCounter()
	telemetry := workers.NewTelemetryWorker(logger, telemetryBufferSize,
		event.NewCensoredHandler(logger, counter),
		event.NewWorkerRestartedAfterPanicHandler(logger, counter),
		event.NewLatencyHandler(logger, counter, config.LatencyThreshold),
		event.NewChannelCapacityHandler(logger, counter, lowCapacityThreshold),
	)
	supervisor := workers.NewSupervisor(logger, telemetry, config.RestartInterval)

	// 5. Core services
	members := services.NewMemberService(logger, store)
	rooms := services.NewRoomService(logger, store)
	messages := services.NewMessageService(logger, store, chatBridge, &moderator, index, telemetry)

	// 6. Node workers: bridge listener, fan-out to the registry then the index
	registry := runtime.NewConnectionRegistry(logger, config.SendTimeout)
	healthServer := health.NewServer()
	node := runtime.NewNode(logger, supervisor, chatBridge, telemetry, config.BridgeBufferSize, config.SinkTimeout, registry, index)
	node.AddWorker(
		telemetry,
		workers.NewChannelCapacityWorker(logger, telemetry, queueSamplingInterval, node.Queue()),
		workers.NewHeartbeatWorker(logger, healthServer, registry, config.HeartbeatInterval, map[string]workers.Pinger{
			"store":  store,
			"bridge": chatBridge,
		}),
	)
	node.Start(ctx)

	if bs, ok := store.(*storage.BadgerStore); ok && logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, inspectorEndpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(bs.DB(), config.DebugPort, inspectorEndpoint, inspectMapper)
	}

	errChan := make(chan error, 2)

	// 7. gRPC health server
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go func() {
		logger.Info("Starting gRPC health server", "address", grpcAddress)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 8. HTTP control surface and websocket upgrade
	wsHandler := websocket.NewHandler(logger, registry, rooms, messages, websocket.Options{
		SendBuffer:   config.ConnectionBufferSize,
		WriteWait:    config.SendTimeout,
		PongWait:     config.PongWait,
		MaxFrameSize: config.MaxFrameSize,
		FramesPerSec: config.FramesPerSecond,
		FrameBurst:   config.FrameBurst,
	})
	router := httpapi.NewRouter(logger, auth.NewResolver(config.JWTSecret), members, rooms, messages, wsHandler)
	httpAddress := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              httpAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Info("Starting HTTP server", "address", httpAddress, "store", config.Store, "bridge", config.Bridge)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 9. Wait for stop or error
	code := exitOK
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errChan:
		logger.Error("Server failed", "error", err)
		code = exitRuntime
	}

	// 10. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP shutdown incomplete", "error", shutdownErr)
	}
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	stop()
	node.Stop()
	logger.Info("Program stopped cleanly", "censored_messages", counter.Get(event.CensorshipHitType))

	return code, err
}

func openStore(ctx context.Context, log *slog.Logger, config internal.Config) (repositories.ChatStore, error) {
	switch config.Store {
	case internal.StorePostgres:
		pool, err := storage.ConnectPostgres(ctx, config.PostgresDSN, storage.WithMaxConns(int32(config.PostgresConns)))
		if err != nil {
			return nil, err
		}
		store := storage.NewPostgresStore(pool, log)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("postgres migration failed: %w", err)
		}
		return store, nil
	default:
		store, err := storage.OpenBadgerStore(config.BadgerFilepath, log)
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return store, nil
	}
}

func openBridge(ctx context.Context, log *slog.Logger, config internal.Config) (contract.Bridge, error) {
	if config.Bridge == internal.BridgeRedis {
		return bridge.NewRedis(ctx, config.RedisURL, log)
	}
	return bridge.NewMemory(config.BridgeBufferSize), nil
}

// loadModerator prefers dictionaries on disk when CENSORED_DIR is set.
func loadModerator(log *slog.Logger, config internal.Config, charReplacement rune) (moderation.Moderator, error) {
	if config.CensoredDir == "" {
		return runtime.LoadModerator(log, charReplacement)
	}
	return runtime.LoadModeratorFrom(log, os.DirFS(config.CensoredDir), ".", charReplacement)
}

func inspectMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	record := storage.DescribeRecord(key, val)
	row.Type = record.Kind
	row.EntityID = record.Entity
	row.Detail = record.Detail
	if !record.At.IsZero() {
		row.Timestamp = record.At.Format(time.DateTime)
	}
	return row
}
