// Package main provides the task-lifecycle core service: the HTTP API
// that accepts task creation, data assignment, approval, staging, and
// completion reporting, and dispatches staged tasks to their executor
// subsystem over Kafka.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/conclave-run/taskcore/internal/api"
	"github.com/conclave-run/taskcore/internal/api/middleware"
	"github.com/conclave-run/taskcore/internal/config"
	"github.com/conclave-run/taskcore/internal/dispatch"
	"github.com/conclave-run/taskcore/internal/storage"
	"github.com/conclave-run/taskcore/internal/task"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "taskd"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("starting task-lifecycle core",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	taskStore, closeTaskStore := newTaskStore(logger)
	defer closeTaskStore()

	apiKeyStore, closeAPIKeyStore := newAPIKeyStore(logger)
	defer closeAPIKeyStore()

	functions := storage.NewInMemoryFunctionRegistry()

	dispatcher := newDispatcher(logger)
	defer func() { _ = dispatcher.Close() }()

	rateLimiter := middleware.NewInMemoryRateLimiter(middleware.LoadConfig())

	server := api.NewServer(&serverConfig, apiKeyStore, rateLimiter, taskStore, functions, dispatcher)

	if err := server.Start(); err != nil {
		logger.Error("server failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("task-lifecycle core stopped")
}

// newTaskStore wires a PostgresTaskStore when DATABASE_URL is configured,
// falling back to an in-memory store for local development.
func newTaskStore(logger *slog.Logger) (task.Store, func()) {
	dbURL := config.GetEnvStr("DATABASE_URL", "")
	if dbURL == "" {
		logger.Warn("DATABASE_URL not set - using in-memory task store (not for production use)")

		return storage.NewInMemoryTaskStore(), func() {}
	}

	conn, err := storage.NewConnection(storage.LoadConfig())
	if err != nil {
		logger.Error("failed to connect to task store database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := storage.NewPostgresTaskStore(conn)

	return store, func() { _ = store.Close() }
}

// newAPIKeyStore wires a PersistentKeyStore when DATABASE_URL is
// configured, falling back to an in-memory store otherwise.
func newAPIKeyStore(logger *slog.Logger) (storage.APIKeyStore, func()) {
	dbURL := config.GetEnvStr("DATABASE_URL", "")
	if dbURL == "" {
		logger.Warn("DATABASE_URL not set - using in-memory API key store (not for production use)")

		return storage.NewInMemoryKeyStore(), func() {}
	}

	conn, err := storage.NewConnection(storage.LoadConfig())
	if err != nil {
		logger.Error("failed to connect to API key store database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := storage.NewPersistentKeyStore(conn)
	if err != nil {
		logger.Error("failed to initialize API key store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	return store, func() { _ = store.Close() }
}

// newDispatcher wires a KafkaDispatcher, falling back to a MockDispatcher
// when the dispatcher config fails validation (DISPATCH_KAFKA_BROKERS set to
// a value with no broker addresses). With the variable unset, the
// KafkaDispatcher targets localhost:9092.
func newDispatcher(logger *slog.Logger) dispatch.Dispatcher {
	cfg := dispatch.LoadConfig()

	d, err := dispatch.NewKafkaDispatcher(cfg)
	if err != nil {
		logger.Warn("kafka dispatcher unavailable - using mock dispatcher (not for production use)",
			slog.String("error", err.Error()),
		)

		return &dispatch.MockDispatcher{}
	}

	return d
}
