package bootstrap

import (
	"fmt"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	libZap "github.com/LerianStudio/lib-commons/v2/commons/zap"
	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/adapters/sqlite"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/dlq"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/namespace"
	"github.com/debdevops/servicehub/internal/services"
	"github.com/debdevops/servicehub/pkg/mcrypto"
)

// Config is the top level configuration struct for the entire application.
type Config struct {
	EnvName  string `env:"ENV_NAME"`
	LogLevel string `env:"LOG_LEVEL"`

	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry         bool   `env:"ENABLE_TELEMETRY"`

	DatabaseFile string `env:"SQLITE_DATABASE_FILE"`

	MasterKey       string `env:"SERVICEHUB_MASTER_KEY"`
	LegacyMasterKey string `env:"SERVICEHUB_LEGACY_MASTER_KEY"`

	CacheIdleTTLMinutes int `env:"CACHE_IDLE_TTL_MINUTES"`

	ScannerIntervalSeconds         int `env:"SCANNER_INTERVAL_SECONDS"`
	ScannerMaxPeekPerEntity        int `env:"SCANNER_MAX_PEEK_PER_ENTITY"`
	ScannerMaxConcurrentNamespaces int `env:"SCANNER_MAX_CONCURRENT_NAMESPACES"`
	ScannerStaleThresholdSeconds   int `env:"SCANNER_STALE_THRESHOLD_SECONDS"`

	ReplaySingleMaxAttempts int `env:"REPLAY_SINGLE_MAX_ATTEMPTS"`
	ReplaySingleBatchSize   int `env:"REPLAY_SINGLE_BATCH_SIZE"`
	ReplaySingleWaitSeconds int `env:"REPLAY_SINGLE_WAIT_SECONDS"`
	ReplayBatchMaxAttempts  int `env:"REPLAY_BATCH_MAX_ATTEMPTS"`
	ReplayBatchBatchSize    int `env:"REPLAY_BATCH_BATCH_SIZE"`
	ReplayBatchWaitSeconds  int `env:"REPLAY_BATCH_WAIT_SECONDS"`
	PurgeMaxAttempts        int `env:"PURGE_MAX_ATTEMPTS"`
	PurgeBatchSize          int `env:"PURGE_BATCH_SIZE"`
}

// Options contains optional dependencies that can be injected by callers.
type Options struct {
	Logger libLog.Logger
}

// InitService wires the engine: store, protector, broker cache, use cases, and
// the background scanner.
func InitService() (*Service, error) {
	return InitServiceWithOptions(nil)
}

// InitServiceWithOptions initializes the engine with optional dependency injection.
func InitServiceWithOptions(opts *Options) (*Service, error) {
	cfg := &Config{}

	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment variables: %w", err)
	}

	applyDefaults(cfg)

	var logger libLog.Logger
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	} else {
		var err error

		logger, err = libZap.InitializeLoggerWithError()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	telemetry, err := libOpentelemetry.InitializeTelemetryWithError(&libOpentelemetry.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	protector := &mcrypto.Crypto{
		MasterKey:       cfg.MasterKey,
		LegacyMasterKey: cfg.LegacyMasterKey,
		Logger:          logger,
	}

	if err := protector.InitializeCipher(); err != nil {
		return nil, fmt.Errorf("failed to initialize credential protector: %w", err)
	}

	sqliteConnection := &sqlite.Connection{
		DatabaseFile: cfg.DatabaseFile,
		Logger:       logger,
	}

	namespaceRepository, err := namespace.NewSqliteRepository(sqliteConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize namespace repository: %w", err)
	}

	dlqRepository, err := dlq.NewSqliteRepository(sqliteConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dlq repository: %w", err)
	}

	limits := servicebus.Limits{
		SingleMaxAttempts: cfg.ReplaySingleMaxAttempts,
		SingleBatchSize:   cfg.ReplaySingleBatchSize,
		SingleWait:        time.Duration(cfg.ReplaySingleWaitSeconds) * time.Second,
		BatchMaxAttempts:  cfg.ReplayBatchMaxAttempts,
		BatchBatchSize:    cfg.ReplayBatchBatchSize,
		BatchWait:         time.Duration(cfg.ReplayBatchWaitSeconds) * time.Second,
		PurgeMaxAttempts:  cfg.PurgeMaxAttempts,
		PurgeBatchSize:    cfg.PurgeBatchSize,
	}

	brokerCache := servicebus.NewClientCache(time.Duration(cfg.CacheIdleTTLMinutes)*time.Minute, limits, logger)

	useCase := &services.UseCase{
		NamespaceRepo: namespaceRepository,
		DlqRepo:       dlqRepository,
		Brokers:       brokerCache,
		Protector:     protector,
	}

	scanner := NewDlqScanner(useCase, ScannerConfig{
		Interval: time.Duration(cfg.ScannerIntervalSeconds) * time.Second,
		Settings: services.ScanSettings{
			MaxPeekPerEntity: cfg.ScannerMaxPeekPerEntity,
			StaleThreshold:   time.Duration(cfg.ScannerStaleThresholdSeconds) * time.Second,
		},
		MaxConcurrentNamespaces: cfg.ScannerMaxConcurrentNamespaces,
	}, logger)

	return &Service{
		Scanner:   scanner,
		UseCase:   useCase,
		Brokers:   brokerCache,
		Logger:    logger,
		Telemetry: telemetry,
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DatabaseFile == "" {
		cfg.DatabaseFile = "servicehub.db"
	}

	if cfg.CacheIdleTTLMinutes <= 0 {
		cfg.CacheIdleTTLMinutes = 60
	}

	if cfg.ScannerIntervalSeconds <= 0 {
		cfg.ScannerIntervalSeconds = 10
	}

	if cfg.ScannerMaxPeekPerEntity <= 0 {
		cfg.ScannerMaxPeekPerEntity = 100
	}

	if cfg.ScannerMaxConcurrentNamespaces <= 0 {
		cfg.ScannerMaxConcurrentNamespaces = 4
	}

	if cfg.ScannerStaleThresholdSeconds <= 0 {
		cfg.ScannerStaleThresholdSeconds = 2 * cfg.ScannerIntervalSeconds
	}

	if cfg.ReplaySingleMaxAttempts <= 0 {
		cfg.ReplaySingleMaxAttempts = 10
	}

	if cfg.ReplaySingleBatchSize <= 0 {
		cfg.ReplaySingleBatchSize = 50
	}

	if cfg.ReplaySingleWaitSeconds <= 0 {
		cfg.ReplaySingleWaitSeconds = 3
	}

	if cfg.ReplayBatchMaxAttempts <= 0 {
		cfg.ReplayBatchMaxAttempts = 10
	}

	if cfg.ReplayBatchBatchSize <= 0 {
		cfg.ReplayBatchBatchSize = 100
	}

	if cfg.ReplayBatchWaitSeconds <= 0 {
		cfg.ReplayBatchWaitSeconds = 5
	}

	if cfg.PurgeMaxAttempts <= 0 {
		cfg.PurgeMaxAttempts = 20
	}

	if cfg.PurgeBatchSize <= 0 {
		cfg.PurgeBatchSize = 100
	}
}
