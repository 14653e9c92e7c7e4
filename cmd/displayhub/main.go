// displayhub - account and display pairing service
//
// This is the main entry point for displayhub. It serves the HTTP API
// used by the mobile app to manage accounts and sessions, and by headless
// display firmware to register itself and learn when it has been paired.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/displayhub/migrations"

	"github.com/nerrad567/displayhub/internal/api"
	"github.com/nerrad567/displayhub/internal/audit"
	"github.com/nerrad567/displayhub/internal/auth"
	"github.com/nerrad567/displayhub/internal/device"
	"github.com/nerrad567/displayhub/internal/infrastructure/config"
	"github.com/nerrad567/displayhub/internal/infrastructure/database"
	"github.com/nerrad567/displayhub/internal/infrastructure/influxdb"
	"github.com/nerrad567/displayhub/internal/infrastructure/logging"
	"github.com/nerrad567/displayhub/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// With no arguments it serves the API. "migrate [up|down|status]" manages
// the schema and exits.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments after the program name
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] != "migrate" {
		return fmt.Errorf("unknown command %q", args[0])
	}

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting displayhub",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, cfg.Service.Name, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		QueryTimeout: cfg.GetQueryTimeout(),
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	if len(args) > 0 {
		return runMigrate(ctx, db, log, args[1:])
	}

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	healthChecks := map[string]api.HealthChecker{"database": db}

	// Pairing notifications (optional)
	var notifier device.Notifier
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		notifier = mqtt.NewPairingNotifier(mqttClient)
		healthChecks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled, displays will not be notified of pairing changes")
	}

	// Auth telemetry (optional)
	var metrics api.Metrics
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		metrics = influxClient
		healthChecks["influxdb"] = influxClient
	}

	authSvc, deviceSvc, err := buildServices(cfg, db, notifier, log)
	if err != nil {
		return err
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		Logger:       log,
		Auth:         authSvc,
		Devices:      deviceSvc,
		AuditRepo:    auditRepo,
		Audit:        audit.NewWriter(auditRepo, "api", audit.DefaultQueueSize, log),
		Metrics:      metrics,
		HealthChecks: healthChecks,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains the audit queue)
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("displayhub stopped")
	return nil
}

// runMigrate applies, rolls back or reports schema migrations.
func runMigrate(ctx context.Context, db *database.DB, log *logging.Logger, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "up":
		applied, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database migrations complete", "applied", applied)
	case "down":
		if err := db.MigrateDown(ctx); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		log.Info("rolled back latest migration")
	case "status":
		applied, pending, err := db.GetMigrationStatus(ctx)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		for _, m := range applied {
			log.Info("migration applied", "version", m.Version, "applied_at", m.AppliedAt)
		}
		for _, m := range pending {
			log.Info("migration pending", "version", m.Version, "name", m.Name)
		}
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or status)", action)
	}
	return nil
}

// buildServices wires the auth and device services to the database.
func buildServices(cfg *config.Config, db *database.DB, notifier device.Notifier, log *logging.Logger) (*auth.Service, *device.Service, error) {
	issuer, err := auth.NewTokenIssuer(cfg.Security.JWT.Secret, cfg.GetAccessTokenTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("creating token issuer: %w", err)
	}

	authSvc := auth.NewService(auth.ServiceDeps{
		Users:    auth.NewUserRepository(db.DB),
		Sessions: auth.NewSessionRepository(db.DB),
		Hasher: auth.NewHasher(auth.PasswordParams{
			Time:    cfg.Security.Password.Time,
			Memory:  cfg.Security.Password.Memory,
			Threads: cfg.Security.Password.Threads,
		}),
		Tokens:       issuer,
		QueryTimeout: db.QueryTimeout(),
		Logger:       log,
	})

	deviceSvc := device.NewService(device.ServiceDeps{
		Repository:         device.NewSQLiteRepository(db.DB),
		RegistrationSecret: cfg.Security.Device.RegistrationSecret,
		Notifier:           notifier,
		QueryTimeout:       db.QueryTimeout(),
		Logger:             log,
	})

	return authSvc, deviceSvc, nil
}

// getConfigPath returns the configuration file path.
// Uses DISPLAYHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(config.EnvPrefix + "CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
