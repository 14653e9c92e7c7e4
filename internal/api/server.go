package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/displayhub/internal/audit"
	"github.com/nerrad567/displayhub/internal/auth"
	"github.com/nerrad567/displayhub/internal/device"
	"github.com/nerrad567/displayhub/internal/infrastructure/config"
	"github.com/nerrad567/displayhub/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Metrics receives auth and pairing outcomes. influxdb.Client implements it.
type Metrics interface {
	RecordAuthEvent(action, outcome string)
	RecordPairing(paired, transferred bool)
}

// HealthChecker is a dependency reported by GET /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Auth    *auth.Service
	Devices *device.Service

	// AuditRepo serves GET /auth/activity; Audit records new entries.
	// Both are optional.
	AuditRepo audit.Repository
	Audit     *audit.Writer

	// Metrics is optional.
	Metrics Metrics

	// HealthChecks are probed by GET /health, keyed by component name.
	HealthChecks map[string]HealthChecker

	Version string
}

// Server is the displayhub HTTP server.
//
// It is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	logger       *logging.Logger
	auth         *auth.Service
	devices      *device.Service
	auditRepo    audit.Repository
	audit        *audit.Writer
	metrics      Metrics
	healthChecks map[string]HealthChecker
	version      string

	server *http.Server
	cancel context.CancelFunc // stops the audit writer on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device service is required")
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger.With("component", "api"),
		auth:         deps.Auth,
		devices:      deps.Devices,
		auditRepo:    deps.AuditRepo,
		audit:        deps.Audit,
		metrics:      metrics,
		healthChecks: deps.HealthChecks,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections and starts the audit writer.
// The listener runs in a background goroutine; stop it with Close().
// Cancelling ctx does not stop the audit writer: requests still in flight
// during shutdown record entries until Close has drained them.
func (s *Server) Start(ctx context.Context) error {
	var writerCtx context.Context
	writerCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if s.audit != nil {
		go s.audit.Run(writerCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// stops the audit writer and waits for it to drain.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	shutdownErr := s.server.Shutdown(ctx)

	// Requests are finished, so no more entries will be queued.
	if s.cancel != nil {
		s.cancel()
	}
	if s.audit != nil {
		select {
		case <-s.audit.Done():
		case <-ctx.Done():
			s.logger.Warn("audit queue not drained before shutdown deadline")
		}
	}

	if shutdownErr != nil {
		return fmt.Errorf("shutting down API server: %w", shutdownErr)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordAuthEvent(string, string) {}
func (noopMetrics) RecordPairing(bool, bool)       {}
