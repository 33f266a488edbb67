package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/txn2/sessiontrack/pkg/admin"
	"github.com/txn2/sessiontrack/pkg/auth"
	"github.com/txn2/sessiontrack/pkg/health"
	"github.com/txn2/sessiontrack/pkg/tracker"
)

// shutdownTimeout bounds graceful drain on exit.
const shutdownTimeout = 10 * time.Second

// Service owns the registry and the HTTP server around it. The registry is
// constructed here, at the composition root, and handed by reference to
// the boundary handlers; there is no ambient global instance.
type Service struct {
	cfg      *Config
	registry *tracker.Registry
	checker  *health.Checker
	server   *http.Server
}

// New builds a Service serving app (the application handler whose requests
// are tracked) plus the health and admin endpoints. app may be nil, in
// which case tracked requests answer 404.
func New(cfg *Config, app http.Handler) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	registry := tracker.New(
		tracker.WithMaxSessionAge(cfg.Tracking.MaxSessionAge),
		tracker.WithSweepInterval(cfg.Tracking.SweepInterval),
		tracker.WithRemovalListener(func(sessionID, username string) {
			slog.Info("session destroyed",
				"session_id", sessionID, "username", username)
		}),
	)

	if app == nil {
		app = http.NotFoundHandler()
	}
	tracked := tracker.NewHandler(app, tracker.HandlerConfig{
		Registry:      registry,
		Kind:          cfg.Tracking.Kind,
		SessionHeader: cfg.Tracking.SessionHeader,
	})

	checker := health.NewChecker()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", checker.ReadinessHandler())
	if cfg.Admin.Enabled {
		authMiddle, err := adminAuthMiddleware(cfg.Admin.Auth)
		if err != nil {
			return nil, fmt.Errorf("building admin auth: %w", err)
		}
		mux.Handle("/api/v1/admin/", admin.NewHandler(registry, authMiddle))
	}
	mux.Handle("/", tracked)

	return &Service{
		cfg:      cfg,
		registry: registry,
		checker:  checker,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Registry exposes the registry for in-process collaborators (e.g. an RPC
// layer recording interactions or a container lifecycle hook).
func (s *Service) Registry() *tracker.Registry {
	return s.registry
}

// Handler exposes the root handler, primarily for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is canceled, then drains gracefully.
func (s *Service) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.Server.TLS.Enabled {
			err = s.server.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		errCh <- err
	}()

	s.checker.SetReady()
	slog.Info("sessiontrack listening", "address", s.cfg.Server.Address)

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.checker.SetDraining()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// adminAuthMiddleware builds the auth wrapper for the admin surface from
// config. Returns nil when no mechanism is configured (open admin).
func adminAuthMiddleware(cfg AdminAuthConfig) (func(http.Handler) http.Handler, error) {
	if cfg.JWT.Enabled {
		a, err := auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:     cfg.JWT.Issuer,
			SigningKey: []byte(cfg.JWT.SigningKey),
		})
		if err != nil {
			return nil, err
		}
		return auth.Require(a), nil
	}

	if len(cfg.APIKeys) > 0 {
		keys := make([]auth.APIKey, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			keys = append(keys, auth.APIKey{Key: k.Key, Name: k.Name, Roles: k.Roles})
		}
		return auth.Require(auth.NewAPIKeyAuthenticator(keys)), nil
	}

	slog.Warn("admin surface is enabled without authentication")
	return nil, nil
}
