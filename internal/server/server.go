// Package server provides a factory for creating the tracking service.
package server

import (
	"fmt"
	"net/http"

	"github.com/txn2/sessiontrack/pkg/service"
)

// Version is set at build time.
var Version = "dev"

// New creates a service from defaults, tracking requests to app.
func New(app http.Handler) (*service.Service, error) {
	cfg := service.DefaultConfig()
	return service.New(cfg, app)
}

// NewWithConfig creates a service from a configuration file.
func NewWithConfig(configPath string, app http.Handler) (*service.Service, error) {
	cfg, err := service.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return service.New(cfg, app)
}
