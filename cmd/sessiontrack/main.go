// Package main provides the entry point for the sessiontrack service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/txn2/sessiontrack/internal/server"
	"github.com/txn2/sessiontrack/pkg/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	address     string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.address, "address", "", "Server address (overrides config)")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("sessiontrack version %s\n", server.Version)
		return nil
	}

	ctx := setupSignalContext()

	svc, err := createServiceWithOverrides(opts)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}

func createServiceWithOverrides(opts serverOptions) (*service.Service, error) {
	if opts.address == "" {
		if opts.configPath != "" {
			return server.NewWithConfig(opts.configPath, nil)
		}
		return server.New(nil)
	}

	cfg := service.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := service.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.Server.Address = opts.address
	return service.New(cfg, nil)
}
