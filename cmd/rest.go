package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanheeren/dentalcal/internal/booking"
	"github.com/vanheeren/dentalcal/internal/config"
	"github.com/vanheeren/dentalcal/internal/instrumentation"
	"github.com/vanheeren/dentalcal/internal/server"
)

func newRestCmd() *cobra.Command {
	var (
		debugMode bool
		addr      string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "rest",
		Short: "Start the HTTP/REST server",
		Long: `Start the plain HTTP/REST server for web frontends and internal tooling.

The REST API exposes the same booking operations as the MCP tools under
/api/v1: availability queries, booking, listing, rescheduling and
cancelling appointments.

Unlike the MCP server, the REST server requires Google Calendar
credentials at startup and refuses to start without them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runRest(addr, debugMode, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP server address")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runRest(addr string, debugMode bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configureLogging(debugMode)

	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if envAddr := os.Getenv("METRICS_ADDR"); envAddr != "" {
			metricsConfig.Addr = envAddr
		}
	}

	clinic, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load clinic configuration: %w", err)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
	}()

	// The REST server is useless without the appointment store: fail fast.
	serverContext, err := server.NewServerContext(shutdownCtx, clinic)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	client, err := serverContext.CalendarClient()
	if err != nil {
		return fmt.Errorf("failed to connect to Google Calendar: %w", err)
	}

	svc := booking.NewService(client, clinic)

	restOpts := []server.RESTServerOption{
		server.WithRESTLogger(slog.Default()),
	}
	if provider.Enabled() {
		restOpts = append(restOpts, server.WithRESTMetrics(provider.Metrics()))
	}
	restServer := server.NewRESTServer(svc, clinic, restOpts...)

	fmt.Printf("REST server starting on %s\n", addr)
	fmt.Printf("  API endpoints: /api/v1\n")
	fmt.Printf("  Health endpoint: /health\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := restServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		fmt.Println("Shutdown signal received, stopping REST server...")
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := restServer.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("error shutting down REST server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("REST server stopped with error: %w", err)
		}
		fmt.Println("REST server stopped normally")
	}

	fmt.Println("REST server gracefully stopped")
	return nil
}
