package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/guiyumin/vlink/internal/core/resolver"
	"github.com/guiyumin/vlink/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP resolve API",
	Long: `Start an HTTP server that resolves links via API.

Examples:
  vlink serve              # Start server on port 8080
  vlink serve -p 9000      # Start server on port 9000

API Endpoints:
  GET  /api/health         # Health check
  GET  /api/platforms      # Supported platforms
  POST /api/resolve        # Resolve url + platform (form, JSON or query)`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default: 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg := config.LoadOrDefault()

	// Resolve port (flag > config > default)
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	return Serve(cfg, log.New(os.Stderr, "", log.LstdFlags))
}

// Serve runs the API until SIGINT or SIGTERM, then drains the audit sink
func Serve(cfg *config.Config, logger *log.Logger) error {
	svc, closeSvc, err := resolver.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSvc()

	opts := server.OptionsFromConfig(cfg.Server)
	opts.Logger = logger
	srv := server.NewServer(svc, opts)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		logger.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
