package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/guiyumin/vlink/internal/cli"
	"github.com/guiyumin/vlink/internal/core/config"
	"github.com/guiyumin/vlink/internal/core/version"
)

func main() {
	// Command-line flags
	port := flag.Int("port", 0, "HTTP listen port (default: 8080)")
	auditDriver := flag.String("audit", "", "audit driver: file, sqlite or none")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vlink-server %s\n", version.Version)
		return
	}

	// Load configuration (file, then .env and VLINK_* overrides)
	cfg := config.LoadOrDefault()

	// Flags win over config
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *auditDriver != "" {
		cfg.Audit.Driver = *auditDriver
		cfg.Audit.Path = config.DefaultAuditPath(*auditDriver)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	logger.Printf("Audit log: %s (%s)", cfg.Audit.Driver, cfg.Audit.Path)

	if err := cli.Serve(cfg, logger); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
