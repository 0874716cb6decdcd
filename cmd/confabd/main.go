package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"confab/internal/config"
	"confab/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/confab/config.toml)")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	diagnostic := flag.Bool("diagnostic", false, "enable diagnostic mode with separate DEBUG logs")
	flag.Parse()

	cfg, resolvedPath, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "warn: config file %s not found, using defaults\n", resolvedPath)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:   *logLevel,
		Diagnostic: *diagnostic,
	}); err != nil {
		log.Fatalf("confabd: %v", err)
	}
}
