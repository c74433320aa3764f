package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"patrolarena/internal/app"
	"patrolarena/internal/config"
)

func main() {
	var (
		addr       string
		configPath string
	)
	flag.StringVar(&addr, "addr", "", "listen address, e.g. :8080 (overrides config)")
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg = cfg.ApplyEnv()
	if addr != "" {
		cfg.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
