package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"vane/internal/config"
	"vane/internal/engine"
	"vane/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "application config (optional)")
	flag.Parse()

	logging.InitFromEnv()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Log.Level != "" || cfg.Log.Format != "" {
		logging.Configure(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	}

	proxyCfg, err := config.LoadProxyConfig(cfg.Proxy)
	if err != nil {
		log.Fatalf("proxy config: %v", err)
	}
	fleet, err := config.LoadStations(cfg.Stations)
	if err != nil {
		log.Fatalf("stations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(ctx, engine.Config{App: cfg, Proxy: proxyCfg, Fleet: fleet})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := e.Run(ctx); err != nil {
		log.Fatalf("engine: %v", err)
	}
}
