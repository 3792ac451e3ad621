package engine

import (
	"context"
	"fmt"

	"vane/internal/config"
	"vane/internal/dashboard"
	"vane/internal/logging"
	"vane/internal/stations"
	"vane/internal/telemetry"
	"vane/internal/transport"
	"vane/internal/weather"
	"vane/source/restproxy"
)

// Config carries the loaded application config plus its resolved
// sub-configs.
type Config struct {
	App   config.File
	Proxy restproxy.Config
	Fleet []stations.Station
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. feed pipeline: proxy client -> extractor -> snapshot provider
	client := restproxy.NewClient(cfg.Proxy)
	provider := dashboard.NewProvider(dashboard.Config{
		Live:    cfg.App.Live.Subscription(),
		Latest:  cfg.App.Live.Latest,
		History: cfg.App.History.Subscription(),
		Window:  cfg.App.History.Window(),
		Fleet:   cfg.Fleet,
	}, weather.NewExtractor(client))

	// 2. transport server
	srv, err := transport.StartServer(cfg.App.Server.Port, provider)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	// 3. metrics
	telemetry.Expose(cfg.App.Server.MetricsPort)

	logging.L().Info("engine: ready",
		"api", srv.Addr(),
		"proxy", cfg.Proxy.BaseURL,
		"live", cfg.App.Live.Topic,
		"history", cfg.App.History.Topic,
		"stations", len(cfg.Fleet))

	return &Engine{
		transport: srv,
	}, nil
}
