package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonwraymond/healthprobe/config"
	"github.com/jonwraymond/healthprobe/health"
	"github.com/jonwraymond/healthprobe/observe"
	"github.com/jonwraymond/healthprobe/probe"
)

// app is the wired probe: settings, telemetry, lazily built clients and
// the aggregator holding every check.
type app struct {
	settings *config.Settings
	obs      observe.Observer
	logger   observe.Logger
	clients  *probe.Clients
	agg      *health.Aggregator
}

func newApp(ctx context.Context, s *config.Settings, factory probe.Factory, logs io.Writer) (*app, error) {
	obs, err := observe.NewObserver(ctx, observerConfig(s, logs))
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	aggCfg := health.AggregatorConfig{
		Timeout:       s.Duration(config.KeyThreadJoinTimeout, config.DefaultThreadJoinTimeout),
		MaxConcurrent: s.Int(config.KeyMaxConcurrentChecks, config.DefaultMaxConcurrentChecks),
	}
	if s.Bool(config.KeyEnableHistogram) {
		metrics, err := observe.MetricsFromObserver(obs)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, fmt.Errorf("metrics: %w", err)
		}
		aggCfg.Recorder = metrics
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	clients := probe.NewClients(factory)
	reg := health.NewRegistry(s)
	agg := health.NewAggregator(reg, aggCfg)
	agg.Register(mw.WrapChecks(health.SystemChecks(health.SystemConfig{
		CPUInterval:           s.Duration(config.KeyCPUSampleInterval, config.DefaultCPUSampleInterval),
		MemoryCriticalPercent: s.Float(config.KeyMemoryCriticalPercent, config.DefaultMemoryCriticalPercent),
	}))...)
	agg.Register(mw.WrapChecks(probe.Checks(clients, s, reg))...)

	return &app{
		settings: s,
		obs:      obs,
		logger:   obs.Logger(),
		clients:  clients,
		agg:      agg,
	}, nil
}

func observerConfig(s *config.Settings, logs io.Writer) observe.Config {
	tracing := s.String(config.KeyTracingExporter, config.DefaultTracingExporter)
	metrics := s.String(config.KeyMetricsExporter, config.DefaultMetricsExporter)

	return observe.Config{
		ServiceName: s.String(config.KeyServiceName, config.DefaultServiceName),
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   tracing != "" && tracing != "none",
			Exporter:  tracing,
			SamplePct: s.Float(config.KeyTracingSamplePct, config.DefaultTracingSamplePct),
		},
		Metrics: observe.MetricsConfig{
			Enabled:  metrics != "" && metrics != "none",
			Exporter: metrics,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   s.String(config.KeyLogLevel, config.DefaultLogLevel),
			File:    s.String(config.KeyLogFile, ""),
			Writer:  logs,
		},
	}
}

// close releases clients first so their shutdown is still logged.
func (a *app) close(ctx context.Context) error {
	return errors.Join(a.clients.Close(ctx), a.obs.Shutdown(ctx))
}
