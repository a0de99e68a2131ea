package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		ServiceName: "healthprobe-test",
		Version:     "1.0.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     LoggingConfig{Enabled: true, Level: "info", Writer: &bytes.Buffer{}},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrMissingServiceName},
		{name: "unknown tracing exporter", mutate: func(c *Config) { c.Tracing.Exporter = "zipkin" }, wantErr: ErrInvalidTracingExporter},
		{name: "sample pct too high", mutate: func(c *Config) { c.Tracing.SamplePct = 1.5 }, wantErr: ErrInvalidSamplePct},
		{name: "sample pct negative", mutate: func(c *Config) { c.Tracing.SamplePct = -0.1 }, wantErr: ErrInvalidSamplePct},
		{name: "unknown metrics exporter", mutate: func(c *Config) { c.Metrics.Exporter = "statsd" }, wantErr: ErrInvalidMetricsExporter},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: ErrInvalidLogLevel},
		{
			name: "disabled subsystems are not validated",
			mutate: func(c *Config) {
				c.Tracing = TracingConfig{Exporter: "zipkin"}
				c.Metrics = MetricsConfig{Exporter: "statsd"}
				c.Logging = LoggingConfig{Level: "trace"}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestNewObserver_GathererServesRuntimeCollectors(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	families, err := obs.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var sawGo, sawProcess bool
	for _, mf := range families {
		switch {
		case strings.HasPrefix(mf.GetName(), "go_"):
			sawGo = true
		case strings.HasPrefix(mf.GetName(), "process_"):
			sawProcess = true
		}
	}
	if !sawGo {
		t.Error("expected go_ runtime metrics in gatherer")
	}
	// The process collector only reports on platforms with procfs.
	if !sawProcess {
		t.Log("no process_ metrics on this platform")
	}
}

func TestNewObserver_CheckMetricsReachGatherer(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	m, err := MetricsFromObserver(obs)
	if err != nil {
		t.Fatalf("MetricsFromObserver() error = %v", err)
	}
	m.RecordCheck(ctx, "redis", 0, true)

	families, err := obs.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "health_check_count") {
			found = true
		}
	}
	if !found {
		t.Error("health_check_count not exported to gatherer")
	}
}

func TestNewObserver_LoggingWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := validConfig()
	cfg.Logging.Writer = &buf

	obs, err := NewObserver(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	obs.Logger().Info(context.Background(), "hello")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("log output = %q, want msg hello", buf.String())
	}
}

func TestObserver_ShutdownIdempotent(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if err := obs.Shutdown(ctx); err != nil {
		t.Fatalf("first Shutdown() error = %v", err)
	}
	// A second shutdown must not panic.
	_ = obs.Shutdown(ctx)
}
