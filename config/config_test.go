package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/iterkit/errors"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug logging in development, got %q", cfg.Logging.Level)
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info logging, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "name: is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "environment: must be one of"},
		{"missing environment", ServiceConfig{Name: "svc"}, true, "environment: is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
				if !errors.Is(err, errors.ErrCodeConfiguration) {
					t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func defaultConfig() IteratorConfig {
	var cfg IteratorConfig
	cfg.ApplyDefaults()
	return cfg
}

func TestIteratorConfigApplyDefaults(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Name != "iterbench" || cfg.Epochs != 1 {
		t.Errorf("unexpected name/epochs %q/%d", cfg.Name, cfg.Epochs)
	}
	if cfg.Prefetch.Depth != 8 || cfg.Prefetch.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected prefetch defaults %+v", cfg.Prefetch)
	}
	if cfg.Dataset.Batches != 100 || cfg.Dataset.BatchSize != 32 {
		t.Errorf("unexpected dataset defaults %+v", cfg.Dataset)
	}
	if cfg.Split.Enabled() {
		t.Error("expected no split by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}

	withRatios := IteratorConfig{Split: SplitConfig{Ratios: []float64{0.7}}}
	withRatios.ApplyDefaults()
	if withRatios.Split.Total != withRatios.Dataset.Batches {
		t.Errorf("expected split total to default to the batch count, got %d", withRatios.Split.Total)
	}
}

func TestIteratorConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*IteratorConfig)
		errMsg string
	}{
		{"valid ratios", func(c *IteratorConfig) { c.Split.Ratios = []float64{0.7, 0.3}; c.Split.Total = 100 }, ""},
		{"valid three-way ratios", func(c *IteratorConfig) { c.Split.Ratios = []float64{0.7, 0.2, 0.1}; c.Split.Total = 100 }, ""},
		{"valid counts", func(c *IteratorConfig) { c.Split.Counts = []int64{60, 40} }, ""},
		{"depth below two", func(c *IteratorConfig) { c.Prefetch.Depth = 1 }, "prefetch.depth"},
		{"negative cadence", func(c *IteratorConfig) { c.Prefetch.CallbackEvery = -3 }, "prefetch.callback_every"},
		{"ratio out of range", func(c *IteratorConfig) { c.Split.Ratios = []float64{1.2}; c.Split.Total = 100 }, "split.ratios[0]"},
		{"ratios above one", func(c *IteratorConfig) { c.Split.Ratios = []float64{0.7, 0.4}; c.Split.Total = 100 }, "must sum to at most 1"},
		{"ratios without total", func(c *IteratorConfig) { c.Split.Ratios = []float64{0.5} }, "split.total"},
		{"total above batches", func(c *IteratorConfig) { c.Split.Ratios = []float64{0.5}; c.Split.Total = 500 }, "must not exceed dataset.batches"},
		{"negative count", func(c *IteratorConfig) { c.Split.Counts = []int64{-1} }, "split.counts[0]"},
		{"counts above batches", func(c *IteratorConfig) { c.Split.Counts = []int64{80, 80} }, "must not sum above"},
		{"ratios and counts", func(c *IteratorConfig) {
			c.Split.Ratios = []float64{0.5}
			c.Split.Total = 10
			c.Split.Counts = []int64{5}
		}, "mutually exclusive"},
		{"too many names", func(c *IteratorConfig) { c.Split.Counts = []int64{50}; c.Split.Names = []string{"a", "b"} }, "split.names"},
		{"telemetry needs endpoint", func(c *IteratorConfig) { c.Telemetry.Enabled = true }, "telemetry.endpoint"},
		{"bad sample rate", func(c *IteratorConfig) { c.Telemetry.SampleRate = 2 }, "telemetry.sample_rate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestTelemetryConversion(t *testing.T) {
	cfg := IteratorConfig{
		ServiceConfig: ServiceConfig{Name: "bench", Environment: "staging", Version: "2.1.0"},
		Telemetry:     TelemetryConfig{Enabled: true, Endpoint: "collector:4318", Insecure: true, SampleRate: 0.5},
	}
	cfg.ApplyDefaults()

	mc := cfg.MeterConfig()
	if mc.ServiceName != "bench" || mc.ServiceVersion != "2.1.0" || mc.Endpoint != "collector:4318" || mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter config %+v", mc)
	}
	tc := cfg.TracerConfig()
	if tc.Environment != "staging" || tc.SampleRate != 0.5 || !tc.Insecure {
		t.Errorf("unexpected tracer config %+v", tc)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: bench
environment: staging
epochs: 3
dataset:
  batches: 50
prefetch:
  depth: 4
  callback_every: 10
  shutdown_timeout: 2s
split:
  ratios: [0.7, 0.3]
  names: [train, test]
  auto_seek: true
`)

	cfg, err := Load("bench", WithConfigFile(path), WithEnvPrefix("ITERKIT_TEST_"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "bench" || cfg.Environment != "staging" || cfg.Epochs != 3 {
		t.Errorf("unexpected base fields %+v", cfg.ServiceConfig)
	}
	if cfg.Prefetch.Depth != 4 || cfg.Prefetch.CallbackEvery != 10 || cfg.Prefetch.ShutdownTimeout != 2*time.Second {
		t.Errorf("unexpected prefetch %+v", cfg.Prefetch)
	}
	if len(cfg.Split.Ratios) != 2 || cfg.Split.Total != 50 || !cfg.Split.AutoSeek || cfg.Split.Names[1] != "test" {
		t.Errorf("unexpected split %+v", cfg.Split)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: bench\nprefetch:\n  depth: 4\n")
	envPath := writeFile(t, dir, ".env", "ITERKIT_TEST_EPOCHS=7\n")
	t.Setenv("ITERKIT_TEST_PREFETCH_DEPTH", "16")
	t.Setenv("ITERKIT_TEST_PREFETCH_SHUTDOWN_TIMEOUT", "750ms")
	t.Cleanup(func() { os.Unsetenv("ITERKIT_TEST_EPOCHS") })

	cfg, err := Load("bench", WithConfigFile(path), WithEnvFile(envPath), WithEnvPrefix("ITERKIT_TEST_"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Prefetch.Depth != 16 {
		t.Errorf("expected env to override depth, got %d", cfg.Prefetch.Depth)
	}
	if cfg.Prefetch.ShutdownTimeout != 750*time.Millisecond {
		t.Errorf("expected env to override the shutdown timeout, got %v", cfg.Prefetch.ShutdownTimeout)
	}
	if cfg.Epochs != 7 {
		t.Errorf("expected .env value for epochs, got %d", cfg.Epochs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: bench\nprefetch:\n  depth: 1\n")

	_, err := Load("bench", WithConfigFile(path), WithEnvPrefix("ITERKIT_TEST_"))
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "prefetch.depth") {
		t.Errorf("expected the failing key in the message, got %q", err.Error())
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "prefetch: [unclosed\n")

	_, err := Load("bench", WithConfigFile(path), WithEnvPrefix("ITERKIT_TEST_"))
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR for a malformed file, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg IteratorConfig
	err := LoadConfig("nonexistent-service", &cfg,
		WithConfigFile("/nonexistent/path.yml"),
		WithFileSystem(&mockFS{}),
		WithEnvPrefix("ITERKIT_TEST_"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getwd() (string, error)    { return "/mock", nil }

func TestResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]bool
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "service directory",
			files:      map[string]bool{"./cmd/my-bench/config.yml": true, ".env": true},
			wantConfig: "./cmd/my-bench/config.yml",
			wantEnv:    ".env",
		},
		{
			name:       "short name",
			files:      map[string]bool{"./cmd/bench/config.yml": true},
			wantConfig: "./cmd/bench/config.yml",
		},
		{
			name:       "explicit paths win",
			files:      map[string]bool{"./config.yml": true},
			opts:       LoaderConfig{ConfigFile: "/etc/bench.yml", EnvFile: "/etc/bench.env"},
			wantConfig: "/etc/bench.yml",
			wantEnv:    "/etc/bench.env",
		},
		{
			name: "nothing found",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: tc.files}}
			files := resolver.ResolveFiles("my-bench", tc.opts)
			if files.ConfigFile != tc.wantConfig {
				t.Errorf("config file = %q, want %q", files.ConfigFile, tc.wantConfig)
			}
			if files.EnvFile != tc.wantEnv {
				t.Errorf("env file = %q, want %q", files.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("iterbench_")(&lc)

	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config %+v", lc)
	}
	if lc.EnvPrefix != "ITERBENCH_" {
		t.Errorf("expected upper-cased prefix, got %q", lc.EnvPrefix)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("PREFETCH_SHUTDOWN_TIMEOUT")
	want := map[string]bool{"prefetch_shutdown_timeout": false, "prefetch.shutdown_timeout": false}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
	if got := generateEnvKeyVariants("EPOCHS"); len(got) != 1 || got[0] != "epochs" {
		t.Errorf("expected single variant, got %v", got)
	}
}
