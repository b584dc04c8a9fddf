package config

import (
	"time"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/prefetch"
	"github.com/kbukum/iterkit/validation"
)

// ratioTolerance absorbs float noise in ratio sums such as 0.7 + 0.2 + 0.1.
const ratioTolerance = 1e-9

// IteratorConfig is the configuration of a prefetch/split run.
//
//	name: iterbench
//	epochs: 3
//	prefetch:
//	  depth: 8
//	split:
//	  ratios: [0.7, 0.3]
type IteratorConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Epochs    int             `yaml:"epochs" mapstructure:"epochs" validate:"gte=0"`
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Prefetch  PrefetchConfig  `yaml:"prefetch" mapstructure:"prefetch"`
	Split     SplitConfig     `yaml:"split" mapstructure:"split"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// DatasetConfig sizes the synthetic source.
type DatasetConfig struct {
	Batches   int64 `yaml:"batches" mapstructure:"batches" validate:"gte=0"`
	BatchSize int   `yaml:"batch_size" mapstructure:"batch_size" validate:"gt=0"`
	Features  int   `yaml:"features" mapstructure:"features" validate:"gt=0"`
	Labels    int   `yaml:"labels" mapstructure:"labels" validate:"gt=0"`
	TimeSteps int   `yaml:"time_steps" mapstructure:"time_steps" validate:"gte=0"`
}

// PrefetchConfig configures prefetch engines.
type PrefetchConfig struct {
	Depth           int           `yaml:"depth" mapstructure:"depth" validate:"gte=2"`
	CallbackEvery   int           `yaml:"callback_every" mapstructure:"callback_every" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// SplitConfig configures the splitter. Either Ratios or Counts may be set;
// with neither the source is not split.
type SplitConfig struct {
	Total    int64     `yaml:"total" mapstructure:"total" validate:"gte=0"`
	Ratios   []float64 `yaml:"ratios" mapstructure:"ratios" validate:"dive,gt=0,lt=1"`
	Counts   []int64   `yaml:"counts" mapstructure:"counts" validate:"dive,gte=0"`
	Names    []string  `yaml:"names" mapstructure:"names"`
	AutoSeek bool      `yaml:"auto_seek" mapstructure:"auto_seek"`
}

// Enabled reports whether a split is configured.
func (c SplitConfig) Enabled() bool {
	return len(c.Ratios) > 0 || len(c.Counts) > 0
}

// TelemetryConfig configures OTLP export of metrics and traces.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true,omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset values.
func (c *IteratorConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "iterbench"
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Epochs == 0 {
		c.Epochs = 1
	}
	if c.Dataset.Batches == 0 {
		c.Dataset.Batches = 100
	}
	if c.Dataset.BatchSize == 0 {
		c.Dataset.BatchSize = 32
	}
	if c.Dataset.Features == 0 {
		c.Dataset.Features = 4
	}
	if c.Dataset.Labels == 0 {
		c.Dataset.Labels = 1
	}
	if c.Prefetch.Depth == 0 {
		c.Prefetch.Depth = 8
	}
	if c.Prefetch.ShutdownTimeout == 0 {
		c.Prefetch.ShutdownTimeout = prefetch.DefaultShutdownTimeout
	}
	if len(c.Split.Ratios) > 0 && c.Split.Total == 0 {
		c.Split.Total = c.Dataset.Batches
	}
	if c.Telemetry.Endpoint == "" && c.Telemetry.Enabled {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
}

// Validate checks struct tags and the constraints spanning several fields.
// Every failure is a CONFIGURATION_ERROR.
func (c *IteratorConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	s := c.Split
	v := validation.New()
	v.Custom(len(s.Ratios) == 0 || len(s.Counts) == 0, "split", "ratios and counts are mutually exclusive")
	if len(s.Ratios) > 0 {
		v.MaxSum("split.ratios", s.Ratios, 1, ratioTolerance)
		v.Min("split.total", s.Total, 1)
		v.Custom(s.Total <= c.Dataset.Batches, "split.total", "must not exceed dataset.batches")
		v.Custom(len(s.Names) <= len(s.Ratios)+1, "split.names", "more names than partitions")
	}
	if len(s.Counts) > 0 {
		var sum int64
		for _, n := range s.Counts {
			sum += n
		}
		v.Custom(sum <= c.Dataset.Batches, "split.counts", "must not sum above dataset.batches")
		v.Custom(len(s.Names) <= len(s.Counts), "split.names", "more names than partitions")
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// MeterConfig converts the telemetry section for observability.InitMeter.
func (c *IteratorConfig) MeterConfig() *observability.MeterConfig {
	mc := observability.DefaultMeterConfig(c.Name)
	mc.ServiceVersion = c.versionOrDefault(mc.ServiceVersion)
	mc.Environment = c.Environment
	mc.Endpoint = c.Telemetry.Endpoint
	mc.Insecure = c.Telemetry.Insecure
	mc.Interval = c.Telemetry.Interval
	return &mc
}

// TracerConfig converts the telemetry section for observability.InitTracer.
func (c *IteratorConfig) TracerConfig() *observability.TracerConfig {
	tc := observability.DefaultTracerConfig(c.Name)
	tc.ServiceVersion = c.versionOrDefault(tc.ServiceVersion)
	tc.Environment = c.Environment
	tc.Endpoint = c.Telemetry.Endpoint
	tc.Insecure = c.Telemetry.Insecure
	tc.SampleRate = c.Telemetry.SampleRate
	return &tc
}

func (c *IteratorConfig) versionOrDefault(def string) string {
	if c.Version != "" {
		return c.Version
	}
	return def
}

// Load reads an IteratorConfig for service, applies defaults and validates it.
func Load(service string, opts ...LoaderOption) (*IteratorConfig, error) {
	var cfg IteratorConfig
	if err := LoadConfig(service, &cfg, opts...); err != nil {
		return nil, errors.Configuration("config", err.Error()).WithCause(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
