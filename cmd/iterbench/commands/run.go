package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/iterkit/bootstrap"
	"github.com/kbukum/iterkit/config"
	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/observability"
)

const serviceName = "iterbench"

type runFlags struct {
	epochs   int
	depth    int
	batches  int64
	ratios   []float64
	autoSeek bool
}

func newRunCmd(cfgFile *string) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Prefetch, split and drain the synthetic dataset",
		Long: `Run loads the configuration, builds the synthetic source, wraps it in a
prefetch engine, splits the engine when split ratios or counts are set, and
drains every partition once per epoch. Later epochs restart the first
partition, which replays the source from position 0.

Examples:
  # 70/30 split of 200 batches, three epochs
  iterbench run --batches 200 --ratios 0.7 --epochs 3

  # Override the prefetch depth from the environment
  ITERBENCH_PREFETCH_DEPTH=16 iterbench run --config ./config.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *cfgFile, &f)
			if err != nil {
				return err
			}
			return runBench(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.epochs, "epochs", 1, "number of epochs to drain")
	flags.IntVar(&f.depth, "depth", 8, "prefetch buffer depth (>= 2)")
	flags.Int64Var(&f.batches, "batches", 100, "number of synthetic batches per epoch")
	flags.Float64SliceVar(&f.ratios, "ratios", nil, "split ratios, e.g. 0.7 or 0.7,0.2")
	flags.BoolVar(&f.autoSeek, "auto-seek", false, "let partitions seek forward to their window")
	return cmd
}

// loadConfig reads the config file and environment, then applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, path string, f *runFlags) (*config.IteratorConfig, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix(EnvPrefix)}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Configuration("config", "config file not found: "+path).WithCause(err)
		}
		opts = append(opts, config.WithConfigFile(path))
	}

	var cfg config.IteratorConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, errors.Configuration("config", err.Error()).WithCause(err)
	}

	flags := cmd.Flags()
	if flags.Changed("epochs") {
		cfg.Epochs = f.epochs
	}
	if flags.Changed("depth") {
		cfg.Prefetch.Depth = f.depth
	}
	if flags.Changed("batches") {
		cfg.Dataset.Batches = f.batches
		cfg.Split.Total = 0
	}
	if flags.Changed("ratios") {
		cfg.Split.Ratios = f.ratios
		cfg.Split.Counts = nil
		cfg.Split.Total = 0
	}
	if flags.Changed("auto-seek") {
		cfg.Split.AutoSeek = f.autoSeek
	}
	return &cfg, nil
}

// runBench validates cfg and runs the bench as a bootstrap task. The
// startup summary and the final report go to out.
func runBench(ctx context.Context, cfg *config.IteratorConfig, out io.Writer) error {
	app, err := bootstrap.NewApp(cfg, bootstrap.WithOutput(out))
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		app.OnStart(func(ctx context.Context) error {
			return initTelemetry(ctx, app)
		})
	}

	b := &bench{cfg: cfg, summary: app.Summary}
	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*config.IteratorConfig]) error {
		return b.build(a)
	})
	return app.RunTask(ctx, b.run)
}

// initTelemetry installs OTLP meter and tracer providers and flushes them on
// shutdown.
func initTelemetry(ctx context.Context, app *bootstrap.App[*config.IteratorConfig]) error {
	mp, err := observability.InitMeter(ctx, app.Cfg.MeterConfig())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	tp, err := observability.InitTracer(ctx, app.Cfg.TracerConfig())
	if err != nil {
		return stderrors.Join(fmt.Errorf("telemetry: %w", err), mp.Shutdown(ctx))
	}
	app.OnStop(func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	})
	return nil
}
