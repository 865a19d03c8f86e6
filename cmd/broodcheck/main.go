// Command broodcheck evaluates a hive's brood temperature series against the
// 33–36 °C corridor and prints the verdict.
//
// Usage:
//
//	broodcheck [-config path] [-format text|json|prometheus] [-watch]
//
// Without -config the built-in demo series is evaluated.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/beesafe/broodwatch/internal/config"
	"github.com/beesafe/broodwatch/internal/corridor"
	"github.com/beesafe/broodwatch/internal/fswatch"
	"github.com/beesafe/broodwatch/internal/notify"
	"github.com/beesafe/broodwatch/internal/report"
	"github.com/beesafe/broodwatch/internal/source"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit. It returns 0 whenever a verdict was
// produced, healthy or not, and 1 on usage, config or source errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("broodcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (default: built-in demo series)")
	format := fs.String("format", "", "output format: text | json | prometheus (overrides output.format)")
	watch := fs.Bool("watch", false, "re-evaluate when the sample file or config file changes")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			return 1
		}
	}
	slog.Debug("config loaded",
		"source", cfg.Source.Type,
		"format", cfg.Output.Format,
		"strict", cfg.Strict,
		"neural", cfg.Neural.Enabled,
	)

	c := &checker{
		format: *format,
		out:    stdout,
		notify: notify.New(cfg.Notify),
	}
	if err := c.check(ctx, cfg); err != nil {
		slog.Error("evaluation failed", "source", sourceName(cfg.Source), "err", err)
		return 1
	}
	if !*watch {
		return 0
	}

	c.watch(ctx, cfg, *configPath)
	return 0
}

// checker runs one evaluation per call. Calls are serialised so watch
// callbacks never interleave their reports.
type checker struct {
	format string // overrides cfg.Output.Format when set
	out    io.Writer
	notify *notify.Notifier

	mu sync.Mutex
}

func (c *checker) check(ctx context.Context, cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, err := source.New(cfg.Source)
	if err != nil {
		return err
	}
	samples, err := src.Samples(ctx)
	if err != nil {
		return err
	}
	if cfg.Strict {
		if err := corridor.CheckSamples(samples); err != nil {
			return err
		}
	}

	r := report.Report{Verdict: corridor.Evaluate(samples)}
	slog.Info("brood corridor evaluated",
		"source", sourceName(cfg.Source),
		"samples", len(samples),
		"healthy", r.Verdict.IsHealthy,
		"hours_outside", r.Verdict.HoursOutsideCorridor,
	)

	if cfg.Neural.Enabled {
		res, err := validateSeries(ctx, src, cfg.Neural.Corridor())
		if err != nil {
			return err
		}
		r.Series = &res
		slog.Info("neural series validated",
			"hive", res.HiveID,
			"compliant", res.Compliant,
			"hb_score", res.HBScore,
			"violations", len(res.Violations),
		)
	}

	format := cfg.Output.Format
	if c.format != "" {
		format = c.format
	}
	if err := report.Write(c.out, format, r); err != nil {
		return err
	}

	c.notify.Deliver(ctx, sourceName(cfg.Source), r.Verdict)
	return nil
}

func validateSeries(ctx context.Context, src source.Source, nc corridor.NeuralCorridor) (corridor.SeriesResult, error) {
	ss, ok := src.(source.SeriesSource)
	if !ok {
		return corridor.SeriesResult{}, errors.New("neural validation needs a csv source")
	}
	samples, err := ss.ThermalSamples(ctx)
	if err != nil {
		return corridor.SeriesResult{}, err
	}
	return corridor.ValidateSeries(nc, samples)
}

// watch re-evaluates on sample file and config file changes until ctx is
// cancelled. A config that fails to reload leaves the previous one active.
// The sample watcher follows the source path given at startup.
func (c *checker) watch(ctx context.Context, cfg *config.Config, configPath string) {
	var (
		mu      sync.Mutex
		current = cfg
	)
	get := func() *config.Config {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	recheck := func(reason string) {
		cfg := get()
		slog.Info("re-evaluating", "reason", reason)
		if err := c.check(ctx, cfg); err != nil {
			slog.Error("evaluation failed", "source", sourceName(cfg.Source), "err", err)
		}
	}

	var wg sync.WaitGroup
	if configPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := config.Watch(ctx, configPath, func(updated *config.Config) {
				mu.Lock()
				current = updated
				mu.Unlock()
				recheck("config")
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	if path := cfg.Source.Path; path != "" && cfg.Source.Type != config.DefaultSourceType {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fswatch.File(ctx, path, func() { recheck("samples") }); err != nil {
				slog.Error("sample watcher stopped", "path", path, "err", err)
			}
		}()
	} else if configPath == "" {
		slog.Warn("nothing to watch: demo source without a config file")
	}

	slog.Info("watching for changes")
	<-ctx.Done()
	wg.Wait()
	slog.Info("broodcheck shutting down")
}

// sourceName identifies a source in logs and notifications.
func sourceName(src config.Source) string {
	switch {
	case src.Path != "":
		return src.Path
	case src.Endpoint != "":
		return src.Endpoint
	case src.Type != "":
		return src.Type
	default:
		return config.DefaultSourceType
	}
}

