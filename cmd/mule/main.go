// Command mule drives a synthetic workload through a fixed-capacity worker
// pool. It submits items, waits for the queue to drain, and reports per-round
// throughput. A run can be described by flags or by a YAML/JSON file, and an
// optional Prometheus endpoint exposes live pool gauges while the run lasts.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mulework/mule"
	"github.com/mulework/mule/internal/config"
	obs "github.com/mulework/mule/observability/prometheus"
)

func main() {
	maxprocs.Set()

	defaults := config.DefaultRun()
	app := &cli.App{
		Name:  "mule",
		Usage: "drive a synthetic workload through a fixed-capacity worker pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON run-configuration file",
			},
			&cli.StringFlag{
				Name:  "name",
				Value: defaults.Name,
				Usage: "pool name used in logs and metrics",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   defaults.Workers,
				Usage:   fmt.Sprintf("worker count (1..%d)", mule.MaxWorkers),
			},
			&cli.Uint64Flag{
				Name:    "items",
				Aliases: []string{"n"},
				Value:   defaults.Items,
				Usage:   "items to submit per round",
			},
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"r"},
				Value:   defaults.Rounds,
				Usage:   "rounds to run, with a counter rewind between rounds",
			},
			&cli.DurationFlag{
				Name:  "work",
				Usage: "simulated work per item (e.g. 2ms)",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "max submissions per second (0 = unlimited)",
			},
			&cli.IntFlag{
				Name:  "burst",
				Value: defaults.Burst,
				Usage: "burst size when --rate is set",
			},
			&cli.BoolFlag{
				Name:  "pin",
				Usage: "pin each worker to an OS thread",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log lifecycle events",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "log per-item progress (implies --verbose)",
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "serve Prometheus metrics on this address (e.g. :2112)",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mule:", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	run := config.DefaultRun()

	if path := c.String("config"); path != "" {
		file, err := config.LoadFile(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if err := file.Validate(); err != nil {
			return cli.Exit(fmt.Sprintf("invalid config: %v", err), 1)
		}
		run, err = file.ToRun()
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid config: %v", err), 1)
		}
	}

	// Explicit flags win over the file.
	if c.IsSet("name") {
		run.Name = c.String("name")
	}
	if c.IsSet("workers") {
		run.Workers = c.Int("workers")
	}
	if c.IsSet("items") {
		run.Items = c.Uint64("items")
	}
	if c.IsSet("rounds") {
		run.Rounds = c.Int("rounds")
	}
	if c.IsSet("work") {
		run.Work = c.Duration("work")
	}
	if c.IsSet("rate") {
		run.Rate = c.Float64("rate")
	}
	if c.IsSet("burst") {
		run.Burst = c.Int("burst")
	}
	if c.IsSet("pin") {
		run.PinWorkers = c.Bool("pin")
	}
	if c.IsSet("metrics-listen") {
		run.MetricsListen = c.String("metrics-listen")
	}

	verbosity := mule.LevelOff
	if c.Bool("verbose") {
		verbosity = mule.LevelDebug
	}
	if c.Bool("trace") {
		verbosity = mule.LevelTrace
	}

	return runWorkload(run, verbosity)
}

// workload is the shared payload handed to every kernel invocation.
type workload struct {
	processed atomic.Uint64
	work      time.Duration
}

func processItem(w *workload, _ int, _ uint64) {
	if w.work > 0 {
		time.Sleep(w.work)
	}
	w.processed.Add(1)
}

func runWorkload(run config.Run, verbosity mule.LogLevel) error {
	opts := run.PoolOptions()
	if verbosity > mule.LevelOff {
		opts = append(opts, mule.WithLogger(mule.NewWriterLogger(os.Stderr, verbosity)))
	}

	var (
		reg    *prom.Registry
		poller *obs.SnapshotPoller
	)
	if run.MetricsListen != "" {
		reg = prom.NewRegistry()
		exporter, err := obs.NewMetricsExporter("mule", reg, obs.ExporterOptions{})
		if err != nil {
			return err
		}
		poller, err = obs.NewSnapshotPoller(reg, run.MetricsPoll)
		if err != nil {
			return err
		}
		opts = append(opts, mule.WithMetrics(exporter))
	}

	load := &workload{work: run.Work}
	pool, err := mule.New(run.Workers, processItem, load, opts...)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Start(); err != nil {
		return err
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(rootCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(runCtx)

	if run.MetricsListen != "" {
		poller.AddPool(run.Name, pool)
		poller.Start(ctx)
		defer poller.Stop()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: run.MetricsListen, Handler: mux}

		g.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		})

		fmt.Printf("metrics: serving on %s/metrics\n", run.MetricsListen)
	}

	start := time.Now()

	g.Go(func() error {
		// Releases the metrics server once the workload is done.
		defer cancel()
		return driveRounds(ctx, pool, run)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("done: processed %d item(s) with %d worker(s) in %s\n",
		load.processed.Load(), pool.WorkerCount(), time.Since(start).Round(time.Millisecond))
	return nil
}

func driveRounds(ctx context.Context, pool *mule.Pool[*workload], run config.Run) error {
	var limiter *rate.Limiter
	if run.Rate > 0 {
		burst := run.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(run.Rate), burst)
	}

	for round := 1; round <= run.Rounds; round++ {
		if round > 1 {
			if err := pool.Reset(); err != nil {
				return err
			}
		}

		roundStart := time.Now()
		if limiter == nil {
			if _, err := pool.Submit(run.Items); err != nil {
				return err
			}
		} else {
			for i := uint64(0); i < run.Items; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				if _, err := pool.Submit(1); err != nil {
					return err
				}
			}
		}

		if err := pool.SynchronizeContext(ctx); err != nil {
			return err
		}

		elapsed := time.Since(roundStart)
		fmt.Printf("round %d/%d: %d item(s) in %s (%.0f items/s)\n",
			round, run.Rounds, run.Items, elapsed.Round(time.Microsecond),
			float64(run.Items)/elapsed.Seconds())
	}
	return nil
}
