// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/ledgersync"
	"github.com/poiesic/ledgersync/config"
	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/enrich"
	"github.com/poiesic/ledgersync/reconcile"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	storageFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the record store (overrides storage.path)",
		},
		&cli.StringFlag{
			Name:  "driver",
			Usage: "Record store driver, badger or sqlite (overrides storage.driver)",
		},
	}

	return &cli.App{
		Name:  "ledgersync",
		Usage: "Reconcile financial records from external systems into a local ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML or YAML config file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Reconcile a JSON array of records from one source system",
				Action: importCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner the records belong to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Source system name, e.g. quickbooks",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "JSON file to read, - for stdin",
						Value:   "-",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Records per chunk (overrides reconcile.chunk_size)",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Worker pool size (overrides reconcile.concurrency)",
					},
					&cli.BoolFlag{
						Name:  "enrich",
						Usage: "Classify records missing a category or vendor",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not report progress",
					},
				}, storageFlags...),
			},
			{
				Name:   "runs",
				Usage:  "List recent sync runs for an owner",
				Action: runsCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner to list runs for",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 10,
					},
				}, storageFlags...),
			},
			{
				Name:   "classify",
				Usage:  "Classify a single transaction",
				Action: classifyCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "description",
						Usage:    "Transaction description",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "amount",
						Usage: "Transaction amount",
					},
					&cli.StringFlag{
						Name:  "vendor",
						Usage: "Known vendor, if any",
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Provider to use instead of providers.default",
					},
				}, storageFlags...),
			},
			{
				Name:  "cache",
				Usage: "Classification cache maintenance",
				Subcommands: []*cli.Command{
					{
						Name:   "sweep",
						Usage:  "Delete expired cache entries",
						Action: cacheSweepCommand,
						Flags:  storageFlags,
					},
				},
			},
			{
				Name:   "prune-runs",
				Usage:  "Delete finished sync runs older than a retention period",
				Action: pruneRunsCommand,
				Flags: append([]cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Retention period",
						Value: 30 * 24 * time.Hour,
					},
				}, storageFlags...),
			},
		},
	}
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if c.IsSet("db") {
		cfg.Storage.Path = c.String("db")
	}
	if c.IsSet("driver") {
		cfg.Storage.Driver = c.String("driver")
	}
	if c.IsSet("chunk-size") {
		cfg.Reconcile.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("concurrency") {
		cfg.Reconcile.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("enrich") {
		cfg.Reconcile.Enrich = c.Bool("enrich")
	}
	return cfg, nil
}

func openLedger(c *cli.Context) (*ledgersync.Ledger, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	ledger, err := ledgersync.Open(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return ledger, nil
}

func importCommand(c *cli.Context) error {
	records, err := readRecords(c.String("file"), c.App.Reader)
	if err != nil {
		return err
	}

	ledger, err := openLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var (
		opts     []reconcile.Option
		progress *ProgressTracker
	)
	if !c.Bool("quiet") {
		progress = NewProgressTracker(c.App.ErrWriter, len(records))
		opts = append(opts, reconcile.WithProgress(progress.Update))
	}

	coord, err := ledger.NewCoordinator(opts...)
	if err != nil {
		return err
	}
	defer coord.Release()

	if progress != nil {
		progress.Start()
	}
	processed, run, err := coord.Reconcile(c.Context, c.String("owner"), c.String("source"), records)
	if progress != nil {
		progress.Finish()
	}
	if run != nil {
		writeSummary(c.App.Writer, run)
	}
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	slog.Debug("import finished", "processed", len(processed), "run_id", run.ID)
	return nil
}

func runsCommand(c *cli.Context) error {
	ledger, err := openLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.Runs().FindRecentSyncRuns(c.Context, c.String("owner"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return writeRuns(c.App.Writer, runs)
}

func classifyCommand(c *cli.Context) error {
	ledger, err := openLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var opts []enrich.Option
	if name := c.String("provider"); name != "" {
		opts = append(opts, enrich.WithProvider(name))
	}
	classifier, err := ledger.NewClassifier(opts...)
	if err != nil {
		return err
	}

	rec := &core.IncomingRecord{RecordFields: core.RecordFields{
		Description: c.String("description"),
		Amount:      c.Float64("amount"),
		Vendor:      c.String("vendor"),
	}}
	cls, err := classifier.ClassifyRecord(c.Context, rec)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	writeClassification(c.App.Writer, cls)
	return nil
}

func cacheSweepCommand(c *cli.Context) error {
	ledger, err := openLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	removed := ledger.Cache().Sweep(c.Context)
	fmt.Fprintf(c.App.Writer, "Removed %d expired cache entries\n", removed)
	return nil
}

func pruneRunsCommand(c *cli.Context) error {
	retention := c.Duration("older-than")
	if retention <= 0 {
		return fmt.Errorf("older-than must be greater than 0")
	}

	ledger, err := openLedger(c)
	if err != nil {
		return err
	}
	defer ledger.Close()

	removed, err := ledger.PruneRuns(c.Context, retention)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Pruned %d sync runs\n", removed)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
