package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"dataquery-hq/dataquery/pkg/catalog"
	"dataquery-hq/dataquery/pkg/cli"
	"dataquery-hq/dataquery/pkg/distribution"
	"dataquery-hq/dataquery/pkg/history"
	"dataquery-hq/dataquery/pkg/notify"
	"dataquery-hq/dataquery/pkg/server"
	"dataquery-hq/dataquery/pkg/server/handlers"
	"dataquery-hq/dataquery/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the dataquery API server",
	Long: `Start the dataquery API server with the specified configuration.

The server loads the catalog allow-list, opens the operational and
app-state databases, starts the history pruner and the distribution
scheduler, and serves the REST API.

Examples:
  # Start with default config
  dataquery run

  # Start with custom config
  dataquery run --config /etc/dataquery/config.yaml

  # Override listen address
  dataquery run --listen 0.0.0.0:8080

  # Validate config without starting the server
  dataquery run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if runFlags.logLevel != "" {
		verbose = runFlags.logLevel == "debug"
	}
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	catalogStore, err := catalog.NewStore(cfg.Catalog.Path)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		fmt.Printf("catalog: %d databases\n", len(catalogStore.Databases()))
		return nil
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	ds, err := openDatasource(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer ds.Close()

	var hist *history.Store
	if cfg.History.IsEnabled() {
		hist, err = openHistory(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer hist.Close()

		pruner := history.NewPruner(hist, &history.PrunerConfig{
			RetentionDays: cfg.History.RetentionDays,
			Schedule:      cfg.History.RetentionSchedule,
		})
		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start history pruner", "error", err)
		} else {
			defer pruner.Stop()
		}
	}

	theories, err := openTheories(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer theories.Close()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.IsEnabled() {
		collector = metrics.NewCollector(nil, nil)
	}

	var scheduler *distribution.Scheduler
	if cfg.Distribution.Enabled {
		mailer := notify.NewMailer(&notify.Config{
			Enabled:    cfg.Notify.Enabled,
			Host:       cfg.Notify.Host,
			Port:       cfg.Notify.Port,
			Username:   cfg.Notify.Username,
			Password:   cfg.Notify.Password,
			From:       cfg.Notify.From,
			Recipients: cfg.Notify.Recipients,
		})
		if collector != nil {
			mailer.SetMetrics(collector)
		}
		users := distribution.NewQueryUserSource(ds, cfg.Distribution.UsersQuery)
		distributor := distribution.NewDistributor(theories, users,
			&distribution.Config{Seed: cfg.Distribution.Seed})
		scheduler = distribution.NewScheduler(distributor, mailer, &distribution.SchedulerConfig{
			Schedule: cfg.Distribution.Schedule,
			Enabled:  true,
		})
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
	}

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewFileWatcher(cfg.Catalog.Path, cfg.Catalog.DebounceInterval, slog.Default())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx, catalogStore.Reload); err != nil {
				slog.Error("catalog watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	h := &handlers.Handlers{
		Catalog:    catalogStore,
		Datasource: ds,
		History:    hist,
		Theories:   theories,
		Scheduler:  scheduler,
		Metrics:    collector,
		Config:     cfg,
	}

	server.Version = Version
	server.Commit = GitCommit
	server.BuildTime = BuildDate
	srv := server.NewServer(cfg, h)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
