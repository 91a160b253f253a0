package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/infra/adapter/persistence/sqlite"
	"campaign-radar/internal/infra/adapter/persistence/statefile"
	"campaign-radar/internal/infra/fetcher"
	"campaign-radar/internal/infra/notifier"
	"campaign-radar/internal/infra/recordsync"
	"campaign-radar/internal/observability/logging"
	"campaign-radar/internal/pkg/config"
	"campaign-radar/internal/pkg/sourcecfg"
	"campaign-radar/internal/repository"
	"campaign-radar/internal/usecase/crawl"
	"campaign-radar/internal/usecase/reconcile"
)

// cliOptions collects every command-line flag. Environment variables
// cover operational knobs (fetch limits, sync endpoint, metrics port);
// flags cover what an operator changes per invocation.
type cliOptions struct {
	configPath   string
	outPath      string
	statePath    string
	stateBackend string
	sync         bool
	lookbackDays int

	requireDeadline bool
	activeOnly      bool
	validWithinDays int

	runTimeout time.Duration
	periodic   bool
}

func parseFlags() *cliOptions {
	opts := &cliOptions{}
	flag.StringVar(&opts.configPath, "config", "configs/sources.json", "source configuration file (.json, .yaml or .yml)")
	flag.StringVar(&opts.outPath, "out", "output/campaigns.json", "path for the full record output")
	flag.StringVar(&opts.statePath, "state", "output/state.json", "state file path (or sqlite database path with -state-backend=sqlite)")
	flag.StringVar(&opts.stateBackend, "state-backend", "file", "state persistence backend: file or sqlite")
	flag.BoolVar(&opts.sync, "sync", true, "push records to the record store when RECORD_SYNC_URL is set")
	flag.IntVar(&opts.lookbackDays, "lookback-days", reconcile.DefaultPolicy().LookbackDays, "window in days for the new_this_period partition")
	flag.BoolVar(&opts.requireDeadline, "require-deadline", false, "drop records without a parsed deadline")
	flag.BoolVar(&opts.activeOnly, "active-only", false, "drop records whose deadline has already passed")
	flag.IntVar(&opts.validWithinDays, "valid-within-days", 0, "keep only records whose deadline falls within N days (0 disables)")
	flag.DurationVar(&opts.runTimeout, "run-timeout", 10*time.Minute, "overall deadline for one crawl run")
	flag.BoolVar(&opts.periodic, "periodic", false, "run on a cron schedule (CRON_SCHEDULE, TIMEZONE) instead of once")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Error("crawler exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, opts *cliOptions) error {
	sources, err := sourcecfg.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load source config: %w", err)
	}
	logger.Info("source config loaded",
		slog.String("path", opts.configPath),
		slog.Int("sources", len(sources)),
		slog.Int("enabled", len(sourcecfg.Enabled(sources))),
	)

	fetchCfg, warnings := fetcher.LoadConfigFromEnv()
	for _, w := range warnings {
		logger.Warn("fetch config fallback", slog.String("warning", w))
	}

	states, cleanup, err := newStateRepository(ctx, opts)
	if err != nil {
		return fmt.Errorf("init state backend: %w", err)
	}
	defer cleanup()

	syncer := newRecordSyncer(logger, opts.sync)
	notif := newNotifier(logger)

	svc := crawl.NewService(fetcher.NewHTTPFetcher(fetchCfg), states, syncer, notif, crawl.Options{
		Filters: buildFilters(opts),
		Reconcile: reconcile.Policy{
			LookbackDays: opts.lookbackDays,
		},
	})

	if opts.periodic {
		return runPeriodic(ctx, logger, svc, sources, opts)
	}
	return runOnce(ctx, logger, svc, sources, opts)
}

func buildFilters(opts *cliOptions) crawl.RunFilters {
	filters := crawl.RunFilters{
		RequireDeadline: opts.requireDeadline,
		ActiveOnly:      opts.activeOnly,
	}
	if opts.validWithinDays > 0 {
		days := opts.validWithinDays
		filters.ValidWithinDays = &days
	}
	return filters
}

// newStateRepository picks the persistence backend. The returned cleanup
// closes the sqlite handle; for the file backend it is a no-op.
func newStateRepository(ctx context.Context, opts *cliOptions) (repository.StateRepository, func(), error) {
	switch opts.stateBackend {
	case "file":
		return statefile.NewRepo(opts.statePath), func() {}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, opts.statePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStateRepo(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q (want file or sqlite)", opts.stateBackend)
	}
}

func newRecordSyncer(logger *slog.Logger, enabled bool) recordsync.RecordSyncer {
	if !enabled {
		return recordsync.NewNoOpSyncer()
	}
	cfg, warnings := recordsync.LoadConfigFromEnv()
	for _, w := range warnings {
		logger.Warn("record sync config fallback", slog.String("warning", w))
	}
	if cfg.Enabled {
		logger.Info("record sync enabled", slog.String("base_url", cfg.BaseURL))
	}
	return recordsync.New(cfg)
}

func newNotifier(logger *slog.Logger) notifier.Notifier {
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		return notifier.NewNoOpNotifier()
	}
	logger.Info("slack notifications enabled")
	return notifier.NewSlackNotifier(notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    10 * time.Second,
	})
}

// runOnce executes a single crawl and writes the output files.
func runOnce(ctx context.Context, logger *slog.Logger, svc *crawl.Service, sources []*entity.SourceConfig, opts *cliOptions) error {
	runCtx, cancel := context.WithTimeout(ctx, opts.runTimeout)
	defer cancel()

	report, err := svc.Run(runCtx, sources)
	if err != nil {
		return err
	}

	if err := writeOutputs(opts.outPath, report); err != nil {
		return err
	}
	logger.Info("output written",
		slog.String("path", opts.outPath),
		slog.Int("records", report.Stats.Records),
		slog.Int("new_this_period", report.Stats.NewThisPeriod),
		slog.Int("newly_expired", report.Stats.NewlyExpired),
	)
	return nil
}

// runPeriodic schedules crawls with cron and keeps a metrics endpoint up.
// Schedule and timezone come from the environment; invalid values fall
// back to the defaults with a warning, matching the config loader's
// fail-safe behavior.
func runPeriodic(ctx context.Context, logger *slog.Logger, svc *crawl.Service, sources []*entity.SourceConfig, opts *cliOptions) error {
	schedule := config.LoadEnvString("CRON_SCHEDULE", "0 6 * * *")
	if err := config.ValidateCronSchedule(schedule); err != nil {
		logger.Warn("invalid cron schedule, using default",
			slog.String("schedule", schedule), slog.Any("error", err))
		schedule = "0 6 * * *"
	}
	timezone := config.LoadEnvString("TIMEZONE", "Asia/Tokyo")
	if err := config.ValidateTimezone(timezone); err != nil {
		logger.Warn("invalid timezone, using UTC",
			slog.String("timezone", timezone), slog.Any("error", err))
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	startMetricsServer(ctx, logger)

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(schedule, func() {
		if err := runOnce(ctx, logger, svc, sources, opts); err != nil {
			logger.Error("scheduled crawl failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	c.Start()
	logger.Info("crawler started",
		slog.String("schedule", schedule),
		slog.String("timezone", timezone),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("cron jobs did not finish before shutdown deadline")
	}
	return nil
}

// writeOutputs writes the full record file plus the new/expired
// partition files next to it.
func writeOutputs(outPath string, report *crawl.Report) error {
	if err := crawl.WriteRecords(outPath, report.Result.Records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	if err := crawl.WritePartitions(outPath, report.Result); err != nil {
		return fmt.Errorf("write partitions: %w", err)
	}
	return nil
}
