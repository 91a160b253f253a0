package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/infra/notifier"
	"campaign-radar/internal/infra/parser"
	"campaign-radar/internal/infra/recordsync"
	"campaign-radar/internal/observability/logging"
	"campaign-radar/internal/observability/metrics"
	"campaign-radar/internal/repository"
	"campaign-radar/internal/usecase/reconcile"
	"campaign-radar/internal/utils/text"
)

// Fetcher downloads one source document.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
}

// Options configures a crawl run.
type Options struct {
	// Concurrency bounds in-flight source fetches.
	// Default: 4
	Concurrency int

	// Filters are the run-mode record filters.
	Filters RunFilters

	// Reconcile is the diff engine policy (lookback window, archived
	// re-appearance handling).
	Reconcile reconcile.Policy
}

// Stats counts what happened to candidates during one run.
type Stats struct {
	Sources       int
	SourceErrors  int
	Candidates    int
	FilteredOut   int
	Dropped       int
	FilterDropped int
	Records       int
	SyncFailures  int
	NewThisPeriod int
	NewlyExpired  int
}

// Report is the outcome of one crawl run.
type Report struct {
	RunID    string
	RunDate  entity.Date
	Stats    Stats
	Result   *entity.RunResult
	Duration time.Duration
}

// Service orchestrates the pipeline over all configured sources.
type Service struct {
	fetcher  Fetcher
	states   repository.StateRepository
	syncer   recordsync.RecordSyncer
	notifier notifier.Notifier
	engine   *reconcile.Engine
	opts     Options
	now      func() time.Time
}

// NewService wires the crawl pipeline.
func NewService(fetcher Fetcher, states repository.StateRepository, syncer recordsync.RecordSyncer, notif notifier.Notifier, opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Service{
		fetcher:  fetcher,
		states:   states,
		syncer:   syncer,
		notifier: notif,
		engine:   reconcile.NewEngine(opts.Reconcile),
		opts:     opts,
		now:      time.Now,
	}
}

// sourceResult is one source's extraction outcome, buffered so results
// can be replayed in configuration order regardless of fetch order.
type sourceResult struct {
	records     []entity.CampaignRecord
	candidates  int
	filteredOut int
	dropped     int
	failed      bool
}

// Run executes one crawl: fetch and extract every enabled source
// concurrently, replay results in configuration order, deduplicate,
// apply run filters, reconcile against persisted state, sync, and
// notify. A single source's failure never aborts the run; on context
// deadline the already-collected records still flow through the rest
// of the pipeline.
func (s *Service) Run(ctx context.Context, sources []*entity.SourceConfig) (*Report, error) {
	start := s.now()
	runID := uuid.New().String()
	runDate := entity.DateOf(start)
	logger := logging.WithRunID(logging.FromContext(ctx), runID)

	snapshot, err := s.states.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	normalizer := NewNormalizer(runDate)
	results := make([]sourceResult, len(sources))

	var g errgroup.Group
	sem := semaphore.NewWeighted(int64(s.opts.Concurrency))

	for i, src := range sources {
		if src.Disabled {
			logger.Info("source disabled, skipping", slog.String("source_id", src.ID))
			continue
		}

		i, src := i, src
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = sourceResult{failed: true}
				metrics.RecordSourceCrawlError(src.ID, "timeout")
				return nil
			}
			defer sem.Release(1)

			results[i] = s.crawlSource(ctx, logger, normalizer, src)
			return nil
		})
	}
	_ = g.Wait()

	// Everything after collection must survive run-deadline expiry:
	// partial results are valid and still get reconciled, persisted,
	// and synced. In-flight fetches were already abandoned above.
	pubCtx := context.WithoutCancel(ctx)
	if ctx.Err() != nil {
		logger.Warn("run deadline expired, publishing partial results",
			slog.Any("error", ctx.Err()))
	}

	stats := Stats{}
	var collected []entity.CampaignRecord
	for i, src := range sources {
		if src.Disabled {
			continue
		}
		stats.Sources++
		res := results[i]
		if res.failed {
			stats.SourceErrors++
			continue
		}
		stats.Candidates += res.candidates
		stats.FilteredOut += res.filteredOut
		stats.Dropped += res.dropped
		collected = append(collected, res.records...)
	}

	records := Dedup(collected)
	records, stats.FilterDropped = s.opts.Filters.Apply(records, runDate)
	stats.Records = len(records)

	updated, runResult := s.engine.Reconcile(runDate, records, snapshot.Entries)
	stats.NewThisPeriod = len(runResult.NewThisPeriod)
	stats.NewlyExpired = len(runResult.NewlyExpired)

	snapshot.Entries = updated
	if err := s.states.Save(pubCtx, snapshot, snapshot.Version); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, fmt.Errorf("state changed by a concurrent run: %w", err)
		}
		return nil, fmt.Errorf("save state: %w", err)
	}

	stats.SyncFailures = s.syncRecords(pubCtx, logger, runResult)

	duration := s.now().Sub(start)
	continuing := stats.Records - stats.NewThisPeriod
	if continuing < 0 {
		continuing = 0
	}
	metrics.RecordRun(duration, stats.Records, stats.NewThisPeriod, continuing, stats.NewlyExpired)

	logger.Info("crawl run complete",
		slog.String("run_date", runDate.String()),
		slog.Int("sources", stats.Sources),
		slog.Int("source_errors", stats.SourceErrors),
		slog.Int("candidates", stats.Candidates),
		slog.Int("filtered_out", stats.FilteredOut),
		slog.Int("dropped", stats.Dropped),
		slog.Int("filter_dropped", stats.FilterDropped),
		slog.Int("records", stats.Records),
		slog.Int("new_this_period", stats.NewThisPeriod),
		slog.Int("newly_expired", stats.NewlyExpired),
		slog.Int("sync_failures", stats.SyncFailures),
		slog.Duration("duration", duration))

	summary := &notifier.RunSummary{
		RunID:         runID,
		RunDate:       runDate,
		Sources:       stats.Sources,
		SourceErrors:  stats.SourceErrors,
		Records:       stats.Records,
		NewThisPeriod: stats.NewThisPeriod,
		NewlyExpired:  stats.NewlyExpired,
		Duration:      duration,
		Highlights:    highlightNames(runResult.NewThisPeriod),
	}
	if err := s.notifier.NotifyRunSummary(pubCtx, summary); err != nil {
		logger.Warn("run summary notification failed", slog.Any("error", err))
	}

	return &Report{
		RunID:    runID,
		RunDate:  runDate,
		Stats:    stats,
		Result:   runResult,
		Duration: duration,
	}, nil
}

// crawlSource fetches and extracts one source. Failures are recorded,
// never propagated.
func (s *Service) crawlSource(ctx context.Context, logger *slog.Logger, normalizer *Normalizer, src *entity.SourceConfig) sourceResult {
	start := s.now()

	raw, err := s.fetcher.Fetch(ctx, src.Endpoint)
	if err != nil {
		errorType := "fetch_failed"
		if errors.Is(err, context.DeadlineExceeded) {
			errorType = "timeout"
		}
		logger.Warn("source fetch failed",
			slog.String("source_id", src.ID),
			slog.String("url", src.Endpoint),
			slog.Any("error", err))
		metrics.RecordSourceCrawlError(src.ID, errorType)
		return sourceResult{failed: true}
	}

	p, err := parser.ForFormat(src.Format)
	if err != nil {
		logger.Error("no parser for source format",
			slog.String("source_id", src.ID),
			slog.Any("error", err))
		metrics.RecordSourceCrawlError(src.ID, "format_error")
		return sourceResult{failed: true}
	}

	candidates, err := p.Parse(raw, src)
	if err != nil {
		logger.Warn("source content unparsable",
			slog.String("source_id", src.ID),
			slog.String("url", src.Endpoint),
			slog.Any("error", err))
		metrics.RecordSourceCrawlError(src.ID, "format_error")
		return sourceResult{failed: true}
	}

	filter := NewKeywordFilter(src)
	res := sourceResult{candidates: len(candidates)}

	for _, c := range candidates {
		if !filter.Matches(c) {
			res.filteredOut++
			metrics.RecordCandidateDropped(src.ID, "keyword_filter")
			continue
		}
		record := normalizer.Normalize(c, src)
		if record == nil {
			res.dropped++
			metrics.RecordCandidateDropped(src.ID, "missing_identity")
			continue
		}
		res.records = append(res.records, *record)
	}

	metrics.RecordSourceCrawl(src.ID, s.now().Sub(start), len(candidates))
	logger.Info("source crawled",
		slog.String("source_id", src.ID),
		slog.Int("candidates", len(candidates)),
		slog.Int("records", len(res.records)))

	return res
}

// syncRecords mirrors the run outcome into the record store: upsert
// every emitted record, archive every newly expired identity. Each
// failure is logged and counted; none aborts the run.
func (s *Service) syncRecords(ctx context.Context, logger *slog.Logger, result *entity.RunResult) int {
	failures := 0

	for _, rec := range result.Records {
		if err := s.syncer.Upsert(ctx, rec); err != nil {
			failures++
			logger.Warn("record upsert failed",
				slog.String("external_id", rec.ExternalID),
				slog.Any("error", err))
		}
	}

	for _, rec := range result.NewlyExpired {
		if err := s.syncer.Archive(ctx, rec.ExternalID); err != nil {
			failures++
			logger.Warn("record archive failed",
				slog.String("external_id", rec.ExternalID),
				slog.Any("error", err))
		}
	}

	return failures
}

// highlightNames picks up to five new campaign names for the run
// summary notification, truncated for display.
func highlightNames(newRecords []entity.CampaignRecord) []string {
	const limit = 5
	var names []string
	for _, rec := range newRecords {
		if rec.Name == "" {
			continue
		}
		names = append(names, text.TruncateRunes(rec.Name, 40, "…"))
		if len(names) == limit {
			break
		}
	}
	return names
}
