// Package notifier sends run summary notifications after a crawl
// completes. The Notifier interface lets different channels (Slack
// webhook, no-op) be used interchangeably through dependency injection.
package notifier

import (
	"context"
	"time"

	"campaign-radar/internal/domain/entity"
)

// RunSummary is the digest of one crawl run for human consumption.
type RunSummary struct {
	RunID         string
	RunDate       entity.Date
	Sources       int
	SourceErrors  int
	Records       int
	NewThisPeriod int
	NewlyExpired  int
	Duration      time.Duration

	// Highlights are a few new campaign names for the message body,
	// already truncated for display.
	Highlights []string
}

// Notifier sends a run summary to a notification channel.
// Implementations handle rate limiting, retries, and error logging
// internally.
type Notifier interface {
	NotifyRunSummary(ctx context.Context, summary *RunSummary) error
}
