package notifier

import "context"

// NoOpNotifier is a no-operation implementation of the Notifier
// interface, used when notifications are disabled. Null Object pattern.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyRunSummary does nothing and returns nil immediately.
func (n *NoOpNotifier) NotifyRunSummary(ctx context.Context, summary *RunSummary) error {
	return nil
}
