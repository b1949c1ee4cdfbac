package notifier

import (
	"context"
	"log"
)

// LogNotifier logs messages instead of sending them. Used when Twilio is
// not configured so notification sites degrade to a no-op with a trace.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, to, body string) error {
	log.Printf("[SMS-DEBUG] Twilio not configured; would have sent to %s: %q", to, body)
	return nil
}
