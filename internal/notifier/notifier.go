// Package notifier delivers outbound text messages: match introductions
// and rematch-pending notices. Delivery is best-effort with respect to
// the state change that triggered it; a failed send is logged by the
// caller and never rolls anything back.
package notifier

import "context"

// Notifier sends a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}
