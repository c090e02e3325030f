// Package llm adapts the external AI completion provider behind a minimal
// interface. The provider is treated as an opaque remote function: given a
// prompt it returns generated text or fails. No retry policy lives here;
// callers decide timeouts via the context and make a single attempt per
// submission.
package llm

import "context"

// Client produces a completion for a prompt. Implementations must be safe
// for concurrent use and must honor context cancellation and deadlines.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
