package port

import "context"

// Completer submits a prompt to a text-completion backend and returns the
// raw model output. Implementations honor ctx for cancellation and
// deadlines; a deadline hit surfaces as ctx.Err() wrapped in the returned
// error.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}
