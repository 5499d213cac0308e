package ports

import "context"

// Prompt is the message pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// Completer abstracts the external model endpoint: one system instruction,
// one user prompt, one text completion back. Treated as a remote call with
// real latency and failure modes.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
