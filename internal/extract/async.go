package extract

import (
	"context"

	"github.com/cd0gu/openapi-to-repeater/internal/document"
)

// Outcome is the result of a one-shot background extraction.
type Outcome struct {
	Requests []GeneratedRequest
	Err      error
}

// Start runs extraction on its own goroutine and returns a buffered channel
// that delivers exactly one Outcome and is then closed. The channel replaces
// shared mutable state between the producer and its consumer; callers either
// receive from it or select against their own deadline. A ctx cancelled
// before extraction begins yields Outcome{Err: ctx.Err()}.
func Start(ctx context.Context, doc *document.Document, opts ...Option) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- Outcome{Err: err}
			return
		}
		reqs, err := Requests(doc, opts...)
		ch <- Outcome{Requests: reqs, Err: err}
	}()
	return ch
}
