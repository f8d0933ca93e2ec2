package httpx

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/HelpingAI/helpingai-go/pkg/streams"
)

// doneSentinel is the payload that marks the end of a chat completion stream.
const doneSentinel = "[DONE]"

// ServerSentEvent represents a single data-bearing event read from an SSE
// response body.
type ServerSentEvent struct {
	// Index is the zero-based ordinal of the event within its stream.
	Index int
	// Value is the raw payload of the "data:" line, without the prefix.
	Value string
	// Error is set on the final event if the stream terminated abnormally.
	Error error
	// Timestamp records the local arrival time of the event.
	Timestamp time.Time
}

// ReadServerSentEvents reads the given response body as a stream of
// Server-Sent Events and returns a lazy stream of the decoded events.
//
// Only "data:" lines are emitted; blank lines, comments and other SSE fields
// are ignored. A "data: [DONE]" line ends the stream without emitting
// further events. Lines split across underlying reads are reassembled by the
// buffered reader, and a final line without a trailing newline is still
// processed.
//
// The function takes ownership of the response body and guarantees it is
// closed on every exit path: normal completion, read error, and cancellation
// of ctx (which also unblocks an in-flight read).
func ReadServerSentEvents(ctx context.Context, body io.ReadCloser) *streams.Stream[ServerSentEvent] {
	eventChan := make(chan ServerSentEvent, 100)

	// producerCtx tracks the producer goroutine's lifecycle. It ends when
	// either the parent context is canceled or the producer returns, and in
	// both cases the watcher below closes the body.
	producerCtx, cancel := context.WithCancel(ctx)

	// Watcher: closing the body is the only way to unblock a reader stuck
	// in a network read.
	go func() {
		<-producerCtx.Done()
		_ = body.Close()
	}()

	// Producer: reads lines, frames events, publishes them.
	go func() {
		defer close(eventChan)
		defer cancel()

		reader := bufio.NewReader(body)

		for index := 0; ; {
			line, err := reader.ReadString('\n')
			timestamp := time.Now() // Capture arrival time immediately after the read.

			if err != nil {
				// Prefer the context's error over the read error it caused.
				if ctx.Err() != nil {
					err = ctx.Err()
				}
				if errors.Is(err, io.EOF) {
					// The last line of the stream may lack a newline.
					if payload, ok := dataPayload(line); ok && payload != doneSentinel {
						eventChan <- ServerSentEvent{Index: index, Value: payload, Timestamp: timestamp}
					}
					return
				}
				eventChan <- ServerSentEvent{Index: index, Error: err, Timestamp: timestamp}
				return
			}

			payload, ok := dataPayload(line)
			if !ok {
				// Blank line, comment, or a non-data SSE field.
				continue
			}
			if payload == doneSentinel {
				return
			}

			eventChan <- ServerSentEvent{Index: index, Value: payload, Timestamp: timestamp}
			index++
		}
	}()

	return streams.New(eventChan)
}

// dataPayload extracts the payload of a "data:" line.
// The second return value is false for every other kind of line.
//
// IT MUST NOT BE AN EXPENSIVE OPERATION, otherwise the arrival timestamps of
// subsequent events won't be accurate.
func dataPayload(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
}
