package bench

import (
	"context"
	"time"

	"github.com/HelpingAI/helpingai-go/pkg/streams"
)

// Event is the unit of a benchmarkable stream.
//
// Only the arrival ordinal and timestamp of an event matter here: the
// ordinal restores arrival order, the timestamp drives the latency math.
type Event interface {
	Index() int
	Timestamp() time.Time
}

// StreamFunc starts one stream. It is called once per benchmarked request.
type StreamFunc func(ctx context.Context) (*streams.Stream[Event], error)
