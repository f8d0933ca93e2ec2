// Package bench measures the latency characteristics of a chunk stream:
// time to first token, time between tokens, and total response time.
package bench

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Results holds the aggregated metrics of one benchmark run.
type Results struct {
	// TTFT is the time from request start to the first received chunk.
	TTFT Metrics
	// TBT is the time between consecutive chunks.
	TBT Metrics
	// TT is the total time from request start to stream end.
	TT Metrics
}

// BenchmarkStream executes requestCount streams, at most concurrency of them
// in flight at a time, and aggregates their timings.
//
// The first error from any stream halts the whole run. Cancellation of ctx
// halts the run with the context's error.
func BenchmarkStream(ctx context.Context, requestCount, concurrency int, streamFunc StreamFunc) (Results, error) {
	if requestCount <= 0 {
		return Results{}, nil
	}

	// localCtx stops in-flight workers once the run ends for any reason.
	localCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Both channels are sized so worker sends never block, even after the
	// collector has returned.
	timingsChan := make(chan timings, requestCount)
	errChan := make(chan error, requestCount)

	// Bounds the number of concurrently executing streams.
	semaphore := make(chan struct{}, concurrency)

	go func() {
		for i := 0; i < requestCount; i++ {
			select {
			case <-localCtx.Done():
				return
			case semaphore <- struct{}{}:
			}

			go func() {
				defer func() { <-semaphore }()
				benchmarkOneStream(localCtx, streamFunc, timingsChan, errChan)
			}()
		}
	}()

	all := make(timingsList, 0, requestCount)
	for len(all) < requestCount {
		select {
		case <-ctx.Done():
			return Results{}, ctx.Err()
		case err := <-errChan:
			return Results{}, err
		case t := <-timingsChan:
			all = append(all, t)
			fmt.Printf("[%d/%d] requests complete.\n", len(all), requestCount)
		}
	}

	return Results{
		TTFT: newMetrics(all.firstTokenLatencies()),
		TBT:  newMetrics(all.interTokenLatencies()),
		TT:   newMetrics(all.totalTimes()),
	}, nil
}

// benchmarkOneStream executes one stream to exhaustion and publishes its
// timings, or the error that stopped it.
func benchmarkOneStream(ctx context.Context, streamFunc StreamFunc, timingsChan chan<- timings, errChan chan<- error) {
	start := time.Now()

	stream, err := streamFunc(ctx)
	if err != nil {
		errChan <- err
		return
	}

	events, err := stream.Exhaust(ctx)
	end := time.Now()
	if err != nil {
		errChan <- err
		return
	}

	// Concurrent plumbing upstream may deliver events slightly out of order.
	sort.SliceStable(events, func(i, j int) bool { return events[i].Index() < events[j].Index() })

	stamps := make([]time.Time, len(events))
	for i, event := range events {
		stamps[i] = event.Timestamp()
	}

	timingsChan <- timings{Start: start, End: end, Events: stamps}
}
