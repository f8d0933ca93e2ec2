package bench

import "time"

// timings records the lifecycle of one benchmarked stream: when the request
// started, when the stream ended, and when each event arrived.
type timings struct {
	Start  time.Time
	End    time.Time
	Events []time.Time
}

type timingsList []timings

// firstTokenLatencies returns the request-start to first-event latency of
// every stream that produced at least one event.
func (tl timingsList) firstTokenLatencies() []time.Duration {
	var out []time.Duration
	for _, t := range tl {
		if len(t.Events) > 0 {
			out = append(out, t.Events[0].Sub(t.Start))
		}
	}
	return out
}

// interTokenLatencies returns the gaps between consecutive events across all
// streams.
func (tl timingsList) interTokenLatencies() []time.Duration {
	var out []time.Duration
	for _, t := range tl {
		for i := 0; i < len(t.Events)-1; i++ {
			out = append(out, t.Events[i+1].Sub(t.Events[i]))
		}
	}
	return out
}

// totalTimes returns the start-to-end duration of every stream.
func (tl timingsList) totalTimes() []time.Duration {
	out := make([]time.Duration, len(tl))
	for i, t := range tl {
		out[i] = t.End.Sub(t.Start)
	}
	return out
}
