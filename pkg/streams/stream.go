// Package streams provides generic, pull-based, single-pass stream iterators.
//
// A Stream is a lazy, forward-only sequence. Items are pulled through the
// pipeline on demand by the consumer's own goroutine, so chaining
// transformations with Map or FilterMap adds no goroutines and no channels.
// A Stream created from a channel ends when the channel is closed and
// drained; a Stream cannot be restarted or iterated twice.
package streams

import "context"

// Stream represents a lazy, pull-based iterator over a sequence of items of
// type T.
//
// The zero value of a Stream is not useful and will panic if iterated.
type Stream[T any] struct {
	// next produces the next item. The ok flag is false once the stream is
	// exhausted. The error is non-nil only when the given context ends
	// before an item becomes available.
	next func(ctx context.Context) (T, bool, error)
}

// New creates a Stream from a read-only channel.
//
// This is the entry point for bringing data from the channel-based world
// into the synchronous pull paradigm. The returned Stream produces items
// until the source channel is closed and drained.
func New[T any](sourceChan <-chan T) *Stream[T] {
	return &Stream[T]{
		next: func(ctx context.Context) (T, bool, error) {
			select {
			case <-ctx.Done():
				var zero T
				return zero, false, ctx.Err()
			case val, ok := <-sourceChan:
				return val, ok, nil
			}
		},
	}
}

// Map returns a Stream that applies conv to every item of the source Stream.
//
// The conversion is lazy: conv runs only when the returned Stream is pulled,
// which allows multi-stage pipelines with no intermediate buffering.
func Map[T, U any](source *Stream[T], conv func(T) U) *Stream[U] {
	return &Stream[U]{
		next: func(ctx context.Context) (U, bool, error) {
			val, ok, err := source.next(ctx)
			if !ok || err != nil {
				var zero U
				return zero, false, err
			}
			return conv(val), true, nil
		},
	}
}

// FilterMap returns a Stream that applies conv to every item of the source
// Stream and drops items for which conv reports keep=false.
//
// Unlike Map, the output sequence may be shorter than the input sequence.
// The relative order of kept items is preserved.
func FilterMap[T, U any](source *Stream[T], conv func(T) (U, bool)) *Stream[U] {
	return &Stream[U]{
		next: func(ctx context.Context) (U, bool, error) {
			for {
				val, ok, err := source.next(ctx)
				if !ok || err != nil {
					var zero U
					return zero, false, err
				}
				if out, keep := conv(val); keep {
					return out, true, nil
				}
			}
		},
	}
}

// NextContext produces the next item from the stream, aborting early if the
// given context ends.
//
// It returns the item, an ok flag that is false once the stream is
// exhausted, and the context's error if the wait was interrupted. The
// consumer MUST stop iterating when ok is false or the error is non-nil.
func (s *Stream[T]) NextContext(ctx context.Context) (T, bool, error) {
	return s.next(ctx)
}

// Next produces the next item from the stream, blocking until one is
// available or the stream ends.
func (s *Stream[T]) Next() (T, bool) {
	val, ok, _ := s.next(context.Background())
	return val, ok
}

// Exhaust consumes the entire stream and returns all items as a slice.
// It returns nil items and the context's error if ctx ends mid-iteration.
func (s *Stream[T]) Exhaust(ctx context.Context) ([]T, error) {
	var items []T
	for {
		val, ok, err := s.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}

// All allows ranging over the Stream with Go 1.23+ range-over-func syntax.
func (s *Stream[T]) All(yield func(T) bool) {
	for {
		val, ok := s.Next()
		if !ok {
			return
		}
		if !yield(val) {
			return
		}
	}
}
