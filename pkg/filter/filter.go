// Package filter removes reasoning markup from model output.
//
// HelpingAI models interleave their visible answer with two kinds of
// delimited spans: <think>…</think> for internal reasoning and <ser>…</ser>
// for structured emotional reasoning. This package hides those spans and
// normalizes the whitespace of whatever remains.
//
// Two entry points cover the two response modes:
//
//   - StreamFilter consumes live content fragments. It is a small state
//     machine that carries partial tag matches across fragment boundaries,
//     so splitting a tag across any number of fragments yields exactly the
//     same output as receiving the full text at once.
//   - Clean transforms a complete response text in one pass. It applies the
//     same span removal and normalization, plus whole-text-only touches
//     (rejoining hyphen-broken words, trimming the ends) that are not
//     possible mid-stream.
package filter

import (
	"regexp"
	"strings"
)

const (
	openThink  = "<think>"
	closeThink = "</think>"
	openSER    = "<ser>"
	closeSER   = "</ser>"
)

// mode identifies which kind of span the scanner is currently inside.
type mode int

const (
	modePlain mode = iota
	modeThink
	modeSER
)

// state is the filtering state of one choice within one stream.
type state struct {
	mode mode
	// carry holds a possible partial tag match deferred to the next fragment.
	carry string

	// Whitespace normalization state, carried across the whole stream.
	// Whitespace is held pending and flushed just before the next visible
	// character, so it never leads or trails the output.
	started         bool // a non-whitespace character has been emitted
	pendingNewlines int  // newlines seen in the current whitespace run
	pendingSpace    bool // any whitespace seen in the current run
	boundary        bool // a span just closed; keep surrounding words apart
}

// StreamFilter filters a live stream of content fragments.
//
// Parallel candidate completions (n > 1) interleave fragments by choice
// index within one stream, so each index gets its own independent state,
// created lazily on first sight. A StreamFilter must not be shared across
// streams, and is not safe for concurrent use.
type StreamFilter struct {
	choices map[int]*state
}

// NewStreamFilter returns a StreamFilter ready for a fresh stream.
func NewStreamFilter() *StreamFilter {
	return &StreamFilter{choices: make(map[int]*state)}
}

// Feed passes one content fragment of the given choice through the filter
// and returns the text that may be shown immediately.
//
// The returned text can be empty even for a non-empty fragment: the
// fragment may lie entirely inside a hidden span, or end in a partial tag
// that is buffered until the next fragment resolves it. If the stream ends
// while a partial tag or an open span remains, the unresolved text is
// simply never emitted.
func (f *StreamFilter) Feed(choiceIndex int, fragment string) string {
	st, ok := f.choices[choiceIndex]
	if !ok {
		st = &state{}
		f.choices[choiceIndex] = st
	}
	return st.feed(fragment)
}

// feed runs the scanner over the carry-over buffer plus the new fragment.
func (s *state) feed(fragment string) string {
	buf := s.carry + fragment
	s.carry = ""

	var out strings.Builder
	i := 0

	for i < len(buf) {
		rest := buf[i:]

		switch s.mode {
		case modeThink:
			if strings.HasPrefix(rest, closeThink) {
				s.mode = modePlain
				s.boundary = true
				i += len(closeThink)
				continue
			}
			if strings.HasPrefix(closeThink, rest) {
				// The close tag may still be arriving; decide next fragment.
				s.carry = rest
				return out.String()
			}
			i++ // Hidden character.

		case modeSER:
			if strings.HasPrefix(rest, closeSER) {
				s.mode = modePlain
				s.boundary = true
				i += len(closeSER)
				continue
			}
			if strings.HasPrefix(closeSER, rest) {
				s.carry = rest
				return out.String()
			}
			i++ // Hidden character.

		default: // modePlain
			if strings.HasPrefix(rest, openThink) {
				s.mode = modeThink
				i += len(openThink)
				continue
			}
			if strings.HasPrefix(rest, openSER) {
				s.mode = modeSER
				i += len(openSER)
				continue
			}
			if strings.HasPrefix(openThink, rest) || strings.HasPrefix(openSER, rest) {
				// The buffer ends in what might become an open tag.
				s.carry = rest
				return out.String()
			}
			s.emit(buf[i], &out)
			i++
		}
	}

	return out.String()
}

// emit writes one ordinary text byte through the whitespace rules:
// leading whitespace is suppressed, newline runs are capped at two, other
// whitespace runs collapse to a single space, and text resuming after a
// removed span gets a separating space. Tags are ASCII, so scanning bytes
// leaves multi-byte UTF-8 sequences intact.
func (s *state) emit(c byte, out *strings.Builder) {
	if isSpace(c) {
		if !s.started {
			return
		}
		if c == '\n' {
			s.pendingNewlines++
		}
		s.pendingSpace = true
		return
	}

	// Flush the pending whitespace run, newlines winning over spaces.
	switch {
	case s.pendingNewlines >= 2:
		out.WriteString("\n\n")
	case s.pendingNewlines == 1:
		out.WriteByte('\n')
	case s.pendingSpace:
		out.WriteByte(' ')
	case s.boundary && s.started:
		out.WriteByte(' ')
	}
	s.pendingNewlines = 0
	s.pendingSpace = false
	s.boundary = false

	out.WriteByte(c)
	s.started = true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// hyphenWrap matches a word broken across a line wrap, e.g. "convers-\nation".
var hyphenWrap = regexp.MustCompile(`(\pL)-\n\s*(\pL)`)

// Clean filters a complete, non-streamed response text.
//
// It removes the same spans and applies the same whitespace normalization
// as StreamFilter would for the full text in one fragment, then rejoins
// hyphen-broken words across line wraps and trims both ends. The hyphen
// rejoin is deliberately a whole-text-only rule: fragment boundaries make
// end-of-line ambiguous mid-stream.
func Clean(text string) string {
	var st state
	out := st.feed(text)
	out = hyphenWrap.ReplaceAllString(out, "$1$2")
	return strings.TrimSpace(out)
}
