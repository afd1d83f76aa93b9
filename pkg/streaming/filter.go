// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package streaming

import "strings"

// sentinel pairs the filter strips entirely, including their content
// (§4.7 "Drop any tokens between <TOOLCALL>...</TOOLCALL> or
// <THINKING>...</THINKING> sentinels if present").
type sentinelPair struct {
	open, close string
}

var sentinels = []sentinelPair{
	{"<TOOLCALL>", "</TOOLCALL>"},
	{"<THINKING>", "</THINKING>"},
}

// longestOpenPrefix is the length of the longest sentinel tag, open or
// close, used to size the filter's internal buffer so a sentinel split across two
// chunks is never mistaken for plain text (§4.7 "Buffer enough characters
// to recognize split sentinels across chunks").
var longestOpenPrefix = maxSentinelLen()

func maxSentinelLen() int {
	max := 0
	for _, s := range sentinels {
		if len(s.open) > max {
			max = len(s.open)
		}
		if len(s.close) > max {
			max = len(s.close)
		}
	}
	return max
}

// ContentFilter is a dedicated streaming transducer removing
// sentinel-wrapped spans from a sequence of text deltas (§4.7, §9 "keep the
// filter as a dedicated streaming transducer with small internal
// buffering"). Not safe for concurrent use; one filter per in-flight turn.
type ContentFilter struct {
	buf      strings.Builder // unreleased tail, held back in case it's a split sentinel
	inside   bool            // true while skipping content inside an open sentinel
	closeTag string          // the close tag to watch for when inside == true
}

// NewContentFilter returns a filter ready to process the first chunk of a
// turn's stream.
func NewContentFilter() *ContentFilter {
	return &ContentFilter{}
}

// Push feeds the next raw text delta and returns the portion now safe to
// emit to the user. Some of delta may be held back internally until a
// later Push or Flush resolves whether it's a sentinel.
func (f *ContentFilter) Push(delta string) string {
	f.buf.WriteString(delta)
	pending := f.buf.String()
	f.buf.Reset()

	var out strings.Builder
	for {
		if f.inside {
			idx := strings.Index(pending, f.closeTag)
			if idx < 0 {
				// Entire remaining buffer might still contain a partial
				// close tag; keep it all back rather than emit skipped
				// content accidentally if tag detection depended on it.
				f.buf.WriteString(pending)
				return out.String()
			}
			pending = pending[idx+len(f.closeTag):]
			f.inside = false
			f.closeTag = ""
			continue
		}

		openIdx, pair := findEarliestOpen(pending)
		if openIdx < 0 {
			// No complete sentinel open tag found. The tail of pending
			// might still be the start of one split across a chunk
			// boundary; hold back only that much, emit the rest.
			safe := splitPrefixBoundary(pending)
			out.WriteString(pending[:safe])
			f.buf.WriteString(pending[safe:])
			return out.String()
		}

		out.WriteString(pending[:openIdx])
		pending = pending[openIdx+len(pair.open):]
		f.inside = true
		f.closeTag = pair.close
	}
}

// Flush releases any buffered tail that never resolved into a sentinel
// (end of stream reached mid-buffer). If the stream ended while inside a
// sentinel, nothing is released: an unterminated sentinel's content is
// never emitted (§4.7 "Never emit partial sentinel fragments").
func (f *ContentFilter) Flush() string {
	if f.inside {
		f.buf.Reset()
		return ""
	}
	out := f.buf.String()
	f.buf.Reset()
	return out
}

func findEarliestOpen(s string) (int, sentinelPair) {
	best := -1
	var bestPair sentinelPair
	for _, pair := range sentinels {
		if idx := strings.Index(s, pair.open); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			bestPair = pair
		}
	}
	return best, bestPair
}

// splitPrefixBoundary returns the index in s before its longest trailing
// substring that is also a proper prefix of some sentinel's open tag, so
// the caller can emit everything before that index and hold the rest back
// for the next Push.
func splitPrefixBoundary(s string) int {
	limit := longestOpenPrefix - 1
	if limit > len(s) {
		limit = len(s)
	}
	for n := limit; n >= 1; n-- {
		tail := s[len(s)-n:]
		for _, pair := range sentinels {
			if strings.HasPrefix(pair.open, tail) {
				return len(s) - n
			}
		}
	}
	return len(s)
}
