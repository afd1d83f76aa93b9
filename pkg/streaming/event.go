// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package streaming implements the Streaming Driver (§4.7): it runs one
// turn and yields a typed event stream with internal reasoning/tool-call
// markers filtered out of every emitted content chunk.
package streaming

import "github.com/teradata-labs/ios-tutor-core/pkg/types"

// EventType discriminates the Streaming Driver's event schema (§4.7).
type EventType string

const (
	EventInfo     EventType = "info"
	EventContent  EventType = "content"
	EventMetadata EventType = "metadata"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// Event is one entry of the typed event stream a turn yields (§4.7). Only
// the fields relevant to Type are populated; the rest are zero values.
type Event struct {
	Type EventType

	// Phase is set on EventInfo: a lifecycle milestone such as
	// "routed:troubleshooting" or "tool:get_device_running_config".
	Phase string

	// Text is set on EventContent: a user-visible text delta, guaranteed
	// free of <TOOLCALL>/<THINKING> sentinel spans (§8 "Content hygiene").
	Text string

	// Metadata is set once, on the single EventMetadata event emitted on a
	// successful turn (§4.7 "metadata is emitted exactly once on success").
	Metadata *Metadata

	// Message is set on EventError: a short, user-facing failure reason.
	Message string
	// ErrorKind classifies Message for the transport boundary, e.g.
	// "llm_unavailable" or "internal_error" (§7 propagation policy).
	ErrorKind string
}

// Metadata is the terminal payload of the one EventMetadata event per
// successful turn (§4.7 "terminal metadata: final message, suggested
// follow-ups, intent, doc ids used").
type Metadata struct {
	FinalMessage string
	Intent       string
	DocIDsUsed   []string

	// Diagnoses carries the troubleshooting path's cli_diagnoses (§3, §4.2),
	// keyed by the same CLI-history index used internally, so a stream
	// consumer can observe e.g. fuzzy_match.suggested_word (§8 scenario 2)
	// without needing a second, non-streaming call. Empty on the teaching
	// path, where no detector pre-pass runs.
	Diagnoses map[int]types.Detection

	SuggestedFollowUp []string
}
