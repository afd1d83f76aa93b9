// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package llm is the LLM Gateway (§4.6): two operations, complete and
// stream, over an OpenAI-compatible chat-completions wire format, switched
// between a hosted and a self-hosted endpoint by configuration only.
package llm

import (
	"context"
	"fmt"

	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// Params carries the sampling parameters common to both gateway operations
// (§4.6 "Params: temperature, top_p, max_tokens").
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Provider is the non-streaming half of the gateway contract.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, messages []types.Message, tools []shuttle.Tool, params Params) (*types.LLMResponse, error)
}

// StreamingProvider extends Provider with token-level streaming. A provider
// implements this only if its wire protocol supports SSE delta chunks.
type StreamingProvider interface {
	Provider
	// Stream returns a channel of StreamChunk values; the channel closes
	// after the final chunk or on error (check the returned error instead
	// of a chunk field). Spec describes this operation as "an iterator of
	// chunks" (§4.6) — a receive-only channel is the idiomatic Go rendering
	// of that iterator.
	Stream(ctx context.Context, messages []types.Message, tools []shuttle.Tool, params Params) (<-chan types.StreamChunk, error)
}

// UnavailableError is raised on provider 5xx or timeout (§4.6, §7
// "LlmUnavailable"). The Streaming Driver turns this into an error event
// without crashing the session.
type UnavailableError struct {
	Provider string
	Reason   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("llm %s unavailable: %s", e.Provider, e.Reason)
}
