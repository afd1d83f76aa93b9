// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"
	"regexp"
	"strings"

	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// paraphraserParams fixes the Paraphraser node's sampling parameters
// (§4.4.4 "temperature 0.1, max 500 tokens").
var paraphraserParams = llm.Params{Temperature: 0.1, MaxTokens: 500}

var paraphraserInstructions = strings.Join([]string{
	`Rewrite the following draft response for a student.`,
	`Strip any preamble such as "Based on...", "Looking at...", or "According to the documentation...".`,
	`Remove any internal identifier written in ALL_CAPS_SNAKE_CASE and any mention of a tool name.`,
	`If the entire message is wrapped in quotes, remove the wrapping quotes.`,
	`Preserve code blocks, CLI examples, bullet structure, and numeric or address content exactly as written.`,
	`Output only the rewritten response, nothing else.`,
}, " ")

// errorTypeToken matches an all-caps snake-case identifier, the shape of a
// pattern's error_type (§4.4.4 "Remove internal identifiers: any error_type
// tokens (all-caps snake case)").
var errorTypeToken = regexp.MustCompile(`\b[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+\b`)

// Paraphrase cleans up feedbackMessage via a single LLM call. On any LLM
// error or empty response it returns the input unchanged, never losing the
// answer (§4.4.4 "Failure fallback").
func Paraphrase(ctx context.Context, provider llm.Provider, feedbackMessage string) string {
	if strings.TrimSpace(feedbackMessage) == "" {
		return feedbackMessage
	}

	messages := []types.Message{
		{Role: "system", Content: paraphraserInstructions},
		{Role: "user", Content: feedbackMessage},
	}
	resp, err := provider.Complete(ctx, messages, nil, paraphraserParams)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return feedbackMessage
	}
	return stripErrorTypeTokens(resp.Content)
}

// stripErrorTypeTokens is a defensive second pass removing any error_type
// token the model's cleanup instruction failed to drop, since §8's content
// hygiene invariant is tested against the final emitted text, not the
// model's compliance.
func stripErrorTypeTokens(s string) string {
	return errorTypeToken.ReplaceAllString(s, "")
}
