// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"

	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// TeachingParams fixes the Teaching Feedback node's sampling parameters
// (§4.4.2 "temperature 0.7, max new tokens ≈ 400, no tools"). Exported so
// the Streaming Driver can issue the equivalent streaming call itself.
var TeachingParams = llm.Params{Temperature: 0.7, TopP: 1.0, MaxTokens: 400}

// TeachingFeedback assembles the concept-focused prompt and completes the
// turn with a single, non-tool LLM call (§4.4.2). The caller chooses
// whether to invoke Complete or Stream on provider; this method only
// builds the message list, so both the streaming driver and CompleteTurn
// can reuse it.
func TeachingFeedback(state *types.TurnState) []types.Message {
	sys := teachingSystemPrompt(state.LabContext, state.MasteryLevel, state.RetrievedDocs)
	messages := []types.Message{{Role: "system", Content: sys}}
	messages = append(messages, trimHistory(state.ConversationHistory, conversationHistoryLimit)...)
	messages = append(messages, types.Message{Role: "user", Content: state.StudentQuestion})
	return messages
}

// CompleteTeaching runs the Teaching Feedback node non-streaming, used by
// Graph.CompleteTurn (§9 "keep a non-streaming complete_turn for tests").
func CompleteTeaching(ctx context.Context, provider llm.Provider, state *types.TurnState) error {
	messages := TeachingFeedback(state)
	resp, err := provider.Complete(ctx, messages, nil, TeachingParams)
	if err != nil {
		return err
	}
	state.FeedbackMessage = resp.Content
	state.FinalMessage = resp.Content
	return nil
}
