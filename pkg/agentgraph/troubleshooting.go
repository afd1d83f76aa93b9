// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/detector"
	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/tools"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// troubleshootingFeedbackParams are the sampling parameters for the
// troubleshooting feedback node's non-streaming completions, in the tool
// loop and after it. The spec fixes params only for teaching (§4.4.2) and
// the paraphraser (§4.4.4); the feedback node's completions leave
// temperature to the gateway's default, so a zero-value temperature here is
// intentional rather than an omission.
var troubleshootingFeedbackParams = llm.Params{MaxTokens: 600}

// MaxToolIterations bounds the troubleshooting tool loop (§4.4.3 "at most 3
// iterations"; §9 "bound is a configuration constant, not magic").
const MaxToolIterations = 3

// runDetectors pre-processes the last 5 CLI entries through the Error
// Detector, building cli_diagnoses keyed to the same index window (§3
// invariant, §4.4.3 pre-processing step).
func runDetectors(window []types.CLIEntry, snap *errorpatterns.Snapshot, logger *zap.Logger) map[int]types.Detection {
	diagnoses := make(map[int]types.Detection)
	for i, entry := range window {
		det := detector.Detect(snap, entry.Command, entry.Output, logger)
		if det.Matched {
			diagnoses[i] = det
		}
	}
	return diagnoses
}

// toolsEnabled implements the tool-suppression rule (§4.4.3 "tools_enabled
// = (no cli_diagnoses present for any of the last 5 commands)"; §8 "Tool
// suppression").
func toolsEnabled(diagnoses map[int]types.Detection) bool {
	return len(diagnoses) == 0
}

// TroubleshootingFeedback runs the bounded tool-calling loop (§4.4.3); Run
// returns the accumulated message list. It always stores the model's last textual answer in FeedbackMessage,
// which the Paraphraser node then cleans up.
type TroubleshootingFeedback struct {
	Registry *errorpatterns.Registry
	Executor *tools.Executor
	Tool     shuttle.Tool
	Provider llm.Provider
	Logger   *zap.Logger
	Tracer   observability.Tracer

	// MaxIterations overrides MaxToolIterations when positive, letting a
	// caller thread limits.max_tool_iterations (§6.4) through instead of
	// the compiled-in default (§9 "bound is a configuration constant, not
	// magic").
	MaxIterations int

	// OnToolCall, if set, is invoked once per tool call with the tool's
	// name before it executes, so a streaming caller can surface the
	// "tool:<name>" info milestone of §4.7 into its event stream. Run calls
	// it synchronously and does not execute the tool until it returns.
	OnToolCall func(toolName string)
}

// maxIterations returns f.MaxIterations if positive, else the compiled-in
// default.
func (f *TroubleshootingFeedback) maxIterations() int {
	if f.MaxIterations > 0 {
		return f.MaxIterations
	}
	return MaxToolIterations
}

// Run executes pre-processing and the bounded tool loop against state,
// returning the final message list so a streaming caller can re-issue the
// last step itself (§4.4.3 step 3 "break and stream the final completion").
func (f *TroubleshootingFeedback) Run(ctx context.Context, state *types.TurnState) ([]types.Message, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := f.Tracer
	if tracer == nil {
		tracer = observability.NewNoOpTracer()
	}

	snap := f.Registry.Snapshot()
	diagnoses := runDetectors(state.CLIHistory, snap, logger)
	state.CLIDiagnoses = diagnoses
	state.ToolsEnabled = toolsEnabled(diagnoses)

	sys := troubleshootingSystemPrompt(state.LabContext, state.CLIHistory, diagnoses, state.RetrievedDocs, state.ToolsEnabled)
	messages := []types.Message{{Role: "system", Content: sys}}
	messages = append(messages, trimHistory(state.ConversationHistory, conversationHistoryLimit)...)
	messages = append(messages, types.Message{Role: "user", Content: state.StudentQuestion})

	var toolDefs []shuttle.Tool
	if state.ToolsEnabled && f.Tool != nil {
		toolDefs = []shuttle.Tool{f.Tool}
	}

	for iter := 0; iter < f.maxIterations(); iter++ {
		ctx, span := tracer.StartSpan(ctx, "agentgraph.troubleshooting.completion")
		span.SetAttribute("iteration", fmt.Sprintf("%d", iter))
		resp, err := f.Provider.Complete(ctx, messages, toolDefs, troubleshootingFeedbackParams)
		tracer.EndSpan(span)
		if err != nil {
			return messages, err
		}

		if len(resp.ToolCalls) == 0 {
			state.FeedbackMessage = resp.Content
			messages = append(messages, types.Message{Role: "assistant", Content: resp.Content})
			return messages, nil
		}

		messages = append(messages, types.Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			state.ToolCallCount++
			if f.OnToolCall != nil {
				f.OnToolCall(call.Name)
			}
			_, span := tracer.StartSpan(ctx, "agentgraph.tool_call")
			span.SetAttribute("tool.name", call.Name)
			result := f.Executor.Execute(ctx, call.Name, call.Input)
			tracer.EndSpan(span)

			messages = append(messages, types.Message{
				Role:       "tool",
				Content:    fmt.Sprintf("%v", result.Data),
				ToolCallID: call.ID,
			})
		}
	}

	// Iteration limit reached without a text completion: issue one final
	// non-tool, non-streaming completion with the accumulated tool outputs.
	resp, err := f.Provider.Complete(ctx, messages, nil, troubleshootingFeedbackParams)
	if err != nil {
		return messages, err
	}
	state.FeedbackMessage = resp.Content
	messages = append(messages, types.Message{Role: "assistant", Content: resp.Content})
	return messages, nil
}
