// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/tools"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

func newTestRegistry(t *testing.T, patterns []errorpatterns.Pattern) *errorpatterns.Registry {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	data, err := json.Marshal(errorpatterns.PatternFile{Version: "1", Patterns: patterns})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := errorpatterns.NewRegistry([]string{path}, "")
	require.NoError(t, err)
	return reg
}

var hostnameTypoPattern = errorpatterns.Pattern{
	PatternID:         "hostnane-typo",
	Description:       "hostname typo",
	Priority:          50,
	Signatures:        []string{"% Invalid input detected"},
	CommandRegex:      `^hostnane\s`,
	ErrorType:         "TYPO_IN_COMMAND",
	DiagnosisTemplate: "IOS rejected the command as typed.",
	FixTemplate:       "Use hostname instead.",
}

type echoTool struct{ called int }

func (e *echoTool) Name() string        { return "get_device_running_config" }
func (e *echoTool) Description() string { return "test tool" }
func (e *echoTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("args", map[string]*shuttle.JSONSchema{
		"device_name": shuttle.NewStringSchema("device"),
	}, []string{"device_name"})
}
func (e *echoTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	e.called++
	return &shuttle.Result{Success: true, Data: "hostname R1\ninterface GigabitEthernet0/0\n ip address 10.0.0.1 255.255.255.0"}, nil
}

func TestToolsEnabled_SuppressedWhenDiagnosisPresent(t *testing.T) {
	diagnoses := map[int]types.Detection{0: {Matched: true}}
	assert.False(t, toolsEnabled(diagnoses))
}

func TestToolsEnabled_EnabledWhenNoDiagnosis(t *testing.T) {
	assert.True(t, toolsEnabled(map[int]types.Detection{}))
}

func TestTroubleshootingFeedback_Run_NoDiagnosis_CallsTool(t *testing.T) {
	reg := newTestRegistry(t, nil)
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)

	provider := &fakeProvider{
		responses: []*types.LLMResponse{
			{ToolCalls: []types.ToolCall{{ID: "1", Name: "get_device_running_config", Input: map[string]interface{}{"device_name": "R1"}}}},
			{Content: "Gi0/0 has 10.0.0.1."},
		},
	}

	feedback := &TroubleshootingFeedback{Registry: reg, Executor: executor, Tool: tool, Provider: provider}
	state := &types.TurnState{
		StudentQuestion: "What IP is on Gi0/0 of R1?",
		CLIHistory:      nil,
	}

	messages, err := feedback.Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, 1, tool.called)
	assert.True(t, state.ToolsEnabled)
	assert.Equal(t, 1, state.ToolCallCount)
	assert.Equal(t, "Gi0/0 has 10.0.0.1.", state.FeedbackMessage)
	assert.NotEmpty(t, messages)
}

func TestTroubleshootingFeedback_Run_WithDiagnosis_SkipsTool(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{hostnameTypoPattern})
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)

	provider := &fakeProvider{responses: []*types.LLMResponse{{Content: "You typed hostnane instead of hostname."}}}

	feedback := &TroubleshootingFeedback{Registry: reg, Executor: executor, Tool: tool, Provider: provider}
	state := &types.TurnState{
		StudentQuestion: "what did I do wrong?",
		CLIHistory: []types.CLIEntry{
			{Command: "hostnane Router1", Output: "hostnane Router1\n        ^\n% Invalid input detected at '^' marker."},
		},
	}

	_, err := feedback.Run(context.Background(), state)

	require.NoError(t, err)
	assert.False(t, state.ToolsEnabled)
	assert.Equal(t, 0, tool.called)
	assert.Len(t, provider.gotTools, 1)
	assert.Nil(t, provider.gotTools[0])
	require.Contains(t, state.CLIDiagnoses, 0)
	assert.Equal(t, "TYPO_IN_COMMAND", state.CLIDiagnoses[0].ErrorType)
}

func TestTroubleshootingFeedback_Run_OnToolCall_InvokedPerCall(t *testing.T) {
	reg := newTestRegistry(t, nil)
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)

	provider := &fakeProvider{
		responses: []*types.LLMResponse{
			{ToolCalls: []types.ToolCall{{ID: "1", Name: "get_device_running_config", Input: map[string]interface{}{"device_name": "R1"}}}},
			{Content: "Gi0/0 has 10.0.0.1."},
		},
	}

	var called []string
	feedback := &TroubleshootingFeedback{
		Registry: reg, Executor: executor, Tool: tool, Provider: provider,
		OnToolCall: func(name string) { called = append(called, name) },
	}
	state := &types.TurnState{StudentQuestion: "What IP is on Gi0/0 of R1?"}

	_, err := feedback.Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, []string{"get_device_running_config"}, called)
}

func TestTroubleshootingFeedback_Run_MaxIterationsOverride(t *testing.T) {
	reg := newTestRegistry(t, nil)
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)

	toolCall := types.ToolCall{ID: "1", Name: "get_device_running_config", Input: map[string]interface{}{"device_name": "R1"}}
	provider := &fakeProvider{
		responses: []*types.LLMResponse{
			{ToolCalls: []types.ToolCall{toolCall}},
			{Content: "final answer after one iteration"},
		},
	}

	feedback := &TroubleshootingFeedback{Registry: reg, Executor: executor, Tool: tool, Provider: provider, MaxIterations: 1}
	state := &types.TurnState{StudentQuestion: "help"}

	_, err := feedback.Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, "final answer after one iteration", state.FeedbackMessage)
}

func TestTroubleshootingFeedback_Run_IterationLimitIssuesFinalCall(t *testing.T) {
	reg := newTestRegistry(t, nil)
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)

	toolCall := types.ToolCall{ID: "1", Name: "get_device_running_config", Input: map[string]interface{}{"device_name": "R1"}}
	provider := &fakeProvider{
		responses: []*types.LLMResponse{
			{ToolCalls: []types.ToolCall{toolCall}},
			{ToolCalls: []types.ToolCall{toolCall}},
			{ToolCalls: []types.ToolCall{toolCall}},
			{Content: "final answer after the loop"},
		},
	}

	feedback := &TroubleshootingFeedback{Registry: reg, Executor: executor, Tool: tool, Provider: provider}
	state := &types.TurnState{StudentQuestion: "help"}

	_, err := feedback.Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, MaxToolIterations+1, provider.calls)
	assert.Equal(t, "final answer after the loop", state.FeedbackMessage)
}
