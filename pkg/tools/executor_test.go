// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
)

type stubTool struct {
	name   string
	schema *shuttle.JSONSchema
	delay  time.Duration
	result *shuttle.Result
	err    error
}

func (t *stubTool) Name() string                      { return t.name }
func (t *stubTool) Description() string               { return "stub" }
func (t *stubTool) InputSchema() *shuttle.JSONSchema   { return t.schema }
func (t *stubTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	if t.delay > 0 {
		select {
		case <-time.After(t.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return t.result, t.err
}

func TestExecutor_UnknownTool(t *testing.T) {
	exec := NewExecutor(nil, time.Second)
	res := exec.Execute(context.Background(), "does_not_exist", nil)
	require.False(t, res.Success)
	require.Contains(t, res.Data, "tool_error: unknown tool")
}

func TestExecutor_MissingRequiredArgument(t *testing.T) {
	tool := &stubTool{
		name: "echo",
		schema: shuttle.NewObjectSchema("echo", map[string]*shuttle.JSONSchema{
			"text": shuttle.NewStringSchema("text to echo"),
		}, []string{"text"}),
		result: &shuttle.Result{Success: true, Data: "ok"},
	}
	exec := NewExecutor([]shuttle.Tool{tool}, time.Second)

	res := exec.Execute(context.Background(), "echo", map[string]interface{}{})
	require.False(t, res.Success)
	require.Contains(t, res.Data, "tool_error: missing required argument")
}

func TestExecutor_SuccessfulCall(t *testing.T) {
	tool := &stubTool{
		name:   "echo",
		schema: shuttle.NewObjectSchema("echo", nil, nil),
		result: &shuttle.Result{Success: true, Data: "hello"},
	}
	exec := NewExecutor([]shuttle.Tool{tool}, time.Second)

	res := exec.Execute(context.Background(), "echo", map[string]interface{}{})
	require.True(t, res.Success)
	require.Equal(t, "hello", res.Data)
}

func TestExecutor_TimesOutWithToolErrorString(t *testing.T) {
	tool := &stubTool{
		name:   "slow",
		schema: shuttle.NewObjectSchema("slow", nil, nil),
		delay:  50 * time.Millisecond,
		result: &shuttle.Result{Success: true, Data: "too late"},
	}
	exec := NewExecutor([]shuttle.Tool{tool}, 5*time.Millisecond)

	res := exec.Execute(context.Background(), "slow", map[string]interface{}{})
	require.False(t, res.Success)
	require.Equal(t, "tool_error: timed out", res.Data)
}
