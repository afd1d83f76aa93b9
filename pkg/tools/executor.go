// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
)

// Executor runs tool calls one at a time within a turn: at most one
// in-flight per session, each bounded by its own timeout (§4.5
// "Concurrency: tool calls within a single turn are executed sequentially").
// Grounded on the teacher's shuttle.Executor timing/error-wrapping
// discipline, trimmed of the shared-memory and MCP-registry machinery this
// core has no use for.
type Executor struct {
	tools   map[string]shuttle.Tool
	timeout time.Duration
	logger  *zap.Logger
	tracer  observability.Tracer
}

// ExecutorOption configures an Executor at construction time.
type ExecutorOption func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithTracer sets the executor's tracer.
func WithTracer(tracer observability.Tracer) ExecutorOption {
	return func(e *Executor) { e.tracer = tracer }
}

// NewExecutor builds an Executor over a fixed tool set with a per-call
// timeout (§4.5 "Timeout: 10 s per call").
func NewExecutor(toolList []shuttle.Tool, timeout time.Duration, opts ...ExecutorOption) *Executor {
	e := &Executor{
		tools:   make(map[string]shuttle.Tool, len(toolList)),
		timeout: timeout,
		logger:  zap.NewNop(),
		tracer:  observability.NewNoOpTracer(),
	}
	for _, t := range toolList {
		e.tools[t.Name()] = t
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates the tool name and schema-required arguments, then runs
// the tool under a deadline derived from the executor's configured timeout.
// A timeout or unknown tool never returns a Go error to the caller: both
// come back as a *shuttle.Result carrying a "tool_error: ..." string, so the
// troubleshooting loop always has a tool-result message to append (§7
// "ToolTimeout / ToolFailure ... never bubbled").
func (e *Executor) Execute(ctx context.Context, name string, params map[string]interface{}) *shuttle.Result {
	ctx, span := e.tracer.StartSpan(ctx, "tools.execute")
	defer e.tracer.EndSpan(span)
	span.SetAttribute("tool.name", name)

	tool, ok := e.tools[name]
	if !ok {
		return &shuttle.Result{Success: false, Data: fmt.Sprintf("tool_error: unknown tool %q", name)}
	}

	if err := validateRequired(tool.InputSchema(), params); err != nil {
		return &shuttle.Result{Success: false, Data: fmt.Sprintf("tool_error: %s", err.Error())}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resultCh := make(chan *toolOutcome, 1)
	go func() {
		result, err := tool.Execute(callCtx, params)
		resultCh <- &toolOutcome{result: result, err: err}
	}()

	select {
	case <-callCtx.Done():
		e.logger.Warn("tool execution timed out", zap.String("tool", name))
		return &shuttle.Result{Success: false, Data: "tool_error: timed out"}
	case outcome := <-resultCh:
		elapsed := time.Since(start).Milliseconds()
		if outcome.err != nil {
			e.logger.Warn("tool execution failed", zap.String("tool", name), zap.Error(outcome.err))
			return &shuttle.Result{Success: false, Data: fmt.Sprintf("tool_error: %s", outcome.err.Error()), ExecutionTimeMs: elapsed}
		}
		outcome.result.ExecutionTimeMs = elapsed
		return outcome.result
	}
}

type toolOutcome struct {
	result *shuttle.Result
	err    error
}

// validateRequired checks that every schema-required property is present
// in params, returning a synthetic schema-mismatch error before any
// external call is made (§4.5 "schema mismatch → synthetic tool-error
// message returned to the LLM, no external call").
func validateRequired(schema *shuttle.JSONSchema, params map[string]interface{}) error {
	if schema == nil {
		return nil
	}
	for _, name := range schema.Required {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	return nil
}
