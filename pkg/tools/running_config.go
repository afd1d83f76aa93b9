// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package tools provides the concrete shuttle.Tool implementations and the
// sequential Executor the Troubleshooting Feedback node calls into (§4.5).
package tools

import (
	"context"
	"fmt"

	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/simulator"
)

// RunningConfigTool implements get_device_running_config(device_name),
// the only tool the model may call (§4.5 "at least").
type RunningConfigTool struct {
	client *simulator.Client
}

// NewRunningConfigTool builds the tool against a simulator client.
func NewRunningConfigTool(client *simulator.Client) *RunningConfigTool {
	return &RunningConfigTool{client: client}
}

func (t *RunningConfigTool) Name() string { return "get_device_running_config" }

func (t *RunningConfigTool) Description() string {
	return "Returns the current running-config of a lab device, exactly as the student's simulated device reports it."
}

func (t *RunningConfigTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Arguments for get_device_running_config",
		map[string]*shuttle.JSONSchema{
			"device_name": shuttle.NewStringSchema("The lab device to query, e.g. \"R1\"."),
		},
		[]string{"device_name"},
	)
}

// Execute validates device_name against the schema, then calls the
// simulator. On a simulator failure it returns a Result with Success false
// carrying a "tool_error: <reason>" payload rather than a Go error, so the
// caller always has a tool-result message to hand back to the model
// (§4.5 "no external call" on schema mismatch; §7 "never bubbled").
func (t *RunningConfigTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	deviceName, ok := params["device_name"].(string)
	if !ok || deviceName == "" {
		return &shuttle.Result{
			Success: false,
			Data:    "tool_error: device_name is required and must be a string",
		}, nil
	}

	config, err := t.client.GetDeviceRunningConfig(ctx, deviceName)
	if err != nil {
		return &shuttle.Result{
			Success: false,
			Data:    fmt.Sprintf("tool_error: %s", err.Error()),
		}, nil
	}

	return &shuttle.Result{Success: true, Data: config}, nil
}
