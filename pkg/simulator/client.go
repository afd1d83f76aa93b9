// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package simulator is a thin HTTP JSON client for the Cisco IOS lab
// simulator collaborator (§6.3): the sole external system the Tool
// Executor calls on the model's behalf.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client calls the simulator's HTTP JSON endpoint (§6.3 "HTTP JSON endpoint
// for get_device_running_config(device_name)").
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client, useful for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a Client against the simulator's base URL.
// timeout should match limits.simulator.timeout_s from configuration (§6.4).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type runningConfigRequest struct {
	DeviceName string `json:"device_name"`
}

type runningConfigResponse struct {
	Config string `json:"config"`
}

// UnavailableError wraps a simulator HTTP failure (timeout, 5xx, transport
// error) with a short reason the caller can fold into a "tool_error: ..."
// string without ever bubbling it as a hard error (§4.5, §7 "ToolTimeout /
// ToolFailure").
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string { return e.Reason }

// GetDeviceRunningConfig fetches the current running-config for a device
// (§6.3). Callers should apply their own deadline via ctx; this method does
// not retry.
func (c *Client) GetDeviceRunningConfig(ctx context.Context, deviceName string) (string, error) {
	body, err := json.Marshal(runningConfigRequest{DeviceName: deviceName})
	if err != nil {
		return "", fmt.Errorf("encoding simulator request: %w", err)
	}

	url := c.baseURL + "/devices/" + deviceName + "/running-config"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building simulator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("simulator call failed", zap.String("device", deviceName), zap.Error(err))
		return "", &UnavailableError{Reason: "simulator unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", &UnavailableError{Reason: fmt.Sprintf("simulator returned %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", &UnavailableError{Reason: fmt.Sprintf("device %q not found", deviceName)}
	}

	var decoded runningConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &UnavailableError{Reason: "malformed simulator response"}
	}
	return decoded.Config, nil
}
