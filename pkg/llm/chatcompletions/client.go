// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package chatcompletions implements the LLM Gateway's Provider contract
// (§4.6) over the OpenAI-compatible chat completions wire format. The same
// client serves both the hosted and the self-hosted deployment modes
// (§6.2): the mode only changes which Config.Endpoint and Config.APIKey
// are configured, never the protocol spoken on the wire.
//
// Grounded on the teacher's pkg/llm/openai client: message/tool
// conversion, non-streaming Complete, and SSE-based Stream follow its
// shape. The per-model USD cost table (calculateCost) is dropped — this
// domain has no billing surface to report it to — and the shared
// token-bucket rate limiter is replaced by the smaller llm.Retry
// helper (see DESIGN.md).
package chatcompletions

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// Default timeout and max tokens mirror the teacher's OpenAI defaults,
// generalized to any OpenAI-compatible endpoint.
const (
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 4096
)

// Config configures a Client for either deployment mode (§6.2). Mode is
// informational only: both modes set Endpoint and (optionally) APIKey and
// speak the same wire protocol, so there is no branch on Mode in the
// request path.
type Config struct {
	Mode     string // "hosted" or "self_hosted", config-only; see doc comment
	Name     string // provider name reported by Name(), e.g. "openai", "lab-llm"
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// Client is an OpenAI-compatible chat completions client.
type Client struct {
	name       string
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client from Config, filling in the package defaults
// for any zero-valued field the caller left unset.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) Name() string  { return c.name }
func (c *Client) Model() string { return c.model }

// Complete issues a single non-streaming chat completion, retried up to
// twice with backoff on transport failure or a 5xx response (§5).
func (c *Client) Complete(ctx context.Context, messages []types.Message, tools []shuttle.Tool, params llm.Params) (*types.LLMResponse, error) {
	req := c.buildRequest(messages, tools, params, false)

	var resp *chatCompletionResponse
	err := llm.Retry(ctx, func() error {
		var callErr error
		resp, callErr = c.callAPI(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, &llm.UnavailableError{Provider: c.name, Reason: err.Error()}
	}
	return convertResponse(resp), nil
}

// Stream issues a streaming chat completion and returns a channel of
// chunks (§4.6 "an iterator of chunks"). Streaming calls are never
// retried (§5). An error before the response starts (a transport failure
// or a non-200 status) is returned synchronously; a read error after
// streaming has begun is logged and the channel is closed, with no error
// chunk sent.
func (c *Client) Stream(ctx context.Context, messages []types.Message, tools []shuttle.Tool, params llm.Params) (<-chan types.StreamChunk, error) {
	req := c.buildRequest(messages, tools, params, true)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal stream request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llm.UnavailableError{Provider: c.name, Reason: err.Error()}
	}
	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &llm.UnavailableError{Provider: c.name, Reason: fmt.Sprintf("http %d: %s", httpResp.StatusCode, string(respBody))}
	}

	out := make(chan types.StreamChunk)
	go c.pumpStream(ctx, httpResp.Body, out)
	return out, nil
}

func (c *Client) pumpStream(ctx context.Context, body io.ReadCloser, out chan<- types.StreamChunk) {
	defer close(out)
	defer body.Close()

	toolCallBuf := make(map[int]*types.ToolCall)
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			return
		}

		var chunk chatCompletionStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			c.logger.Warn("skipping malformed stream chunk", zap.Error(err))
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			out <- types.StreamChunk{Kind: "text", Delta: choice.Delta.Content}
		}

		for _, tcDelta := range choice.Delta.ToolCalls {
			tc, ok := toolCallBuf[tcDelta.Index]
			if !ok {
				tc = &types.ToolCall{ID: tcDelta.ID, Name: tcDelta.Function.Name, Input: map[string]interface{}{}}
				toolCallBuf[tcDelta.Index] = tc
			}
			if tcDelta.Function.Arguments != "" {
				raw, _ := tc.Input["_args"].(string)
				tc.Input["_args"] = raw + tcDelta.Function.Arguments
			}
		}

		if choice.FinishReason != "" && len(toolCallBuf) > 0 {
			calls := finalizeToolCalls(toolCallBuf)
			out <- types.StreamChunk{Kind: "tool_calls", ToolCalls: calls}
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("stream read error", zap.Error(err))
	}
}

func finalizeToolCalls(buf map[int]*types.ToolCall) []types.ToolCall {
	calls := make([]types.ToolCall, 0, len(buf))
	for _, tc := range buf {
		if raw, ok := tc.Input["_args"].(string); ok {
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				tc.Input = parsed
			} else {
				tc.Input = map[string]interface{}{"_raw": raw}
			}
		}
		calls = append(calls, *tc)
	}
	return calls
}

func (c *Client) buildRequest(messages []types.Message, tools []shuttle.Tool, params llm.Params, stream bool) *chatCompletionRequest {
	req := &chatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		Stream:      stream,
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if apiTools := convertTools(tools); len(apiTools) > 0 {
		req.Tools = apiTools
		req.ToolChoice = "auto"
	}
	return req
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) callAPI(ctx context.Context, req *chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &statusError{code: httpResp.StatusCode, body: string(respBody)}
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("api error: %s (%s)", resp.Error.Message, resp.Error.Type)
	}
	return &resp, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.body)
}

func (e *statusError) StatusCode() int { return e.code }

func convertMessages(messages []types.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		cm := chatMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			argsJSON, err := json.Marshal(tc.Input)
			if err != nil {
				argsJSON = []byte("{}")
			}
			cm.ToolCalls = append(cm.ToolCalls, toolCall{
				ID:   tc.ID,
				Type: "function",
				Function: functionCall{
					Name:      tc.Name,
					Arguments: string(argsJSON),
				},
			})
		}
		out = append(out, cm)
	}
	return out
}

func convertTools(tools []shuttle.Tool) []tool {
	out := make([]tool, 0, len(tools))
	for _, t := range tools {
		def := functionDef{Name: t.Name(), Description: t.Description()}
		if schema := t.InputSchema(); schema != nil {
			def.Parameters = convertSchema(schema)
		}
		out = append(out, tool{Type: "function", Function: def})
	}
	return out
}

func convertSchema(schema *shuttle.JSONSchema) map[string]interface{} {
	params := map[string]interface{}{"type": schema.Type}
	if schema.Type == "" {
		params["type"] = "object"
	}
	if schema.Properties != nil {
		props := make(map[string]interface{}, len(schema.Properties))
		for name, prop := range schema.Properties {
			props[name] = convertSchema(prop)
		}
		params["properties"] = props
	} else if schema.Type == "object" {
		params["properties"] = map[string]interface{}{}
	}
	if len(schema.Required) > 0 {
		params["required"] = schema.Required
	}
	if schema.Description != "" {
		params["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		params["enum"] = schema.Enum
	}
	return params
}

func convertResponse(resp *chatCompletionResponse) *types.LLMResponse {
	out := &types.LLMResponse{
		Usage: types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) == 0 {
		return out
	}
	choice := resp.Choices[0]
	out.StopReason = mapStopReason(choice.FinishReason)
	out.Content = choice.Message.Content
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			args = map[string]interface{}{"_raw": tc.Function.Arguments}
		}
		out.ToolCalls = append(out.ToolCalls, types.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: args,
		})
	}
	return out
}

func mapStopReason(finishReason string) string {
	switch finishReason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls", "function_call":
		return "tool_use"
	case "content_filter":
		return "content_filter"
	default:
		return finishReason
	}
}

var (
	_ llm.Provider          = (*Client)(nil)
	_ llm.StreamingProvider = (*Client)(nil)
)
