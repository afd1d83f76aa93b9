// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chatcompletions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

func TestClient_Complete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []chatCompletionChoice{{
				Message:      chatMessage{Role: "assistant", Content: "hello"},
				FinishReason: "stop",
			}},
			Usage: chatCompletionUsage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Name: "test", APIKey: "test-key", Model: "gpt-test", Endpoint: srv.URL}, nil)
	resp, err := client.Complete(context.Background(), []types.Message{{Role: "user", Content: "hi"}}, nil, llm.Params{})
	require.NoError(t, err)
	require.Equal(t, "hello", resp.Content)
	require.Equal(t, "end_turn", resp.StopReason)
	require.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestClient_Complete_ServerErrorBecomesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{Name: "test", Endpoint: srv.URL, Timeout: time.Second}, nil)
	_, err := client.Complete(context.Background(), []types.Message{{Role: "user", Content: "hi"}}, nil, llm.Params{})
	require.Error(t, err)

	var unavailable *llm.UnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestClient_Complete_ToolCallRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []chatCompletionChoice{{
				Message: chatMessage{
					Role: "assistant",
					ToolCalls: []toolCall{{
						ID:   "call_1",
						Type: "function",
						Function: functionCall{
							Name:      "get_device_running_config",
							Arguments: `{"device_name":"R1"}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL}, nil)
	resp, err := client.Complete(context.Background(), []types.Message{{Role: "user", Content: "show config"}}, nil, llm.Params{})
	require.NoError(t, err)
	require.Equal(t, "tool_use", resp.StopReason)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "get_device_running_config", resp.ToolCalls[0].Name)
	require.Equal(t, "R1", resp.ToolCalls[0].Input["device_name"])
}

func TestClient_Stream_EmitsTextThenCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		chunks := []string{
			`data: {"choices":[{"delta":{"content":"hel"}}]}`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`data: [DONE]`,
		}
		for _, c := range chunks {
			w.Write([]byte(c + "\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL}, nil)
	ch, err := client.Stream(context.Background(), []types.Message{{Role: "user", Content: "hi"}}, nil, llm.Params{})
	require.NoError(t, err)

	var text string
	for chunk := range ch {
		if chunk.Kind == "text" {
			text += chunk.Delta
		}
	}
	require.Equal(t, "hello", text)
}
