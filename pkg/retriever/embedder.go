// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Embedder turns a query string into its embedding vector. The embedding
// provider is an external collaborator (§6, "embeddings.endpoint_url") with
// a narrow contract: this is the only method the Retriever needs from it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint (§6.4
// "embeddings.endpoint_url", "embeddings.model_name", "embeddings.dim").
// Grounded on the request/response plumbing of pkg/llm/chatcompletions.Client.
type HTTPEmbedder struct {
	endpoint   string
	model      string
	dim        int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPEmbedder builds an HTTPEmbedder against the configured endpoint.
func NewHTTPEmbedder(endpoint, model string, dim int, timeout time.Duration, logger *zap.Logger) *HTTPEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPEmbedder{
		endpoint:   endpoint,
		model:      model,
		dim:        dim,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a single embedding vector for text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("encoding embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.Warn("embedding call failed", zap.Error(err))
		return nil, fmt.Errorf("calling embeddings endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings endpoint returned %d", resp.StatusCode)
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, fmt.Errorf("embeddings endpoint returned no vectors")
	}

	vec := decoded.Data[0].Embedding
	if e.dim > 0 && len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), e.dim)
	}
	return vec, nil
}
