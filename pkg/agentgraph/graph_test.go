// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/retriever"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/tools"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

type constEmbedder struct{}

func (constEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func TestGraph_CompleteTurn_TeachingPath(t *testing.T) {
	reg := newTestRegistry(t, nil)
	ret := retriever.New(nil, constEmbedder{})
	executor := tools.NewExecutor(nil, time.Second)
	provider := &fakeProvider{responses: []*types.LLMResponse{{Content: "Enable moves you into privileged exec mode."}}}

	g := New(ret, reg, executor, nil, provider)
	session := types.NewSession("s1", types.LabContext{Title: "Lab 1"}, types.MasteryNovice)

	state, err := g.CompleteTurn(context.Background(), session, "What does enable do?", nil)

	require.NoError(t, err)
	assert.Equal(t, types.IntentTeaching, state.Intent)
	assert.Equal(t, "Enable moves you into privileged exec mode.", state.FinalMessage)
	assert.True(t, state.RetrievalUnavailable)
	assert.Len(t, session.History, 2)
}

func TestGraph_CompleteTurn_TroubleshootingPath_RunsParaphraser(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{hostnameTypoPattern})
	ret := retriever.New(nil, constEmbedder{})
	tool := &echoTool{}
	executor := tools.NewExecutor([]shuttle.Tool{tool}, time.Second)
	provider := &fakeProvider{responses: []*types.LLMResponse{
		{Content: "Based on the documentation, you typed hostnane instead of hostname."},
		{Content: "You typed hostnane instead of hostname."},
	}}

	g := New(ret, reg, executor, tool, provider)
	session := types.NewSession("s1", types.LabContext{Title: "Lab 1"}, types.MasteryNovice)

	newCLI := []types.CLIEntry{
		{Command: "hostnane Router1", Output: "hostnane Router1\n        ^\n% Invalid input detected at '^' marker."},
	}
	state, err := g.CompleteTurn(context.Background(), session, "what did I do wrong?", newCLI)

	require.NoError(t, err)
	assert.Equal(t, types.IntentTroubleshooting, state.Intent)
	assert.Equal(t, "You typed hostnane instead of hostname.", state.FinalMessage)
	assert.Equal(t, 0, tool.called)
	assert.Len(t, session.History, 2)
	assert.Len(t, session.CLIHistory, 1)
}
