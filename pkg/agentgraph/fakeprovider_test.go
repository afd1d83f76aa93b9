// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"

	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// fakeProvider is a scripted llm.Provider: each call to Complete pops the
// next entry off responses, so a test can script a tool-call round
// followed by a text completion.
type fakeProvider struct {
	responses []*types.LLMResponse
	errs      []error
	calls     int
	gotTools  [][]shuttle.Tool
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Complete(ctx context.Context, messages []types.Message, tools []shuttle.Tool, params llm.Params) (*types.LLMResponse, error) {
	idx := f.calls
	f.calls++
	f.gotTools = append(f.gotTools, tools)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.responses) {
		return &types.LLMResponse{Content: "done"}, nil
	}
	return f.responses[idx], nil
}

var _ llm.Provider = (*fakeProvider)(nil)
