// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

func TestParaphrase_UsesCleanedResponse(t *testing.T) {
	provider := &fakeProvider{responses: []*types.LLMResponse{{Content: "Use hostname instead of hostnane."}}}
	got := Paraphrase(context.Background(), provider, `"Based on the documentation, use hostname instead of hostnane."`)
	assert.Equal(t, "Use hostname instead of hostnane.", got)
}

func TestParaphrase_FallsBackOnLLMError(t *testing.T) {
	provider := &fakeProvider{errs: []error{errors.New("provider down")}}
	got := Paraphrase(context.Background(), provider, "original draft answer")
	assert.Equal(t, "original draft answer", got)
}

func TestParaphrase_FallsBackOnEmptyResponse(t *testing.T) {
	provider := &fakeProvider{responses: []*types.LLMResponse{{Content: ""}}}
	got := Paraphrase(context.Background(), provider, "original draft answer")
	assert.Equal(t, "original draft answer", got)
}

func TestParaphrase_EmptyInputShortCircuits(t *testing.T) {
	provider := &fakeProvider{}
	got := Paraphrase(context.Background(), provider, "")
	assert.Equal(t, "", got)
	assert.Equal(t, 0, provider.calls)
}

func TestStripErrorTypeTokens_RemovesAllCapsSnakeCase(t *testing.T) {
	got := stripErrorTypeTokens("The error was TYPO_IN_COMMAND, now fixed.")
	assert.NotContains(t, got, "TYPO_IN_COMMAND")
}

func TestStripErrorTypeTokens_LeavesOrdinaryTextAlone(t *testing.T) {
	got := stripErrorTypeTokens("The interface is GigabitEthernet0/0.")
	assert.Contains(t, got, "GigabitEthernet0/0")
}
