// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAppliedWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, LLMModeHosted, cfg.LLM.Mode)
	assert.Equal(t, 30, cfg.LLM.TimeoutS)
	assert.Equal(t, 1024, cfg.Embeddings.Dim)
	assert.Equal(t, 3, cfg.Retriever.KTeaching)
	assert.Equal(t, 12, cfg.Retriever.KTroubleshooting)
	assert.Equal(t, 10, cfg.Simulator.TimeoutS)
	assert.Equal(t, 3, cfg.Limits.MaxToolIterations)
	assert.Equal(t, 4, cfg.Limits.ConversationHistoryMessages)
	assert.Equal(t, 5, cfg.Limits.CLIHistoryEntries)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iostutor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  mode: self_hosted
  endpoint_url: http://localhost:8000/v1
  model_name: llama3.1:8b
retriever:
  k_teaching: 5
`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, LLMModeSelfHosted, cfg.LLM.Mode)
	assert.Equal(t, "http://localhost:8000/v1", cfg.LLM.EndpointURL)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.ModelName)
	assert.Equal(t, 5, cfg.Retriever.KTeaching)
	assert.Equal(t, 12, cfg.Retriever.KTroubleshooting)
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iostutor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  mode: hosted
  endpoint_url: http://from-file/v1
  model_name: file-model
`), 0o600))

	t.Setenv("IOSTUTOR_LLM_ENDPOINT_URL", "http://from-env/v1")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://from-env/v1", cfg.LLM.EndpointURL)
	assert.Equal(t, "file-model", cfg.LLM.ModelName)
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Mode: "bogus", EndpointURL: "x", ModelName: "y"}, Retriever: RetrieverConfig{KTeaching: 1, KTroubleshooting: 1}, Limits: LimitsConfig{MaxToolIterations: 1}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RequiresEndpointAndModel(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Mode: LLMModeHosted}, Retriever: RetrieverConfig{KTeaching: 1, KTroubleshooting: 1}, Limits: LimitsConfig{MaxToolIterations: 1}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	cfg := &Config{
		LLM:       LLMConfig{Mode: LLMModeHosted, EndpointURL: "http://x/v1", ModelName: "m"},
		Retriever: RetrieverConfig{KTeaching: 3, KTroubleshooting: 12},
		Limits:    LimitsConfig{MaxToolIterations: 3},
	}
	assert.NoError(t, cfg.Validate())
}
