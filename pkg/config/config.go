// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config loads the recognized configuration surface of §6.4:
// environment variables > config file > defaults, following the same
// viper-backed layering cmd/looms/config.go uses.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix bound by Load, e.g.
// IOSTUTOR_LLM_API_KEY overrides llm.api_key.
const EnvPrefix = "IOSTUTOR"

// Config is the full recognized option surface of §6.4, exhaustive: no
// other options are read by any package in this module.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Retriever  RetrieverConfig  `mapstructure:"retriever"`
	Simulator  SimulatorConfig  `mapstructure:"simulator"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Limits     LimitsConfig     `mapstructure:"limits"`
}

// LLMConfig is §6.4's `llm.*` surface: mode switch plus the single
// OpenAI-compatible endpoint/credential/model triple (§4.6 "hosted vs
// self-hosted... switched by configuration only").
type LLMConfig struct {
	Mode        string `mapstructure:"mode"` // "hosted" or "self_hosted"
	EndpointURL string `mapstructure:"endpoint_url"`
	APIKey      string `mapstructure:"api_key"`
	ModelName   string `mapstructure:"model_name"`
	TimeoutS    int    `mapstructure:"timeout_s"`
}

const (
	LLMModeHosted     = "hosted"
	LLMModeSelfHosted = "self_hosted"
)

// EmbeddingsConfig is §6.4's `embeddings.*` surface.
type EmbeddingsConfig struct {
	EndpointURL string `mapstructure:"endpoint_url"`
	ModelName   string `mapstructure:"model_name"`
	Dim         int    `mapstructure:"dim"`
}

// RetrieverConfig is §6.4's `retriever.*` surface.
type RetrieverConfig struct {
	IndexPath        string `mapstructure:"index_path"`
	MetadataPath     string `mapstructure:"metadata_path"`
	KTeaching        int    `mapstructure:"k_teaching"`
	KTroubleshooting int    `mapstructure:"k_troubleshooting"`
}

// SimulatorConfig is §6.4's `simulator.*` surface.
type SimulatorConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	TimeoutS int    `mapstructure:"timeout_s"`
}

// PathsConfig is §6.4's `paths.*` surface.
type PathsConfig struct {
	PatternsDir     string `mapstructure:"patterns_dir"`
	CiscoVocabulary string `mapstructure:"cisco_vocabulary"`
	LabsDir         string `mapstructure:"labs_dir"`
}

// LimitsConfig is §6.4's `limits.*` surface.
type LimitsConfig struct {
	MaxToolIterations           int `mapstructure:"max_tool_iterations"`
	ConversationHistoryMessages int `mapstructure:"conversation_history_messages"`
	CLIHistoryEntries           int `mapstructure:"cli_history_entries"`
}

// Load reads configuration from cfgFile (if non-empty) or the standard
// search locations, overlays IOSTUTOR_-prefixed environment variables,
// and unmarshals into a Config seeded with §6.4's documented defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/iostutor/")
		v.SetConfigName("iostutor")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.mode", LLMModeHosted)
	v.SetDefault("llm.timeout_s", 30)

	v.SetDefault("embeddings.dim", 1024)

	v.SetDefault("retriever.k_teaching", 3)
	v.SetDefault("retriever.k_troubleshooting", 12)

	v.SetDefault("simulator.timeout_s", 10)

	v.SetDefault("limits.max_tool_iterations", 3)
	v.SetDefault("limits.conversation_history_messages", 4)
	v.SetDefault("limits.cli_history_entries", 5)
}

// Validate checks the fields required for the configured LLM mode and
// rejects a mode outside {hosted, self_hosted} (§6.4).
func (c *Config) Validate() error {
	switch c.LLM.Mode {
	case LLMModeHosted, LLMModeSelfHosted:
	default:
		return fmt.Errorf("llm.mode must be %q or %q, got %q", LLMModeHosted, LLMModeSelfHosted, c.LLM.Mode)
	}
	if c.LLM.EndpointURL == "" {
		return fmt.Errorf("llm.endpoint_url is required")
	}
	if c.LLM.ModelName == "" {
		return fmt.Errorf("llm.model_name is required")
	}
	if c.Retriever.KTeaching <= 0 {
		return fmt.Errorf("retriever.k_teaching must be positive")
	}
	if c.Retriever.KTroubleshooting <= 0 {
		return fmt.Errorf("retriever.k_troubleshooting must be positive")
	}
	if c.Limits.MaxToolIterations <= 0 {
		return fmt.Errorf("limits.max_tool_iterations must be positive")
	}
	return nil
}
