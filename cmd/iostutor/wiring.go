// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/agentgraph"
	"github.com/teradata-labs/ios-tutor-core/pkg/config"
	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/labs"
	"github.com/teradata-labs/ios-tutor-core/pkg/llm/chatcompletions"
	"github.com/teradata-labs/ios-tutor-core/pkg/retriever"
	"github.com/teradata-labs/ios-tutor-core/pkg/sessions"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/simulator"
	"github.com/teradata-labs/ios-tutor-core/pkg/streaming"
	"github.com/teradata-labs/ios-tutor-core/pkg/tools"
)

// deployment bundles the wired collaborators one CLI invocation needs; the
// Graph and Driver share all of them.
type deployment struct {
	cfg      *config.Config
	graph    *agentgraph.Graph
	sessions *sessions.Manager
	logger   *zap.Logger
}

// wire builds every collaborator in the agent graph from a loaded Config,
// the way cmd/looms/root.go's initConfig feeds a single Config into its
// server construction. A missing vector index or embedder endpoint is not
// fatal here: the Retriever degrades to retrieval_unavailable per §4.3,
// and this CLI is a smoke-test harness, not the production server.
func wire(cfg *config.Config, logger *zap.Logger) (*deployment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider := chatcompletions.NewClient(chatcompletions.Config{
		Mode:     cfg.LLM.Mode,
		Name:     cfg.LLM.Mode,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.ModelName,
		Endpoint: cfg.LLM.EndpointURL,
		Timeout:  time.Duration(cfg.LLM.TimeoutS) * time.Second,
	}, logger)

	patternSources, err := patternFiles(cfg.Paths.PatternsDir)
	if err != nil {
		return nil, fmt.Errorf("listing pattern sources: %w", err)
	}
	registry, err := errorpatterns.NewRegistry(patternSources, cfg.Paths.CiscoVocabulary, errorpatterns.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("loading error pattern registry: %w", err)
	}

	var index *retriever.Index
	if cfg.Retriever.IndexPath != "" {
		idx, err := retriever.OpenIndex(cfg.Retriever.IndexPath, cfg.Embeddings.Dim, retriever.WithLogger(logger))
		if err != nil {
			logger.Warn("vector index unavailable, retrieval will report retrieval_unavailable", zap.Error(err))
		} else {
			index = idx
		}
	}

	var embedder retriever.Embedder
	if cfg.Embeddings.EndpointURL != "" {
		embedder = retriever.NewHTTPEmbedder(cfg.Embeddings.EndpointURL, cfg.Embeddings.ModelName, cfg.Embeddings.Dim, 10*time.Second, logger)
	}
	ret := retriever.New(index, embedder, retriever.WithRetrieverLogger(logger))

	var tool shuttle.Tool
	var toolList []shuttle.Tool
	if cfg.Simulator.BaseURL != "" {
		simClient := simulator.NewClient(cfg.Simulator.BaseURL, time.Duration(cfg.Simulator.TimeoutS)*time.Second)
		tool = tools.NewRunningConfigTool(simClient)
		toolList = []shuttle.Tool{tool}
	}
	executor := tools.NewExecutor(toolList, time.Duration(cfg.Simulator.TimeoutS)*time.Second)

	graph := agentgraph.New(ret, registry, executor, tool, provider,
		agentgraph.WithLogger(logger),
		agentgraph.WithHistoryLimits(cfg.Limits.ConversationHistoryMessages, cfg.Limits.CLIHistoryEntries),
		agentgraph.WithMaxToolIterations(cfg.Limits.MaxToolIterations),
	)

	catalog, err := labs.Load(cfg.Paths.LabsDir)
	if err != nil {
		return nil, fmt.Errorf("loading lab catalog: %w", err)
	}

	driver := streaming.New(graph, streaming.WithLogger(logger))
	mgr := sessions.NewManager(driver, catalog)

	return &deployment{cfg: cfg, graph: graph, sessions: mgr, logger: logger}, nil
}

// patternFiles lists the *.json pattern sources under dir (§6.4
// "paths.patterns_dir"), one errorpatterns.NewRegistry source per file. An
// empty dir yields an empty registry rather than an error: a deployment
// may run on retrieval/LLM-sourced diagnosis alone.
func patternFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}
