// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package agentgraph wires the Intent Router, Retriever, LLM Gateway, and
// Tool Executor into the two-path graph of §4.4: teaching questions get a
// single retrieval-grounded completion; troubleshooting questions get a
// detector pre-pass, a bounded tool loop, then a paraphrase pass.
package agentgraph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
	"github.com/teradata-labs/ios-tutor-core/pkg/retriever"
	"github.com/teradata-labs/ios-tutor-core/pkg/shuttle"
	"github.com/teradata-labs/ios-tutor-core/pkg/tools"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// conversationHistoryLimit and cliHistoryLimit are the §6.4
// "limits.conversation_history_messages=4" and "limits.cli_history_entries=5"
// defaults; Graph.Option overrides them for callers with a different config.
const (
	conversationHistoryLimit = 4
	cliHistoryLimit          = 5
)

// trimHistory keeps the last limit messages, the "trimmed to the last N=4
// messages when assembled into prompts" rule of §3.
func trimHistory(history []types.Message, limit int) []types.Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

// Graph is the non-streaming entry point into the agent graph, used
// directly by tests and by the Streaming Driver's underlying node calls
// (§9's Open Question: "keep a non-streaming complete_turn for tests").
type Graph struct {
	retriever         *retriever.Retriever
	registry          *errorpatterns.Registry
	executor          *tools.Executor
	tool              shuttle.Tool
	provider          llm.Provider
	logger            *zap.Logger
	tracer            observability.Tracer
	cliHistoryLimit   int
	historyLimit      int
	maxToolIterations int
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithLogger sets the graph's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Graph) { g.logger = logger }
}

// WithTracer sets the graph's tracer.
func WithTracer(tracer observability.Tracer) Option {
	return func(g *Graph) { g.tracer = tracer }
}

// WithHistoryLimits overrides the §6.4 conversation/CLI history window
// defaults. The feedback nodes still trim the conversation history to
// conversationHistoryLimit (4) messages when they build prompts, so a
// conversationMessages value above 4 does not lengthen the prompt history.
func WithHistoryLimits(conversationMessages, cliEntries int) Option {
	return func(g *Graph) {
		g.historyLimit = conversationMessages
		g.cliHistoryLimit = cliEntries
	}
}

// WithMaxToolIterations overrides §6.4's limits.max_tool_iterations
// default (MaxToolIterations), so a deployment's configured value actually
// bounds the troubleshooting tool loop instead of the compiled-in
// constant (§9 "bound is a configuration constant, not magic").
func WithMaxToolIterations(n int) Option {
	return func(g *Graph) { g.maxToolIterations = n }
}

// New builds a Graph over its collaborators. tool may be nil if the
// deployment has no simulator configured, in which case tools are never
// offered to the model regardless of the tool-suppression rule.
func New(ret *retriever.Retriever, registry *errorpatterns.Registry, executor *tools.Executor, tool shuttle.Tool, provider llm.Provider, opts ...Option) *Graph {
	g := &Graph{
		retriever:         ret,
		registry:          registry,
		executor:          executor,
		tool:              tool,
		provider:          provider,
		logger:            zap.NewNop(),
		tracer:            observability.NewNoOpTracer(),
		cliHistoryLimit:   cliHistoryLimit,
		historyLimit:      conversationHistoryLimit,
		maxToolIterations: MaxToolIterations,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewTurnState constructs a TurnState from session state plus the incoming
// request, per §3's Lifecycle paragraph ("state is constructed per turn
// from session state + incoming request").
func (g *Graph) NewTurnState(session *types.Session, question string) *types.TurnState {
	hist, cli := session.Snapshot(g.historyLimit, g.cliHistoryLimit)
	return &types.TurnState{
		StudentQuestion:     question,
		ConversationHistory: hist,
		CLIHistory:          cli,
		LabContext:          session.LabContext,
		MasteryLevel:        session.MasteryLevel,
	}
}

// Retrieve runs the retriever against state's question/CLI window and
// records the result onto state (§4.3). Exposed so the Streaming Driver
// can share this step instead of re-deriving it.
func (g *Graph) Retrieve(ctx context.Context, state *types.TurnState) {
	query, docs, unavailable := g.retriever.Search(ctx, state.StudentQuestion, state.CLIHistory, state.LabContext.LabID, state.Intent)
	state.RetrievalQuery = query
	state.RetrievedDocs = docs
	state.RetrievalUnavailable = unavailable
}

// RunTeaching completes state via the Teaching Feedback node (§4.4.2).
func (g *Graph) RunTeaching(ctx context.Context, state *types.TurnState) error {
	return CompleteTeaching(ctx, g.provider, state)
}

// RunTroubleshooting completes state via the bounded tool loop followed by
// the paraphraser (§4.4.3, §4.4.4). onInfo, if non-nil, is invoked once per
// tool call with its name, so a streaming caller can surface the
// "tool:<name>" info milestone of §4.7 as the loop runs rather than after
// the fact; CompleteTurn's non-streaming path passes nil.
func (g *Graph) RunTroubleshooting(ctx context.Context, state *types.TurnState, onInfo func(toolName string)) error {
	feedback := &TroubleshootingFeedback{
		Registry:      g.registry,
		Executor:      g.executor,
		Tool:          g.tool,
		Provider:      g.provider,
		Logger:        g.logger,
		Tracer:        g.tracer,
		MaxIterations: g.maxToolIterations,
		OnToolCall:    onInfo,
	}
	if _, err := feedback.Run(ctx, state); err != nil {
		return err
	}
	state.FinalMessage = Paraphrase(ctx, g.provider, state.FeedbackMessage)
	return nil
}

// CompleteTurn runs one full turn to completion without streaming: router,
// retrieval, the teaching or troubleshooting path, and — for
// troubleshooting — the paraphraser. newCLI is the CLI activity observed
// since the last turn (§6.1 "ask(session_id, message, cli_history?)"); it
// is recorded onto session before the turn state snapshot is taken, so the
// router and detector see it as part of the trailing window. It records
// exactly one user and one assistant message onto session on success (§8
// "History append").
func (g *Graph) CompleteTurn(ctx context.Context, session *types.Session, question string, newCLI []types.CLIEntry) (*types.TurnState, error) {
	for _, entry := range newCLI {
		session.RecordCLI(entry)
	}
	state := g.NewTurnState(session, question)

	ctx, span := g.tracer.StartSpan(ctx, "agentgraph.complete_turn")
	defer g.tracer.EndSpan(span)

	state.Intent = Classify(state.StudentQuestion, state.CLIHistory)
	span.SetAttribute("intent", string(state.Intent))

	g.Retrieve(ctx, state)

	var err error
	switch state.Intent {
	case types.IntentTeaching, types.IntentAmbiguous:
		err = g.RunTeaching(ctx, state)
	case types.IntentTroubleshooting:
		err = g.RunTroubleshooting(ctx, state, nil)
	}
	if err != nil {
		return state, fmt.Errorf("agent graph: %w", err)
	}

	session.AppendTurn(
		types.Message{Role: "user", Content: question},
		types.Message{Role: "assistant", Content: state.FinalMessage},
	)

	return state, nil
}

// Provider exposes the graph's LLM provider, used by the Streaming Driver
// to issue the teaching path's real streaming call (§4.4.2 "streaming").
func (g *Graph) Provider() llm.Provider { return g.provider }
