// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package retriever

import (
	"context"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

const (
	kTeaching        = 3  // §6.4 retriever.k_teaching
	kTroubleshooting = 12 // §6.4 retriever.k_troubleshooting
)

// Retriever produces a small, prioritized document list for the feedback
// node (§4.3). It is the orchestration point over Index and Embedder; the
// index loader, query rewriter, and prioritizer each live in their own
// file so the pipeline stays testable piece by piece.
type Retriever struct {
	index    *Index
	embedder Embedder
	logger   *zap.Logger
	tracer   observability.Tracer
}

// RetrieverOption configures a Retriever at construction time.
type RetrieverOption func(*Retriever)

// WithRetrieverLogger sets the retriever's logger.
func WithRetrieverLogger(logger *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = logger }
}

// WithTracer sets the retriever's tracer.
func WithTracer(tracer observability.Tracer) RetrieverOption {
	return func(r *Retriever) { r.tracer = tracer }
}

// New builds a Retriever over an already-open Index and Embedder. index
// may be nil: Search then always returns IndexUnavailable semantics
// (§4.3 "Failure semantics: if the index is unavailable ...").
func New(index *Index, embedder Embedder, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		index:    index,
		embedder: embedder,
		logger:   zap.NewNop(),
		tracer:   observability.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search runs the full retrieval pipeline for one turn: rewrite the query,
// embed it, search the index, and prioritize the result (§4.3 inputs:
// "student_question, cli_history[-5:], current_lab_id, mode"). On any
// failure to embed or search, it returns an empty list with
// retrievalUnavailable=true rather than an error, so the feedback node can
// still answer from prompt context alone.
func (r *Retriever) Search(ctx context.Context, question string, cliWindow []types.CLIEntry, labID string, intent types.Intent) (query string, docs []types.RetrievedDoc, retrievalUnavailable bool) {
	ctx, span := r.tracer.StartSpan(ctx, "retriever.search")
	defer r.tracer.EndSpan(span)

	query = RewriteQuery(intent, question, cliWindow)
	span.SetAttribute("retriever.query", query)

	if r.index == nil || r.embedder == nil {
		r.logger.Warn("retriever unavailable: index or embedder not configured")
		return query, nil, true
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("embedding query failed; retrieval unavailable this turn", zap.Error(err))
		return query, nil, true
	}

	teaching := intent == types.IntentTeaching || intent == types.IntentAmbiguous
	k := kTroubleshooting
	if teaching {
		k = kTeaching
	}

	candidates, err := r.index.Search(ctx, queryVec, k)
	if err != nil {
		r.logger.Warn("index search failed; retrieval unavailable this turn", zap.Error(err))
		return query, nil, true
	}

	if teaching {
		return query, PrioritizeTeaching(candidates), false
	}

	hasErrorContext := hasErrorContextInWindow(cliWindow)
	return query, PrioritizeTroubleshooting(candidates, hasErrorContext), false
}

func hasErrorContextInWindow(cliWindow []types.CLIEntry) bool {
	for _, entry := range cliWindow {
		if containsCaret(entry.Output) {
			return true
		}
	}
	return false
}

func containsCaret(output string) bool {
	for _, r := range output {
		if r == '^' {
			return true
		}
	}
	return false
}
