// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package streaming

import (
	"context"
	"errors"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/agentgraph"
	"github.com/teradata-labs/ios-tutor-core/pkg/llm"
	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// replayChunkSize bounds the synthetic chunk size used to replay an
// already-completed message through the content filter on the
// troubleshooting path (see Driver.Ask doc comment).
const replayChunkSize = 40

// Driver is the streaming entry point into the agent graph (§4.7). It
// shares Graph's router/retriever/node wiring and adds the event-stream
// and content-filter machinery needed to serve a turn incrementally.
type Driver struct {
	graph  *agentgraph.Graph
	logger *zap.Logger
	tracer observability.Tracer
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithTracer sets the driver's tracer.
func WithTracer(tracer observability.Tracer) Option {
	return func(d *Driver) { d.tracer = tracer }
}

// New builds a Driver over an already-constructed Graph.
func New(graph *agentgraph.Graph, opts ...Option) *Driver {
	d := &Driver{
		graph:  graph,
		logger: zap.NewNop(),
		tracer: observability.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ask runs one turn and returns a receive-only channel of events, ordered
// per §4.7: info* (content|info)* metadata done, or info* error. The
// channel is closed after the terminal event (metadata+done, or error) is
// sent. Ask never panics on a node failure; it converts it to an error
// event instead (§7 propagation policy).
//
// The teaching path streams real token deltas from the provider, since it
// has no paraphrase stage (§4.4.2). The troubleshooting path runs its
// bounded tool loop and paraphraser to completion internally first — the
// paraphraser needs the whole message to strip preambles and internal
// error-type tokens, which cannot be done correctly on a partial prefix —
// then replays the finished, already-paraphrased text through the content
// filter in fixed-size synthetic chunks, preserving the same event-order
// contract callers see on the teaching path.
func (d *Driver) Ask(ctx context.Context, session *types.Session, question string, newCLI []types.CLIEntry) <-chan Event {
	out := make(chan Event)
	go d.run(ctx, session, question, newCLI, out)
	return out
}

func (d *Driver) run(ctx context.Context, session *types.Session, question string, newCLI []types.CLIEntry, out chan<- Event) {
	defer close(out)

	for _, entry := range newCLI {
		session.RecordCLI(entry)
	}
	state := d.graph.NewTurnState(session, question)

	ctx, span := d.tracer.StartSpan(ctx, "streaming.ask")
	defer d.tracer.EndSpan(span)

	state.Intent = agentgraph.Classify(state.StudentQuestion, state.CLIHistory)
	span.SetAttribute("intent", string(state.Intent))
	if !emit(ctx, out, Event{Type: EventInfo, Phase: "routed:" + string(state.Intent)}) {
		return
	}

	d.graph.Retrieve(ctx, state)
	if !emit(ctx, out, Event{Type: EventInfo, Phase: "retrieved"}) {
		return
	}

	var err error
	switch state.Intent {
	case types.IntentTeaching, types.IntentAmbiguous:
		err = d.streamTeaching(ctx, state, out)
	case types.IntentTroubleshooting:
		err = d.streamTroubleshooting(ctx, state, out)
	}
	if err != nil {
		var unavailable *llm.UnavailableError
		kind := "internal_error"
		if errors.As(err, &unavailable) {
			kind = "llm_unavailable"
		}
		emit(ctx, out, Event{Type: EventError, Message: err.Error(), ErrorKind: kind})
		return
	}

	session.AppendTurn(
		types.Message{Role: "user", Content: question},
		types.Message{Role: "assistant", Content: state.FinalMessage},
	)

	docIDs := make([]string, 0, len(state.RetrievedDocs))
	for _, doc := range state.RetrievedDocs {
		docIDs = append(docIDs, doc.Source)
	}
	if !emit(ctx, out, Event{Type: EventMetadata, Metadata: &Metadata{
		FinalMessage:      state.FinalMessage,
		Intent:            string(state.Intent),
		DocIDsUsed:        docIDs,
		Diagnoses:         state.CLIDiagnoses,
		SuggestedFollowUp: suggestedFollowUps(state.CLIDiagnoses),
	}}) {
		return
	}
	emit(ctx, out, Event{Type: EventDone})
}

// streamTeaching issues a real streaming completion and forwards filtered
// content deltas as they arrive (§4.4.2 "no paraphrase stage in this
// path").
func (d *Driver) streamTeaching(ctx context.Context, state *types.TurnState, out chan<- Event) error {
	provider := d.graph.Provider()
	streamer, ok := provider.(llm.StreamingProvider)
	if !ok {
		return d.graph.RunTeaching(ctx, state)
	}

	messages := agentgraph.TeachingFeedback(state)
	chunks, err := streamer.Stream(ctx, messages, nil, agentgraph.TeachingParams)
	if err != nil {
		return err
	}

	filter := NewContentFilter()
	var full []byte
	for chunk := range chunks {
		if chunk.Kind != "text" || chunk.Delta == "" {
			continue
		}
		full = append(full, chunk.Delta...)
		if safe := filter.Push(chunk.Delta); safe != "" {
			if !emit(ctx, out, Event{Type: EventContent, Text: safe}) {
				return nil
			}
		}
	}
	if safe := filter.Flush(); safe != "" {
		if !emit(ctx, out, Event{Type: EventContent, Text: safe}) {
			return nil
		}
	}

	state.FeedbackMessage = string(full)
	state.FinalMessage = string(full)
	return nil
}

// streamTroubleshooting runs the tool loop and paraphraser to completion,
// then replays the finished text through the content filter in fixed-size
// chunks so callers observe the same event-order contract regardless of
// path.
func (d *Driver) streamTroubleshooting(ctx context.Context, state *types.TurnState, out chan<- Event) error {
	onToolCall := func(toolName string) {
		emit(ctx, out, Event{Type: EventInfo, Phase: "tool:" + toolName})
	}
	if err := d.graph.RunTroubleshooting(ctx, state, onToolCall); err != nil {
		return err
	}

	filter := NewContentFilter()
	text := state.FinalMessage
	for len(text) > 0 {
		n := replayChunkBoundary(text, replayChunkSize)
		chunk := text[:n]
		text = text[n:]
		if safe := filter.Push(chunk); safe != "" {
			if !emit(ctx, out, Event{Type: EventContent, Text: safe}) {
				return nil
			}
		}
	}
	if safe := filter.Flush(); safe != "" {
		emit(ctx, out, Event{Type: EventContent, Text: safe})
	}
	return nil
}

// replayChunkBoundary returns the largest n <= max such that text[:n] ends
// on a full UTF-8 rune boundary, so splitting an already-finished message
// into synthetic chunks never cuts a multi-byte rune in half across two
// Event.Text values (unlike the teaching path, which forwards provider
// deltas verbatim and never re-chunks them).
func replayChunkBoundary(text string, max int) int {
	if max >= len(text) {
		return len(text)
	}
	n := max
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	if n == 0 {
		// No valid boundary within [1, max]: the rune starting at 0 is
		// longer than max bytes. Emit it whole rather than stall forever.
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return n
}

// suggestedFollowUps collects each matched diagnosis's Fix text into the
// metadata event's follow-up list (§4.7 "terminal metadata: ... suggested
// follow-ups"), in CLIHistory index order, skipping unmatched slots and
// duplicate fixes from repeated commands.
func suggestedFollowUps(diagnoses map[int]types.Detection) []string {
	if len(diagnoses) == 0 {
		return nil
	}
	indices := make([]int, 0, len(diagnoses))
	for i := range diagnoses {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	seen := make(map[string]bool, len(indices))
	var follow []string
	for _, i := range indices {
		fix := diagnoses[i].Fix
		if fix == "" || seen[fix] {
			continue
		}
		seen[fix] = true
		follow = append(follow, fix)
	}
	return follow
}

// emit sends ev on out, respecting ctx cancellation (§5 "cancellation is
// checked between every event emission"). It returns false if the caller
// should stop producing further events because the context was canceled.
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}
