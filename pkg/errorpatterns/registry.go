// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package errorpatterns

import (
	"context"
	"regexp"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/observability"
)

// snapshot is an immutable view of the loaded patterns and vocabulary.
// Registry swaps the pointer to a new
// snapshot atomically on Load/Reload, so concurrent IterByPriority calls
// see either the old or the new set, never a mix (§4.1 reload()).
type snapshot struct {
	byPriority []compiledPattern
	byID       map[string]*compiledPattern
	vocabulary map[string]map[string]struct{}
}

func newSnapshot(patterns []compiledPattern, vocabulary map[string]map[string]struct{}) *snapshot {
	ordered := make([]compiledPattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority // descending priority
		}
		return ordered[i].insertionOrder < ordered[j].insertionOrder // first-loaded wins ties
	})

	byID := make(map[string]*compiledPattern, len(ordered))
	for i := range ordered {
		byID[ordered[i].PatternID] = &ordered[i]
	}

	return &snapshot{byPriority: ordered, byID: byID, vocabulary: vocabulary}
}

// Registry owns the loaded error patterns and fuzzy vocabulary, serving
// them as a read-only snapshot (§4.1). It never mutates in place; Reload
// builds a whole new snapshot and swaps the pointer atomically, the same
// discipline the teacher's pattern Library applies via sync.RWMutex plus
// pointer replacement.
type Registry struct {
	current atomic.Pointer[snapshot]
	sources []string // pattern file paths, for Reload
	vocab   string    // vocabulary file path, for Reload
	logger  *zap.Logger
	tracer  observability.Tracer
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithTracer sets the registry's tracer.
func WithTracer(tracer observability.Tracer) Option {
	return func(r *Registry) { r.tracer = tracer }
}

// NewRegistry constructs a Registry and performs the first Load.
func NewRegistry(sources []string, vocabularyPath string, opts ...Option) (*Registry, error) {
	r := &Registry{
		sources: sources,
		vocab:   vocabularyPath,
		logger:  zap.NewNop(),
		tracer:  observability.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads every source and the vocabulary file, validates all of it,
// and installs the result as the current snapshot (§4.1 load()).
func (r *Registry) Load() error {
	_, span := r.tracer.StartSpan(context.Background(), "errorpatterns.load")
	defer r.tracer.EndSpan(span)

	var all []compiledPattern
	order := 0
	for _, src := range r.sources {
		compiled, err := loadSource(src, order)
		if err != nil {
			r.logger.Error("pattern source failed validation", zap.String("source", src), zap.Error(err))
			return err
		}
		all = append(all, compiled...)
		order += len(compiled)
	}

	var vocab map[string]map[string]struct{}
	if r.vocab != "" {
		v, err := loadVocabulary(r.vocab)
		if err != nil {
			return err
		}
		vocab = v
	}

	r.current.Store(newSnapshot(all, vocab))
	r.logger.Info("pattern registry loaded", zap.Int("patterns", len(all)), zap.Int("sources", len(r.sources)))
	return nil
}

// Reload re-reads all sources and atomically swaps in the new snapshot.
// On validation failure the previous snapshot is left untouched (§4.1
// "atomic swap").
func (r *Registry) Reload() error {
	return r.Load()
}

// IterByPriority yields patterns in descending priority, then insertion
// order (§4.1 iter_by_priority()).
func (r *Registry) IterByPriority() []Pattern {
	snap := r.current.Load()
	out := make([]Pattern, len(snap.byPriority))
	for i, cp := range snap.byPriority {
		out[i] = cp.Pattern
	}
	return out
}

// CompiledPattern is the read-only, detector-facing view of a pattern: the
// validated Pattern plus its pre-compiled command regex, so callers outside
// this package never recompile a pattern's command_regex on the hot path.
type CompiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// CommandRegex returns the pattern's compiled command_regex.
func (c CompiledPattern) CommandRegex() *regexp.Regexp { return c.re }

// Snapshot is an immutable, detector-facing view of the whole registry at
// one point in time: patterns in priority order plus the fuzzy vocabulary.
// Taking a Snapshot and walking it guarantees a caller never observes a mix
// of two concurrent Reloads (§4.1, §4.2 "pure function of (command, output,
// registry snapshot)").
type Snapshot struct {
	patterns []CompiledPattern
	vocab    map[string]map[string]struct{}
}

// Patterns returns the snapshot's patterns in descending priority, then
// insertion order.
func (s *Snapshot) Patterns() []CompiledPattern { return s.patterns }

// Vocabulary returns the word set for a fuzzy vocabulary scope.
func (s *Snapshot) Vocabulary(scope string) map[string]struct{} { return s.vocab[scope] }

// Snapshot returns the registry's current immutable view for the detector
// to walk without holding any lock.
func (r *Registry) Snapshot() *Snapshot {
	snap := r.current.Load()
	patterns := make([]CompiledPattern, len(snap.byPriority))
	for i, cp := range snap.byPriority {
		patterns[i] = CompiledPattern{Pattern: cp.Pattern, re: cp.commandRE}
	}
	return &Snapshot{patterns: patterns, vocab: snap.vocabulary}
}

// Find looks up a pattern by ID (§4.1 find()).
func (r *Registry) Find(patternID string) (Pattern, error) {
	snap := r.current.Load()
	cp, ok := snap.byID[patternID]
	if !ok {
		return Pattern{}, &NotFoundError{PatternID: patternID}
	}
	return cp.Pattern, nil
}

// Vocabulary returns the word set for a fuzzy vocabulary scope.
func (r *Registry) Vocabulary(scope string) map[string]struct{} {
	return r.current.Load().vocabulary[scope]
}
