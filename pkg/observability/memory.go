// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package observability

import (
	"context"
	"sync"
	"time"
)

// MetricPoint is one recorded metric sample.
type MetricPoint struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// EventPoint is one recorded standalone event.
type EventPoint struct {
	Name       string
	Attributes map[string]interface{}
}

// InMemoryTracer buffers spans/metrics/events for test assertions. It is
// not meant for production export, only for unit tests that need to
// observe what the core instrumented without standing up a real backend.
type InMemoryTracer struct {
	mu      sync.Mutex
	Spans   []*Span
	Metrics []MetricPoint
	Events  []EventPoint
}

// NewInMemoryTracer returns a tracer suitable for test assertions.
func NewInMemoryTracer() *InMemoryTracer {
	return &InMemoryTracer{}
}

func (t *InMemoryTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span) {
	span := &Span{Name: name, StartedAt: time.Now()}
	for _, opt := range opts {
		opt(span)
	}
	t.mu.Lock()
	t.Spans = append(t.Spans, span)
	t.mu.Unlock()
	return contextWithSpan(ctx, span), span
}

func (t *InMemoryTracer) EndSpan(span *Span) {}

func (t *InMemoryTracer) RecordMetric(name string, value float64, labels map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Metrics = append(t.Metrics, MetricPoint{Name: name, Value: value, Labels: labels})
}

func (t *InMemoryTracer) RecordEvent(ctx context.Context, name string, attrs map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Events = append(t.Events, EventPoint{Name: name, Attributes: attrs})
}

func (t *InMemoryTracer) Flush(ctx context.Context) error { return nil }
