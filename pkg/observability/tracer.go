// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability is the tracing/metrics facade used across the
// tutor core. It intentionally ships only the facade and a no-op/in-memory
// implementation: exporting to a real backend (Hawk, OTLP, ...) is an
// infrastructure concern out of this core's scope.
package observability

import (
	"context"
	"sync"
	"time"
)

// Span represents one traced unit of work.
type Span struct {
	mu         sync.Mutex
	Name       string
	StartedAt  time.Time
	Attributes map[string]string
	Events     []string
}

// SetAttribute records a key/value on the span.
func (s *Span) SetAttribute(key, value string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	s.Attributes[key] = value
}

// AddEvent records a named event on the span.
func (s *Span) AddEvent(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, name)
}

// SpanOption configures a span at creation time.
type SpanOption func(*Span)

// WithAttribute sets an initial attribute on span creation.
func WithAttribute(key, value string) SpanOption {
	return func(s *Span) { s.SetAttribute(key, value) }
}

// Tracer is the instrumentation interface every component depends on.
// Thread-safe: all methods may be called concurrently.
type Tracer interface {
	StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, *Span)
	EndSpan(span *Span)
	RecordMetric(name string, value float64, labels map[string]string)
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
	Flush(ctx context.Context) error
}

type spanContextKey struct{}

// SpanFromContext retrieves the current span from context, if any.
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}

func contextWithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanContextKey{}, span)
}
