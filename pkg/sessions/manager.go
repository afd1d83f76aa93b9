// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package sessions implements the driver-boundary contract of §6.1:
// start_session(lab_id, mastery_level) → session_id and
// ask(session_id, message, cli_history?) → async event stream. It is the
// one place in this core that owns a session registry; everything below
// it (the Streaming Driver, the Agent Graph) is handed an already-resolved
// *types.Session and never looks one up by ID itself.
package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/teradata-labs/ios-tutor-core/pkg/labs"
	"github.com/teradata-labs/ios-tutor-core/pkg/streaming"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// entry pairs a session with the semaphore that enforces §5's "Session
// conversation history ... owned exclusively by a single in-flight turn at
// a time; serialized access per session": a weight-1 semaphore admits one
// Ask call at a time per session and queues the rest, rather than racing
// two turns over the same Session.History slice.
type entry struct {
	session *types.Session
	turn    *semaphore.Weighted
}

// Manager is the registry behind the §6.1 external interface. It is safe
// for concurrent use by many transport-level goroutines, one per inbound
// request, matching §5's "a process handles many sessions concurrently"
// scheduling model.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	catalog  *labs.Catalog
	driver   *streaming.Driver
}

// NewManager builds a session registry over an already-wired Driver.
// catalog may be nil: Start then falls back to a bare LabContext carrying
// only the given lab_id, since §3 never requires a catalog-backed lookup
// to succeed, only that lab_context be set at session start.
func NewManager(driver *streaming.Driver, catalog *labs.Catalog) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		catalog:  catalog,
		driver:   driver,
	}
}

// Start implements start_session(lab_id, mastery_level) → session_id
// (§6.1). The session ID is a fresh random UUID; the caller has no way to
// choose or predict it, matching the teacher's session-ID-as-opaque-token
// convention.
func (m *Manager) Start(labID string, mastery types.MasteryLevel) string {
	lab := types.LabContext{LabID: labID}
	if m.catalog != nil {
		if found, ok := m.catalog.Get(labID); ok {
			lab = found
		}
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &entry{
		session: types.NewSession(id, lab, mastery),
		turn:    semaphore.NewWeighted(1),
	}
	m.mu.Unlock()
	return id
}

// Ask implements ask(session_id, message, cli_history?) → async event
// stream (§6.1). It blocks until any turn already in flight for this
// session finishes (or ctx is canceled) before starting a new one, then
// hands the resolved *types.Session to the Streaming Driver.
func (m *Manager) Ask(ctx context.Context, sessionID, message string, cliHistory []types.CLIEntry) (<-chan streaming.Event, error) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}

	if err := e.turn.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for session %q: %w", sessionID, err)
	}

	out := make(chan streaming.Event)
	go func() {
		defer e.turn.Release(1)
		defer close(out)
		for ev := range m.driver.Ask(ctx, e.session, message, cliHistory) {
			out <- ev
		}
	}()
	return out, nil
}

// End removes a session from the registry, releasing its history. It is
// not part of §6.1's request/response contract but is needed so a
// long-running process doesn't leak sessions that a transport has torn
// down; §1 places session lifecycle policy with the transport layer, this
// is only the registry primitive it would call.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
