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

// Package types contains the shared vocabulary used across the tutor
// core: turn state, conversation messages, and tool calls. Keeping these
// in one leaf package avoids import cycles between the agent graph, the
// LLM gateway, and the retriever.
package types

import (
	"sync"
	"time"
)

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// Message is a single entry in conversation_history (§3).
type Message struct {
	Role       string // user, assistant, system, tool
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // set when Role == "tool"
	Timestamp  time.Time
}

// Usage tracks LLM token usage.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// LLMResponse is the result of a non-streaming completion.
type LLMResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
}

// StreamChunk is one unit yielded by a streaming completion.
// Kind is either "text" or "tool_calls".
type StreamChunk struct {
	Kind      string
	Delta     string
	ToolCalls []ToolCall
}

// CLIEntry is one observed (command, output) pair from the simulator.
type CLIEntry struct {
	Command  string
	Output   string
	DeviceID string
	At       time.Time
}

// FuzzyMatch records a detector's fuzzy-vocabulary suggestion.
type FuzzyMatch struct {
	TypedWord     string
	SuggestedWord string
	Similarity    float64
}

// Detection is the Error Detector's output for one (command, output) pair
// (§3 "Detection Result"). Matched == false means no pattern fired.
type Detection struct {
	Matched    bool
	ErrorType  string
	PatternID  string
	Command    string
	Diagnosis  string
	Fix        string
	Variables  map[string]string
	FuzzyMatch *FuzzyMatch
}

// DocClass categorizes a retrieved document chunk (§3, GLOSSARY).
type DocClass string

const (
	DocClassErrorPatterns    DocClass = "error_patterns"
	DocClassCommandReference DocClass = "command_reference"
	DocClassLabSpecific      DocClass = "lab_specific"
)

// RetrievedDoc is one entry of retrieved_docs (§3).
type RetrievedDoc struct {
	Content  string
	Score    float64
	DocClass DocClass
	LabID    string
	Source   string
}

// Intent is the Agent Graph's routing decision (§4.4.1).
type Intent string

const (
	IntentTeaching        Intent = "teaching"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentAmbiguous       Intent = "ambiguous"
)

// MasteryLevel affects prompt tone only (§3, §9 Open Questions).
type MasteryLevel string

const (
	MasteryNovice       MasteryLevel = "novice"
	MasteryIntermediate MasteryLevel = "intermediate"
	MasteryAdvanced     MasteryLevel = "advanced"
)

// LabContext is read-only per turn, set at session start (§3).
type LabContext struct {
	LabID        string
	Title        string
	Description  string
	Instructions string
	Objectives   []string
	Topology     string
}

// TurnState is the single structured record that flows through every node
// of the agent graph for one turn (§3). Fields are set/overwritten by each
// node; nothing is silently inherited across turns except the two session
// history fields noted in the Lifecycle paragraph of §3.
type TurnState struct {
	StudentQuestion string

	ConversationHistory []Message
	CLIHistory          []CLIEntry
	LabContext          LabContext
	MasteryLevel        MasteryLevel

	Intent                Intent
	RetrievalQuery        string
	RetrievedDocs         []RetrievedDoc
	RetrievalUnavailable  bool
	CLIDiagnoses          map[int]Detection // keyed by index into the consumed CLIHistory window

	FeedbackMessage string
	FinalMessage    string

	ToolsEnabled  bool
	ToolCallCount int
}

// Session carries per-session state across turns: the append-only
// conversation history and the lab context fixed at session start.
// Thread-safe; a single turn owns the session exclusively while in flight
// (§5 "Session conversation history").
type Session struct {
	mu sync.Mutex

	ID           string
	LabContext   LabContext
	MasteryLevel MasteryLevel
	History      []Message
	CLIHistory   []CLIEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session fixed to a lab and mastery level for its
// lifetime (§6.1 start_session).
func NewSession(id string, lab LabContext, mastery MasteryLevel) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		LabContext:   lab,
		MasteryLevel: mastery,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AppendTurn appends exactly the user message then the final assistant
// message, maintaining the "History append" invariant of §8.
func (s *Session) AppendTurn(userMsg, assistantMsg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, userMsg, assistantMsg)
	s.UpdatedAt = time.Now()
}

// RecordCLI appends an observed CLI entry to the session's rolling window.
func (s *Session) RecordCLI(entry CLIEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CLIHistory = append(s.CLIHistory, entry)
}

// Snapshot returns copies of the history and CLI window trimmed to the
// limits given (conversation N, CLI M), used to build a TurnState.
func (s *Session) Snapshot(historyLimit, cliLimit int) ([]Message, []CLIEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.History
	if historyLimit > 0 && len(hist) > historyLimit {
		hist = hist[len(hist)-historyLimit:]
	}
	histCopy := make([]Message, len(hist))
	copy(histCopy, hist)

	cli := s.CLIHistory
	if cliLimit > 0 && len(cli) > cliLimit {
		cli = cli[len(cli)-cliLimit:]
	}
	cliCopy := make([]CLIEntry, len(cli))
	copy(cliCopy, cli)

	return histCopy, cliCopy
}
