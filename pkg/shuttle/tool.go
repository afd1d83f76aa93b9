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

// Package shuttle defines the tool-calling contract surface the LLM Gateway
// and Tool Executor share (§4.5). A "tool" shuttles data between the model
// and a collaborator backend — here, a single Cisco IOS lab simulator.
package shuttle

import (
	"context"
	"encoding/json"
)

// Tool defines an executable capability the model can invoke mid-turn.
type Tool interface {
	// Name returns the tool's unique identifier, as declared to the model.
	Name() string

	// Description returns a human-readable description for LLM context.
	Description() string

	// InputSchema returns the JSON Schema for the tool's parameters.
	InputSchema() *JSONSchema

	// Execute runs the tool against validated parameters.
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)
}

// Result represents the outcome of one tool execution (§4.5).
type Result struct {
	Success         bool
	Data            interface{}
	Error           *Error
	Metadata        map[string]interface{}
	ExecutionTimeMs int64
}

// Error represents a tool execution error with structured information, so
// the model sees a reason string rather than a bare failure (§4.5, §7
// "ToolTimeout / ToolFailure ... returned to the model as a tool-result
// string, never bubbled").
type Error struct {
	Code       string
	Message    string
	Retryable  bool
	Suggestion string
}

// JSONSchema is a JSON Schema function-parameter declaration (§6.2 "tools
// as JSON-schema function declarations").
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []interface{}          `json:"enum,omitempty"`
}

// MarshalJSON ensures object schemas always carry a "properties" object
// rather than omitting it, matching the wire shape most OpenAI-compatible
// tool-calling backends expect for a zero-argument function.
func (s *JSONSchema) MarshalJSON() ([]byte, error) {
	type alias JSONSchema
	if s.Type == "object" && s.Properties == nil {
		shadow := *s
		shadow.Properties = map[string]*JSONSchema{}
		return json.Marshal((*alias)(&shadow))
	}
	return json.Marshal((*alias)(s))
}

// NewObjectSchema creates an object schema with the given properties.
func NewObjectSchema(description string, properties map[string]*JSONSchema, required []string) *JSONSchema {
	return &JSONSchema{Type: "object", Description: description, Properties: properties, Required: required}
}

// NewStringSchema creates a string-typed schema.
func NewStringSchema(description string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description}
}
