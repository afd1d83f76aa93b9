// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package errorpatterns owns the Pattern Registry (§4.1): loading,
// validating, and serving the Error Pattern value records that the
// Error Detector walks in priority order.
package errorpatterns

// MarkerPosition is the expected column class of the caret ('^') line
// relative to the offending token (§3 "Error Pattern").
type MarkerPosition string

const (
	MarkerBeforeSlash    MarkerPosition = "before_slash"
	MarkerAtChar         MarkerPosition = "at_char"
	MarkerEndOfCommand   MarkerPosition = "end_of_command"
)

// MarkerCheck describes how to validate the caret column of terminal
// output against the pattern's expectation.
type MarkerCheck struct {
	Enabled          bool           `json:"enabled"`
	ExpectedPosition MarkerPosition `json:"expected_position"`
	// AtChar is the 0-indexed column to require when ExpectedPosition is
	// MarkerAtChar. Ignored otherwise.
	AtChar int `json:"at_char,omitempty"`
}

// FuzzyConfig declares that a pattern wants fuzzy-vocabulary fallback for
// the token sitting under the caret.
type FuzzyConfig struct {
	Enabled         bool   `json:"enabled"`
	VocabularyScope string `json:"vocabulary_scope"`
}

// Pattern is the Error Pattern value record loaded from JSON (§3).
type Pattern struct {
	PatternID          string       `json:"pattern_id"`
	Description        string       `json:"description"`
	Priority           int          `json:"priority"`
	Signatures         []string     `json:"signatures"`
	CaseSensitive      bool         `json:"case_sensitive"`
	CommandRegex       string       `json:"command_regex"`
	RegexFlags         string       `json:"regex_flags"`
	MarkerCheck        *MarkerCheck `json:"marker_check,omitempty"`
	ErrorType          string       `json:"error_type"`
	DiagnosisTemplate  string       `json:"diagnosis_template"`
	DiagnosisVariables []string     `json:"diagnosis_variables"`
	FixTemplate        string       `json:"fix_template"`
	FixExamples        []string     `json:"fix_examples"`
	AffectedModes      []string     `json:"affected_modes"`
	Fuzzy              *FuzzyConfig `json:"fuzzy,omitempty"`

	// insertionOrder records load order for the "first-loaded wins" tie
	// break among equal priorities (§3 invariants).
	insertionOrder int
}

// PatternFile is the JSON document shape a pattern source provides (§4.1
// "sources are JSON documents with a patterns array").
type PatternFile struct {
	Version  string    `json:"version"`
	Patterns []Pattern `json:"patterns"`
}

// VocabularyFile is the companion JSON document mapping a fuzzy vocabulary
// scope name to its word list (§4.1 "Fuzzy vocabulary").
type VocabularyFile struct {
	Scopes map[string][]string `json:"scopes"`
}
