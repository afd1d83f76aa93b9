// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package errorpatterns

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// compiledPattern pairs a validated Pattern with its compiled command
// regex, computed once at load time so the detector never compiles on the
// hot path (mirrors the teacher's "compile once, validate up front" shape
// in pkg/patterns/loader.go).
type compiledPattern struct {
	Pattern
	commandRE *regexp.Regexp
}

// loadSource reads and validates one JSON pattern file, compiling each
// pattern's command_regex with its declared flags (§4.1 load()).
func loadSource(path string, startOrder int) ([]compiledPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern source %s: %w", path, err)
	}
	return parseSource(data, startOrder)
}

func parseSource(data []byte, startOrder int) ([]compiledPattern, error) {
	var file PatternFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing pattern source: %w", err)
	}

	out := make([]compiledPattern, 0, len(file.Patterns))
	for i := range file.Patterns {
		p := file.Patterns[i]
		p.insertionOrder = startOrder + i

		if err := validatePattern(&p); err != nil {
			return nil, err
		}

		flags := p.RegexFlags
		expr := p.CommandRegex
		if flags != "" {
			expr = fmt.Sprintf("(?%s)%s", flags, expr)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternLoadError{PatternID: p.PatternID, Field: "command_regex", Reason: err.Error()}
		}

		out = append(out, compiledPattern{Pattern: p, commandRE: re})
	}
	return out, nil
}

// validatePattern validates every required field of a pattern (§4.1 "On
// invalid pattern: load fails with PatternLoadError naming the offending
// pattern_id and field").
func validatePattern(p *Pattern) error {
	if p.PatternID == "" {
		return &PatternLoadError{PatternID: "<unknown>", Field: "pattern_id", Reason: "required"}
	}
	if p.Description == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "description", Reason: "required"}
	}
	if p.CommandRegex == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "command_regex", Reason: "required"}
	}
	if len(p.Signatures) == 0 {
		return &PatternLoadError{PatternID: p.PatternID, Field: "signatures", Reason: "must have at least one signature"}
	}
	if p.ErrorType == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "error_type", Reason: "required"}
	}
	if p.DiagnosisTemplate == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "diagnosis_template", Reason: "required"}
	}
	if p.FixTemplate == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "fix_template", Reason: "required"}
	}
	if p.Priority < 0 {
		return &PatternLoadError{PatternID: p.PatternID, Field: "priority", Reason: "must be >= 0"}
	}
	if p.MarkerCheck != nil && p.MarkerCheck.Enabled {
		switch p.MarkerCheck.ExpectedPosition {
		case MarkerBeforeSlash, MarkerAtChar, MarkerEndOfCommand:
		default:
			return &PatternLoadError{PatternID: p.PatternID, Field: "marker_check.expected_position", Reason: "unknown position class"}
		}
	}
	if p.Fuzzy != nil && p.Fuzzy.Enabled && p.Fuzzy.VocabularyScope == "" {
		return &PatternLoadError{PatternID: p.PatternID, Field: "fuzzy.vocabulary_scope", Reason: "required when fuzzy.enabled"}
	}
	return nil
}

// loadVocabulary reads the companion fuzzy-vocabulary JSON file (§4.1).
func loadVocabulary(path string) (map[string]map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %s: %w", path, err)
	}
	var file VocabularyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	scopes := make(map[string]map[string]struct{}, len(file.Scopes))
	for scope, words := range file.Scopes {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		scopes[scope] = set
	}
	return scopes, nil
}
