// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package detector

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
)

func newTestRegistry(t *testing.T, patterns []errorpatterns.Pattern, vocab map[string][]string) *errorpatterns.Registry {
	t.Helper()
	dir := t.TempDir()

	patternPath := filepath.Join(dir, "patterns.json")
	data, err := json.Marshal(errorpatterns.PatternFile{Version: "1", Patterns: patterns})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(patternPath, data, 0o600))

	vocabPath := ""
	if vocab != nil {
		vocabPath = filepath.Join(dir, "vocab.json")
		vdata, err := json.Marshal(errorpatterns.VocabularyFile{Scopes: vocab})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(vocabPath, vdata, 0o600))
	}

	reg, err := errorpatterns.NewRegistry([]string{patternPath}, vocabPath)
	require.NoError(t, err)
	return reg
}

func TestDetect_FastRejectsCleanOutput(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:         "hostname-typo",
		Description:       "hostname typo",
		Priority:          50,
		Signatures:        []string{"% Invalid input detected"},
		CommandRegex:      `^(?P<cmd>\S+)`,
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "You typed {cmd}, which IOS does not recognize.",
		FixTemplate:       "Check the command spelling.",
	}}, nil)

	det := Detect(reg.Snapshot(), "hostname router1", "router1(config)#", nil)
	require.False(t, det.Matched)
}

func TestDetect_SignatureAndRegexMatch(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:         "hostnane-typo",
		Description:       "hostname typo",
		Priority:          50,
		Signatures:        []string{"% Invalid input detected"},
		CommandRegex:      `^hostnane\s`,
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "IOS rejected the command.",
		FixTemplate:       "Use hostname instead.",
	}}, nil)

	output := "hostnane Router1\n        ^\n% Invalid input detected at '^' marker."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.True(t, det.Matched)
	require.Equal(t, "hostnane-typo", det.PatternID)
	require.Equal(t, "INVALID_COMMAND", det.ErrorType)
	require.Equal(t, "IOS rejected the command.", det.Diagnosis)
}

func TestDetect_PriorityOrderPicksHigherFirst(t *testing.T) {
	low := errorpatterns.Pattern{
		PatternID:         "low",
		Description:       "low priority catch-all",
		Priority:          1,
		Signatures:        []string{"% Invalid input"},
		CommandRegex:      `.*`,
		ErrorType:         "GENERIC",
		DiagnosisTemplate: "generic diagnosis",
		FixTemplate:       "generic fix",
	}
	high := errorpatterns.Pattern{
		PatternID:         "high",
		Description:       "specific hostname typo",
		Priority:          90,
		Signatures:        []string{"% Invalid input"},
		CommandRegex:      `^hostnane\s`,
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "specific diagnosis",
		FixTemplate:       "specific fix",
	}
	reg := newTestRegistry(t, []errorpatterns.Pattern{low, high}, nil)

	output := "hostnane Router1\n% Invalid input detected at marker."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.True(t, det.Matched)
	require.Equal(t, "high", det.PatternID)
}

func TestDetect_MarkerCheckRejectsWrongPosition(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:    "end-marker-only",
		Description:  "only matches when caret is at end of command",
		Priority:     50,
		Signatures:   []string{"% Invalid input"},
		CommandRegex: `^hostnane\s`,
		MarkerCheck: &errorpatterns.MarkerCheck{
			Enabled:          true,
			ExpectedPosition: errorpatterns.MarkerEndOfCommand,
		},
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "diagnosis",
		FixTemplate:       "fix",
	}}, nil)

	// Caret sits under the first character, not at the end of the command.
	output := "hostnane Router1\n^\n% Invalid input detected."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.False(t, det.Matched)
}

func TestDetect_MissingCaretLineIsNotAnErrorWhenMarkerRequired(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:    "needs-marker",
		Description:  "requires a caret line",
		Priority:     50,
		Signatures:   []string{"% Invalid input"},
		CommandRegex: `^hostnane\s`,
		MarkerCheck: &errorpatterns.MarkerCheck{
			Enabled:          true,
			ExpectedPosition: errorpatterns.MarkerEndOfCommand,
		},
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "diagnosis",
		FixTemplate:       "fix",
	}}, nil)

	output := "hostnane Router1\n% Invalid input detected, no caret line here."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.False(t, det.Matched)
}

func TestDetect_FuzzyFallbackSuggestsVocabularyWord(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:    "hostnane-fuzzy",
		Description:  "hostname typo with fuzzy suggestion",
		Priority:     50,
		Signatures:   []string{"% Invalid input"},
		CommandRegex: `^hostnane\s`,
		MarkerCheck: &errorpatterns.MarkerCheck{
			Enabled:          true,
			ExpectedPosition: errorpatterns.MarkerAtChar,
			AtChar:           0,
		},
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "diagnosis",
		FixTemplate:       "fix",
		Fuzzy: &errorpatterns.FuzzyConfig{
			Enabled:         true,
			VocabularyScope: "global_config",
		},
	}}, map[string][]string{
		"global_config": {"hostname", "interface", "router"},
	})

	output := "hostnane Router1\n^\n% Invalid input detected at '^' marker."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.True(t, det.Matched)
	require.NotNil(t, det.FuzzyMatch)
	require.Equal(t, "hostnane", det.FuzzyMatch.TypedWord)
	require.Equal(t, "hostname", det.FuzzyMatch.SuggestedWord)
	require.GreaterOrEqual(t, det.FuzzyMatch.Similarity, similarityThreshold)
}

func TestDetect_MissingVariableDisablesPatternOnly(t *testing.T) {
	broken := errorpatterns.Pattern{
		PatternID:         "broken-template",
		Description:       "template references an unknown variable",
		Priority:          90,
		Signatures:        []string{"% Invalid input"},
		CommandRegex:      `^hostnane\s`,
		ErrorType:         "BROKEN",
		DiagnosisTemplate: "references {nonexistent}",
		FixTemplate:       "fix",
	}
	fallback := errorpatterns.Pattern{
		PatternID:         "fallback",
		Description:       "generic catch-all",
		Priority:          1,
		Signatures:        []string{"% Invalid input"},
		CommandRegex:      `.*`,
		ErrorType:         "GENERIC",
		DiagnosisTemplate: "generic diagnosis",
		FixTemplate:       "generic fix",
	}
	reg := newTestRegistry(t, []errorpatterns.Pattern{broken, fallback}, nil)

	output := "hostnane Router1\n% Invalid input detected."
	det := Detect(reg.Snapshot(), "hostnane Router1", output, nil)
	require.True(t, det.Matched)
	require.Equal(t, "fallback", det.PatternID)
}

func TestDetect_Determinism(t *testing.T) {
	reg := newTestRegistry(t, []errorpatterns.Pattern{{
		PatternID:         "hostnane-typo",
		Description:       "hostname typo",
		Priority:          50,
		Signatures:        []string{"% Invalid input detected"},
		CommandRegex:      `^hostnane\s`,
		ErrorType:         "INVALID_COMMAND",
		DiagnosisTemplate: "IOS rejected the command.",
		FixTemplate:       "Use hostname instead.",
	}}, nil)

	output := "hostnane Router1\n        ^\n% Invalid input detected at '^' marker."
	snap := reg.Snapshot()
	first := Detect(snap, "hostnane Router1", output, nil)
	second := Detect(snap, "hostnane Router1", output, nil)
	require.Equal(t, first, second)
}
