// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package errorpatterns

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempPatternFile(t *testing.T, dir string, patterns []Pattern) string {
	t.Helper()
	file := PatternFile{Version: "1", Patterns: patterns}
	data, err := json.Marshal(file)
	require.NoError(t, err)
	path := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func basicPattern(id string, priority int) Pattern {
	return Pattern{
		PatternID:          id,
		Description:        "test pattern " + id,
		Priority:           priority,
		Signatures:         []string{"% Invalid input"},
		CommandRegex:       `^hostname\s`,
		ErrorType:          "TEST_ERROR",
		DiagnosisTemplate:  "diagnosis for {cmd}",
		DiagnosisVariables: []string{"cmd"},
		FixTemplate:        "fix for {cmd}",
	}
}

func TestRegistry_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPatternFile(t, dir, []Pattern{
		basicPattern("low", 10),
		basicPattern("high", 90),
		basicPattern("mid", 50),
	})

	reg, err := NewRegistry([]string{path}, "")
	require.NoError(t, err)

	ordered := reg.IterByPriority()
	require.Len(t, ordered, 3)
	require.Equal(t, "high", ordered[0].PatternID)
	require.Equal(t, "mid", ordered[1].PatternID)
	require.Equal(t, "low", ordered[2].PatternID)
}

func TestRegistry_TieBreakIsInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPatternFile(t, dir, []Pattern{
		basicPattern("first", 50),
		basicPattern("second", 50),
	})

	reg, err := NewRegistry([]string{path}, "")
	require.NoError(t, err)

	ordered := reg.IterByPriority()
	require.Equal(t, "first", ordered[0].PatternID)
	require.Equal(t, "second", ordered[1].PatternID)
}

func TestRegistry_LoadRejectsMissingField(t *testing.T) {
	dir := t.TempDir()
	bad := basicPattern("broken", 1)
	bad.ErrorType = ""
	path := writeTempPatternFile(t, dir, []Pattern{bad})

	_, err := NewRegistry([]string{path}, "")
	require.Error(t, err)

	var loadErr *PatternLoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, "broken", loadErr.PatternID)
	require.Equal(t, "error_type", loadErr.Field)
}

func TestRegistry_ReloadKeepsOldSnapshotOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPatternFile(t, dir, []Pattern{basicPattern("ok", 1)})

	reg, err := NewRegistry([]string{path}, "")
	require.NoError(t, err)

	// Corrupt the file on disk; Reload should fail and leave the snapshot intact.
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	err = reg.Reload()
	require.Error(t, err)

	ordered := reg.IterByPriority()
	require.Len(t, ordered, 1)
	require.Equal(t, "ok", ordered[0].PatternID)
}

func TestRegistry_Find(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPatternFile(t, dir, []Pattern{basicPattern("known", 1)})

	reg, err := NewRegistry([]string{path}, "")
	require.NoError(t, err)

	p, err := reg.Find("known")
	require.NoError(t, err)
	require.Equal(t, "known", p.PatternID)

	_, err = reg.Find("missing")
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRegistry_Vocabulary(t *testing.T) {
	dir := t.TempDir()
	patternPath := writeTempPatternFile(t, dir, []Pattern{basicPattern("p", 1)})

	vocabPath := filepath.Join(dir, "vocab.json")
	vocabData, err := json.Marshal(VocabularyFile{Scopes: map[string][]string{
		"global_config": {"hostname", "interface", "router"},
	}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(vocabPath, vocabData, 0o600))

	reg, err := NewRegistry([]string{patternPath}, vocabPath)
	require.NoError(t, err)

	scope := reg.Vocabulary("global_config")
	require.Contains(t, scope, "hostname")
	require.NotContains(t, scope, "missing-word")
}

func TestRegistry_SnapshotExposesCompiledRegex(t *testing.T) {
	dir := t.TempDir()
	path := writeTempPatternFile(t, dir, []Pattern{basicPattern("p", 1)})

	reg, err := NewRegistry([]string{path}, "")
	require.NoError(t, err)

	snap := reg.Snapshot()
	require.Len(t, snap.Patterns(), 1)
	require.True(t, snap.Patterns()[0].CommandRegex().MatchString("hostname router1"))
}
