// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package detector implements the Error Detector (§4.2): a deterministic,
// side-effect-free classifier of a single (command, output) pair against a
// Pattern Registry snapshot. Detect never touches a clock, the filesystem,
// or a random source, matching the teacher's preference for small, pure
// classification functions over the provider-call boundary (contrast with
// pkg/agentgraph, which does the same heuristic-first triage for intent).
package detector

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// fastRejectFragments is the six-fragment set from §4.2 step 1, a superset
// of the five normative IOS_ERROR_FRAGMENTS in §6.6 (the router uses the
// narrower set; the detector's fast reject also accepts a bare "%" since
// any of these indicate an IOS CLI diagnostic worth walking the pattern
// list for).
var fastRejectFragments = []string{
	"% Invalid input",
	"% Incomplete command",
	"% Ambiguous command",
	"% Unknown command",
	"% Unrecognized",
	"%",
}

func looksLikeError(output string) bool {
	for _, frag := range fastRejectFragments {
		if strings.Contains(output, frag) {
			return true
		}
	}
	return false
}

// Detect classifies one (command, output) pair against snap, walking
// patterns in priority order and returning the first match (§4.2). A
// disabled pattern (MissingVariable during template rendering) is skipped,
// not fatal: the walk continues to the next pattern.
func Detect(snap *errorpatterns.Snapshot, command, output string, logger *zap.Logger) types.Detection {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !looksLikeError(output) {
		return types.Detection{Matched: false, Command: command}
	}

	for _, cp := range snap.Patterns() {
		if !signaturesMatch(cp.Pattern, output) {
			continue
		}
		if !cp.CommandRegex().MatchString(command) {
			continue
		}

		caretCol, caretOK := findCaretLine(output)
		if cp.MarkerCheck != nil && cp.MarkerCheck.Enabled {
			if !caretOK {
				// Missing ^ line when marker_check is enabled: not an error (§4.2 edge policy).
				continue
			}
			if !markerSatisfies(cp.MarkerCheck, command, caretCol) {
				continue
			}
		}

		vars := extractVariables(cp.CommandRegex(), command, cp.DiagnosisVariables)

		diagnosis, err := renderTemplate(cp.DiagnosisTemplate, vars)
		if err != nil {
			logger.Warn("pattern disabled for this detection: diagnosis template", zap.String("pattern_id", cp.PatternID), zap.Error(err))
			continue
		}
		fix, err := renderTemplate(cp.FixTemplate, vars)
		if err != nil {
			logger.Warn("pattern disabled for this detection: fix template", zap.String("pattern_id", cp.PatternID), zap.Error(err))
			continue
		}

		det := types.Detection{
			Matched:   true,
			ErrorType: cp.ErrorType,
			PatternID: cp.PatternID,
			Command:   command,
			Diagnosis: diagnosis,
			Fix:       fix,
			Variables: vars,
		}

		if cp.Fuzzy != nil && cp.Fuzzy.Enabled && caretOK {
			lines := strings.Split(output, "\n")
			if wordLine := callerLine(lines, caretCol); wordLine != "" {
				typed := wordAtColumn(wordLine, caretCol)
				det.FuzzyMatch = nearestVocabWord(snap.Vocabulary(cp.Fuzzy.VocabularyScope), typed)
			}
		}

		return det
	}

	return types.Detection{Matched: false, Command: command}
}

// signaturesMatch requires every declared signature to be a substring of
// output, honoring the pattern's CaseSensitive flag (§4.2 step 2a).
func signaturesMatch(p errorpatterns.Pattern, output string) bool {
	haystack := output
	if !p.CaseSensitive {
		haystack = strings.ToLower(output)
	}
	for _, sig := range p.Signatures {
		needle := sig
		if !p.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

// extractVariables builds the template variable map from the command
// regex's named capture groups matched against command, mirroring
// re.match(...).groupdict() (§8 "Template safety"). diagnosisVariables
// seeds empty-string entries for declared variables the regex itself
// doesn't capture (e.g. a constant a pattern author wants named in its
// template but supplies no group for), so a template referencing it is
// still satisfiable rather than always failing with MissingVariable.
func extractVariables(re *regexp.Regexp, command string, diagnosisVariables []string) map[string]string {
	vars := make(map[string]string, len(diagnosisVariables))
	for _, name := range diagnosisVariables {
		vars[name] = ""
	}

	match := re.FindStringSubmatch(command)
	if match == nil {
		return vars
	}
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		vars[name] = match[i]
	}
	return vars
}

// callerLine returns the line immediately preceding the caret line, which
// in IOS terminal echo carries the mistyped token the caret points into.
func callerLine(lines []string, caretCol int) string {
	for i := len(lines) - 1; i >= 1; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "^" {
			return lines[i-1]
		}
	}
	return ""
}
