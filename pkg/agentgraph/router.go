// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"strings"

	"github.com/teradata-labs/ios-tutor-core/pkg/detector"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// teachKeywords is the normative TEACH_KEYWORDS set (§6.6).
var teachKeywords = map[string]struct{}{
	"why": {}, "what": {}, "explain": {}, "how": {}, "describe": {},
	"tell": {}, "when": {}, "difference": {}, "concept": {},
}

// troubleKeywords is the normative TROUBLE_KEYWORDS set (§6.6). "not
// working" and "doesn't"/"won't" are multi-token or contraction forms
// matched against the raw lowercased question rather than the token set,
// since splitting on whitespace would never reproduce "not working" as a
// single token.
var troubleKeywords = map[string]struct{}{
	"wrong": {}, "error": {}, "fix": {}, "broken": {}, "failed": {},
	"stuck": {}, "invalid": {},
}

var troublePhrases = []string{"doesn't", "won't", "not working"}

// Classify implements the Intent Router (§4.4.1): a pure heuristic, no LLM,
// evaluated as a fixed ordered rule chain. Given identical inputs it always
// returns the same label (§8 "Router determinism").
func Classify(question string, cliWindow []types.CLIEntry) types.Intent {
	tokens := tokenize(question)
	teachKw := countMatches(tokens, teachKeywords)
	troubleKw := countMatches(tokens, troubleKeywords) + countPhrases(question, troublePhrases)
	hasCLIError := hasRecentCLIError(cliWindow)

	switch {
	case hasCLIError && teachKw > 0 && troubleKw == 0:
		return types.IntentTeaching
	case hasCLIError:
		return types.IntentTroubleshooting
	case troubleKw > teachKw:
		return types.IntentTroubleshooting
	case teachKw > troubleKw:
		return types.IntentTeaching
	case teachKw == troubleKw && teachKw > 0:
		return types.IntentAmbiguous
	default:
		return types.IntentTeaching
	}
}

func tokenize(question string) []string {
	return strings.Fields(strings.ToLower(question))
}

func countMatches(tokens []string, set map[string]struct{}) int {
	count := 0
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:")
		if _, ok := set[tok]; ok {
			count++
		}
	}
	return count
}

func countPhrases(question string, phrases []string) int {
	lower := strings.ToLower(question)
	count := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			count++
		}
	}
	return count
}

// hasRecentCLIError implements has_cli_error (§4.4.1 step 2): any of the
// last 5 CLI outputs contains "%" and an IOS error fragment. cliWindow is
// expected to already be trimmed to the last 5 entries by the caller.
func hasRecentCLIError(cliWindow []types.CLIEntry) bool {
	for _, entry := range cliWindow {
		if detector.HasVisibleError(entry.Output) {
			return true
		}
	}
	return false
}
