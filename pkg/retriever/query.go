// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package retriever

import (
	"strings"

	"github.com/teradata-labs/ios-tutor-core/pkg/detector"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// ciscoVocabulary stop-filters command_keywords down to words that carry
// Cisco IOS meaning (§4.3 "stopword-filtered to Cisco-vocabulary words").
// Kept small and explicit rather than a generic English stopword list: the
// rewriter wants to keep domain words, not merely drop common ones.
var ciscoVocabulary = map[string]struct{}{
	"hostname": {}, "interface": {}, "ip": {}, "address": {}, "route": {},
	"router": {}, "switch": {}, "vlan": {}, "access-list": {}, "acl": {},
	"ospf": {}, "eigrp": {}, "bgp": {}, "rip": {}, "spanning-tree": {},
	"trunk": {}, "shutdown": {}, "no": {}, "enable": {}, "configure": {},
	"terminal": {}, "show": {}, "running-config": {}, "startup-config": {},
	"subnet": {}, "mask": {}, "gateway": {}, "dhcp": {}, "nat": {}, "line": {},
	"password": {}, "telnet": {}, "ssh": {}, "banner": {}, "clock": {},
	"copy": {}, "write": {}, "reload": {}, "ping": {}, "traceroute": {},
	"loopback": {}, "serial": {}, "fastethernet": {}, "gigabitethernet": {},
	"description": {}, "duplex": {}, "speed": {}, "standby": {}, "hsrp": {},
}

// extraErrorKeywords catches the remaining lowercase error words §4.3's
// decision tree calls "other error keywords" beyond the normative
// IOS_ERROR_FRAGMENTS set (those imply a visible "^" marker already).
var extraErrorKeywords = []string{"error", "denied", "failed", "unreachable", "timeout"}

// commandKeywords extracts deduplicated, Cisco-vocabulary tokens from the
// most recently attempted command (§4.3 "command_keywords = deduplicated
// tokens from the most-recent failed command, stopword-filtered to
// Cisco-vocabulary words").
func commandKeywords(command string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(command)) {
		tok = strings.Trim(tok, ".,;:")
		if _, ok := ciscoVocabulary[tok]; !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// RewriteQuery implements §4.3's query-rewriting rules for both modes.
func RewriteQuery(intent types.Intent, question string, cliWindow []types.CLIEntry) string {
	if intent == types.IntentTeaching || intent == types.IntentAmbiguous {
		return "Explain the concept: " + question
	}
	return rewriteTroubleshooting(question, cliWindow)
}

// rewriteTroubleshooting walks the CLI window decision tree (§4.3
// "Troubleshooting mode, decision tree over the CLI window").
func rewriteTroubleshooting(question string, cliWindow []types.CLIEntry) string {
	lastCommand := ""
	for i := len(cliWindow) - 1; i >= 0; i-- {
		lastCommand = cliWindow[i].Command
		break
	}
	keywords := strings.Join(commandKeywords(lastCommand), " ")

	var hasCaretAndError, hasOtherError, hasKeywords bool
	var errorTypeTokens []string
	for _, entry := range cliWindow {
		if strings.Contains(entry.Output, "^") && detector.HasVisibleError(entry.Output) {
			hasCaretAndError = true
		} else if containsAny(strings.ToLower(entry.Output), extraErrorKeywords) {
			hasOtherError = true
			errorTypeTokens = append(errorTypeTokens, extractErrorTokens(entry.Output)...)
		}
	}
	if keywords != "" {
		hasKeywords = true
	}

	switch {
	case hasCaretAndError:
		return strings.TrimSpace("Invalid input detected " + keywords + " error pattern")
	case hasOtherError:
		return strings.TrimSpace(strings.Join(errorTypeTokens, " ") + " " + keywords + " Cisco IOS")
	case hasKeywords:
		return "Cisco IOS " + keywords + " command syntax"
	default:
		return "Cisco IOS " + question
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// extractErrorTokens pulls the lowercase error keywords actually present in
// output, used to seed "error_type_tokens" in the rewrite rule.
func extractErrorTokens(output string) []string {
	lower := strings.ToLower(output)
	var out []string
	for _, kw := range extraErrorKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}
