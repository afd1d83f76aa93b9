// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package detector

import (
	"strings"

	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
)

// findCaretLine locates the last line in output consisting solely of
// whitespace and a single '^', returning the column of the caret
// (§4.2 "marker column is taken from the last ^ line"). ok is false when no
// such line exists.
func findCaretLine(output string) (col int, ok bool) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		idx := strings.IndexByte(line, '^')
		if idx < 0 {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "^" {
			continue
		}
		return idx, true
	}
	return 0, false
}

// markerSatisfies reports whether a caret column matches the pattern's
// expected position class (§4.2 step 2c, §3 MarkerPosition classes).
func markerSatisfies(check *errorpatterns.MarkerCheck, command string, col int) bool {
	switch check.ExpectedPosition {
	case errorpatterns.MarkerEndOfCommand:
		return col >= len(strings.TrimRight(command, " \t"))
	case errorpatterns.MarkerAtChar:
		return col == check.AtChar
	case errorpatterns.MarkerBeforeSlash:
		idx := strings.IndexByte(command, '/')
		return idx >= 0 && col <= idx
	default:
		return false
	}
}

// wordAtColumn returns the whitespace-delimited token in line that sits
// under column col, used to pull the mistyped word the caret points at.
func wordAtColumn(line string, col int) string {
	if col < 0 || col > len(line) {
		return ""
	}
	start := col
	for start > 0 && !isSpace(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && !isSpace(line[end]) {
		end++
	}
	return line[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }
