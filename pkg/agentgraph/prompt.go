// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package agentgraph

import (
	"fmt"
	"strings"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// renderDocs inlines retrieved documents as "[DOC i]" blocks (§4.4.2
// "retrieved documents inlined as [DOC i]").
func renderDocs(docs []types.RetrievedDoc) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[DOC %d] (%s)\n%s\n\n", i+1, d.DocClass, d.Content)
	}
	return b.String()
}

// renderDocsByClass groups retrieved documents into the three labeled
// sections the troubleshooting feedback node requires (§4.4.3 "Assemble
// retrieved documents in three labeled sections matching their doc_class").
func renderDocsByClass(docs []types.RetrievedDoc) string {
	sections := []struct {
		class types.DocClass
		label string
	}{
		{types.DocClassErrorPatterns, "ERROR PATTERNS"},
		{types.DocClassCommandReference, "COMMAND REFERENCE"},
		{types.DocClassLabSpecific, "LAB-SPECIFIC NOTES"},
	}

	var b strings.Builder
	for _, sec := range sections {
		var matched []types.RetrievedDoc
		for _, d := range docs {
			if d.DocClass == sec.class {
				matched = append(matched, d)
			}
		}
		if len(matched) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", sec.label)
		for i, d := range matched {
			fmt.Fprintf(&b, "[DOC %d] %s\n", i+1, d.Content)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// toneForMastery maps mastery_level to a one-line tone instruction (§3
// "mastery_level ... affects prompt tone only"; §9 "no measured adaptation
// exists; do not invent one").
func toneForMastery(level types.MasteryLevel) string {
	switch level {
	case types.MasteryNovice:
		return "Explain in plain language, define any jargon the first time you use it, and favor short sentences."
	case types.MasteryAdvanced:
		return "Be concise and technical; assume familiarity with IOS terminology and skip basic definitions."
	default:
		return "Explain clearly with moderate technical detail, defining jargon briefly on first use."
	}
}

// teachingSystemPrompt builds the concept-focused system prompt for the
// Teaching Feedback node (§4.4.2).
func teachingSystemPrompt(lab types.LabContext, mastery types.MasteryLevel, docs []types.RetrievedDoc) string {
	var b strings.Builder
	b.WriteString("You are a Cisco IOS lab tutor helping a student understand a networking concept.\n")
	fmt.Fprintf(&b, "Lab: %s — %s\n", lab.Title, lab.Description)
	b.WriteString(toneForMastery(mastery))
	b.WriteString("\n\n")
	if rendered := renderDocs(docs); rendered != "" {
		b.WriteString("Reference material:\n")
		b.WriteString(rendered)
	}
	b.WriteString("Answer the student's question directly. Do not mention documents, tools, or internal reasoning.\n")
	return b.String()
}

// renderTerminalActivity builds the inline "terminal activity" block the
// troubleshooting feedback node prepends to ground the model in observed
// CLI output (§4.4.3 pre-processing). diagnoses is keyed by index into
// window, matching cli_diagnoses's "same index window" invariant (§3).
func renderTerminalActivity(window []types.CLIEntry, diagnoses map[int]types.Detection) string {
	if len(window) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## TERMINAL ACTIVITY (ground truth, do not contradict)\n")
	for i, entry := range window {
		fmt.Fprintf(&b, "$ %s\n%s\n", entry.Command, entry.Output)
		if det, ok := diagnoses[i]; ok && det.Matched {
			fmt.Fprintf(&b, "error_type: %s\ndiagnosis: %s\nfix: %s\n", det.ErrorType, det.Diagnosis, det.Fix)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// troubleshootingSystemPrompt builds the troubleshooting feedback node's
// system prompt (§4.4.3 composition rules a-d).
func troubleshootingSystemPrompt(lab types.LabContext, window []types.CLIEntry, diagnoses map[int]types.Detection, docs []types.RetrievedDoc, toolsEnabled bool) string {
	var b strings.Builder
	b.WriteString("You are a Cisco IOS lab tutor helping a student fix a problem in their lab.\n")
	fmt.Fprintf(&b, "Lab: %s — %s\n\n", lab.Title, lab.Description)
	b.WriteString(renderTerminalActivity(window, diagnoses))
	b.WriteString("The terminal activity above is ground truth; never contradict it.\n")
	b.WriteString("Never suggest CIDR notation (e.g. /24) as a command argument; IOS classic commands take dotted-decimal masks.\n")
	if hasAnyDiagnosis(diagnoses) {
		b.WriteString("A diagnosis has already been computed above. Paraphrase it for the student; do not re-derive or contradict it.\n")
	}
	if toolsEnabled {
		b.WriteString("If you need live device state to answer, call the get_device_running_config tool.\n")
	}
	if rendered := renderDocsByClass(docs); rendered != "" {
		b.WriteString("\nReference material:\n")
		b.WriteString(rendered)
	}
	return b.String()
}

func hasAnyDiagnosis(diagnoses map[int]types.Detection) bool {
	for _, d := range diagnoses {
		if d.Matched {
			return true
		}
	}
	return false
}
