// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package detector

import (
	"slices"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// similarityThreshold and distanceThreshold implement "Damerau-Levenshtein
// similarity ≥ 0.7 or edit distance ≤ 2, whichever is looser" (§4.2 step
// 2e). The pack carries no transposition-aware distance implementation, so
// plain Levenshtein distance from agnivade/levenshtein stands in; it only
// disagrees with Damerau-Levenshtein on adjacent-transposition typos, which
// still land within edit distance 2 for the short command tokens this
// detector sees.
const (
	similarityThreshold = 0.7
	distanceThreshold   = 2
)

type vocabSource []string

func (v vocabSource) String(i int) string { return v[i] }
func (v vocabSource) Len() int            { return len(v) }

// similarity normalizes Levenshtein distance into the [0,1] range used by
// the threshold rule, against the longer of the two words.
func similarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// nearestVocabWord orders vocabulary words with sahilm/fuzzy's ranked
// matches first and the remaining words after them in sorted order, picks
// the most similar word (the earliest one on ties), then gates it with the
// similarity-or-distance rule. Returns nil when no candidate clears the
// gate (§4.2 step 2e "if the closest word ... exists, attach ...").
func nearestVocabWord(vocab map[string]struct{}, typed string) *types.FuzzyMatch {
	if len(vocab) == 0 || typed == "" {
		return nil
	}

	words := make([]string, 0, len(vocab))
	for w := range vocab {
		words = append(words, w)
	}
	sort.Strings(words)

	// fuzzy.Find only returns subsequence matches, which miss substitution
	// typos ("hostnane" for "hostname"), so every other word follows them.
	candidates := make([]string, 0, len(words))
	for _, m := range fuzzy.Find(typed, vocabSource(words)) {
		candidates = append(candidates, m.Str)
	}
	for _, w := range words {
		if !slices.Contains(candidates, w) {
			candidates = append(candidates, w)
		}
	}

	best := ""
	bestSim := -1.0
	bestDist := 1 << 30
	for _, w := range candidates {
		sim := similarity(typed, w)
		dist := levenshtein.ComputeDistance(typed, w)
		if sim > bestSim {
			best, bestSim, bestDist = w, sim, dist
		}
	}

	if bestSim >= similarityThreshold || bestDist <= distanceThreshold {
		return &types.FuzzyMatch{TypedWord: typed, SuggestedWord: best, Similarity: bestSim}
	}
	return nil
}
