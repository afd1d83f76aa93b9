// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package retriever

import (
	"sort"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

const maxRetrievedDocs = 5

// docClassRank fixes the total order retrieved_docs is sorted by before
// similarity score (§3 invariant "retrieved_docs is always sorted first by
// doc_class priority, then by similarity score").
var docClassRank = map[types.DocClass]int{
	types.DocClassErrorPatterns:    0,
	types.DocClassCommandReference: 1,
	types.DocClassLabSpecific:      2,
}

// sortByClassThenScore applies the §3 ordering invariant to any doc slice.
func sortByClassThenScore(docs []types.RetrievedDoc) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docClassRank[docs[i].DocClass] != docClassRank[docs[j].DocClass] {
			return docClassRank[docs[i].DocClass] < docClassRank[docs[j].DocClass]
		}
		return docs[i].Score > docs[j].Score
	})
}

// PrioritizeTroubleshooting builds the final troubleshooting doc list from
// a k=12 candidate pool (§4.3 "Prioritization (troubleshooting only)").
// hasErrorContext selects which bucket split applies; only the error-context
// split tops a short list up from the remaining classes.
func PrioritizeTroubleshooting(candidates []types.RetrievedDoc, hasErrorContext bool) []types.RetrievedDoc {
	byClass := bucketByClass(candidates)

	var quota map[types.DocClass]int
	if hasErrorContext {
		quota = map[types.DocClass]int{
			types.DocClassErrorPatterns:    2,
			types.DocClassCommandReference: 2,
			types.DocClassLabSpecific:      1,
		}
	} else {
		quota = map[types.DocClass]int{
			types.DocClassCommandReference: 3,
			types.DocClassLabSpecific:      2,
		}
	}

	out := takeQuota(byClass, quota)
	if hasErrorContext {
		out = fillShortfall(out, byClass, maxRetrievedDocs)
	}
	sortByClassThenScore(out)
	return capDocs(out, maxRetrievedDocs)
}

// PrioritizeTeaching orders the k=3 teaching candidates by the §3
// invariant; teaching mode has no class quota of its own, it simply keeps
// whatever the k=3 search already returned (§4.3 "Teaching mode: ... k=3;
// no error enrichment").
func PrioritizeTeaching(candidates []types.RetrievedDoc) []types.RetrievedDoc {
	out := make([]types.RetrievedDoc, len(candidates))
	copy(out, candidates)
	sortByClassThenScore(out)
	return capDocs(out, maxRetrievedDocs)
}

func bucketByClass(docs []types.RetrievedDoc) map[types.DocClass][]types.RetrievedDoc {
	buckets := make(map[types.DocClass][]types.RetrievedDoc)
	for _, d := range docs {
		buckets[d.DocClass] = append(buckets[d.DocClass], d)
	}
	for class := range buckets {
		sort.SliceStable(buckets[class], func(i, j int) bool {
			return buckets[class][i].Score > buckets[class][j].Score
		})
	}
	return buckets
}

func takeQuota(byClass map[types.DocClass][]types.RetrievedDoc, quota map[types.DocClass]int) []types.RetrievedDoc {
	var out []types.RetrievedDoc
	for class, n := range quota {
		bucket := byClass[class]
		if n > len(bucket) {
			n = len(bucket)
		}
		out = append(out, bucket[:n]...)
		byClass[class] = bucket[n:]
	}
	return out
}

// fillShortfall tops the list up from any remaining class when a bucket
// came up short (§4.3 "filling from any class if a bucket is short").
func fillShortfall(have []types.RetrievedDoc, byClass map[types.DocClass][]types.RetrievedDoc, target int) []types.RetrievedDoc {
	if len(have) >= target {
		return have
	}
	var remaining []types.RetrievedDoc
	for _, class := range []types.DocClass{types.DocClassErrorPatterns, types.DocClassCommandReference, types.DocClassLabSpecific} {
		remaining = append(remaining, byClass[class]...)
	}
	sort.SliceStable(remaining, func(i, j int) bool { return remaining[i].Score > remaining[j].Score })

	need := target - len(have)
	if need > len(remaining) {
		need = len(remaining)
	}
	return append(have, remaining[:need]...)
}

func capDocs(docs []types.RetrievedDoc, max int) []types.RetrievedDoc {
	if len(docs) > max {
		return docs[:max]
	}
	return docs
}
