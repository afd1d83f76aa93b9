// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package retriever implements the Retriever (§4.3): query rewriting,
// vector search over a pre-built index of lab documents, and doc-class
// prioritization for the feedback nodes.
package retriever

import "github.com/teradata-labs/ios-tutor-core/pkg/types"

// Chunk is the immutable-at-runtime Retrieved Document chunk (§3), as
// produced by an offline indexer and persisted alongside the vector index.
type Chunk struct {
	ChunkID    string
	Content    string
	Embedding  []float32
	DocClass   types.DocClass
	LabID      string
	SourceFile string
	Offset     int
}
