// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package retriever

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

func init() {
	// Registers the vec0 virtual table module with the sqlite3 driver, so
	// Index can probe for it the same way the pack's vector stores do
	// (§4.3, grounded on codenerd's initVectorExtension probe-and-fallback).
	sqlitevec.Auto()
}

// Index is the read-only-after-load persistent vector index of §6.5
// ("Vector index file... opaque to core; binary produced by indexer").
// Lookups are thread-safe; nothing here mutates after Load (§5 "Vector
// Index: read-only after load; thread-safe lookups").
type Index struct {
	db     *sql.DB
	dim    int
	vecOK  bool
	logger *zap.Logger
}

// Option configures an Index at construction time.
type Option func(*Index)

// WithLogger sets the index's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(idx *Index) { idx.logger = logger }
}

// OpenIndex opens the persisted vector index + chunk metadata database at
// path (§6.5, §6.4 "retriever.index_path"). dim is the embedding
// dimensionality the index was built with (§6.4 "embeddings.dim=1024").
// A missing or unreadable file is not fatal here: the caller (Retriever)
// treats it as IndexUnavailable per §4.3's failure semantics.
func OpenIndex(path string, dim int, opts ...Option) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening vector index %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging vector index %s: %w", path, err)
	}

	idx := &Index{db: db, dim: dim, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(idx)
	}

	idx.vecOK = idx.probeVecExtension()
	if !idx.vecOK {
		idx.logger.Warn("sqlite-vec extension unavailable; retriever will use brute-force cosine search")
	}
	return idx, nil
}

// probeVecExtension mirrors the pack's "create a throwaway vec0 table,
// drop it" availability check (codenerd's initVectorExtension) rather than
// assuming the extension loaded.
func (idx *Index) probeVecExtension() bool {
	if _, err := idx.db.Exec(fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS iostutor_vec_probe USING vec0(embedding float[%d])", idx.dim)); err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS iostutor_vec_probe")
	return true
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Search returns the k nearest chunks to queryEmbedding by cosine
// similarity, preferring the vec0 ANN path and falling back to brute force
// when the extension isn't available (§4.3 "1024-d cosine similarity;
// pre-built persistent index").
func (idx *Index) Search(ctx context.Context, queryEmbedding []float32, k int) ([]types.RetrievedDoc, error) {
	if idx.vecOK {
		docs, err := idx.searchVec(ctx, queryEmbedding, k)
		if err == nil {
			return docs, nil
		}
		idx.logger.Warn("vec0 search failed; falling back to brute force", zap.Error(err))
	}
	return idx.searchBruteForce(ctx, queryEmbedding, k)
}

func (idx *Index) searchVec(ctx context.Context, queryEmbedding []float32, k int) ([]types.RetrievedDoc, error) {
	blob, err := sqlitevec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("serializing query embedding: %w", err)
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT c.content, c.doc_class, c.lab_id, c.source_file,
		       vec_distance_cosine(v.embedding, ?) AS distance
		FROM chunk_vec v
		JOIN chunks c ON c.chunk_id = v.chunk_id
		ORDER BY distance ASC
		LIMIT ?
	`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("vec0 search: %w", err)
	}
	defer rows.Close()

	var out []types.RetrievedDoc
	for rows.Next() {
		var d types.RetrievedDoc
		var distance float64
		var docClass, labID, source string
		if err := rows.Scan(&d.Content, &docClass, &labID, &source, &distance); err != nil {
			idx.logger.Warn("scanning vec0 search row", zap.Error(err))
			continue
		}
		d.DocClass = types.DocClass(docClass)
		d.LabID = labID
		d.Source = source
		d.Score = 1 - distance
		out = append(out, d)
	}
	return out, rows.Err()
}

// searchBruteForce computes cosine similarity in process against every
// stored chunk, used when vec0 is unavailable (§4.3 failure semantics;
// grounded on learned_store.go's searchBruteForce).
func (idx *Index) searchBruteForce(ctx context.Context, queryEmbedding []float32, k int) ([]types.RetrievedDoc, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT content, doc_class, lab_id, source_file, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("brute-force scan: %w", err)
	}
	defer rows.Close()

	var candidates []types.RetrievedDoc
	for rows.Next() {
		var content, docClass, labID, source string
		var blob []byte
		if err := rows.Scan(&content, &docClass, &labID, &source, &blob); err != nil {
			continue
		}
		vec := decodeFloat32Blob(blob)
		if len(vec) == 0 {
			continue
		}
		sim, ok := cosineSimilarity(queryEmbedding, vec)
		if !ok {
			continue
		}
		candidates = append(candidates, types.RetrievedDoc{
			Content: content, DocClass: types.DocClass(docClass), LabID: labID, Source: source, Score: sim,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

func decodeFloat32Blob(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil
	}
	return vec
}
