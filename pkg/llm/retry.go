// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package llm

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"
)

// backoffBaseline and backoffJitter set the retry delay for non-streaming
// idempotent calls (§5 "retry at most 2 times, exponential backoff,
// baseline 250ms, jitter +/-50ms"). Grounded on the doubling shape of the
// teacher's rate_limiter.go executeWithRetry, stripped of its token-bucket
// queue, RPS throttling, and per-provider metrics: those exist to manage a
// shared multi-tenant request budget across many concurrent agents, which
// this single-session-at-a-time tutor core has no use for (see DESIGN.md).
const (
	backoffBaseline = 250 * time.Millisecond
	backoffJitter   = 50 * time.Millisecond
	maxRetries      = 2
)

// StatusCoder is implemented by provider errors that carry an HTTP status
// code, so Retry can tell a 5xx (retry) from a 4xx (give up) without
// depending on any specific provider package.
type StatusCoder interface {
	StatusCode() int
}

// retryable reports whether err is worth retrying: transport failures and
// 5xx responses, never 4xx (a bad request will not improve by resending).
func retryable(err error) bool {
	if err == nil {
		return false
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode() >= http.StatusInternalServerError
	}
	return true
}

// Retry runs fn up to maxRetries+1 times, backing off exponentially
// between attempts, and gives up early on context cancellation or a
// non-retryable error. Streaming calls never pass through this helper (§5
// "streaming calls are not retried mid-stream").
func Retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == maxRetries {
			return lastErr
		}
		delay := backoffBaseline * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(2*backoffJitter))) - backoffJitter
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
