// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStatusErr struct{ code int }

func (e *fakeStatusErr) Error() string   { return "status error" }
func (e *fakeStatusErr) StatusCode() int { return e.code }

func TestRetry_SucceedsWithoutRetryOnFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestRetry_RetriesOn5xxUpToMaxRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return &fakeStatusErr{code: 503}
	})
	require.Error(t, err)
	require.Equal(t, maxRetries+1, calls)
}

func TestRetry_DoesNotRetry4xx(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		return &fakeStatusErr{code: 400}
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetry_RetriesPlainTransportError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetry_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, func() error {
		calls++
		return &fakeStatusErr{code: 503}
	})
	require.Error(t, err)
}
