package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	wp := NewWorkerPool(4)
	defer wp.Close()
	assert.Equal(t, 4, wp.Size())

	var n atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		require.NoError(t, wp.Submit(t.Context(), func() {
			defer wg.Done()
			n.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(100), n.Load())
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Close()
	wp.Close()

	err := wp.Submit(t.Context(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWorkerPool_SubmitCanceled(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	defer close(block)

	// One running task plus a full queue.
	for range 3 {
		require.NoError(t, wp.Submit(t.Context(), func() { <-block }))
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := wp.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_DefaultSize(t *testing.T) {
	wp := NewWorkerPool(0)
	defer wp.Close()
	assert.Positive(t, wp.Size())
}

func TestWorkerPool_Run(t *testing.T) {
	wp := NewWorkerPool(3)
	defer wp.Close()

	out := make([]int, 10)
	require.NoError(t, wp.Run(t.Context(), len(out), func(i int) error {
		out[i] = i * i
		return nil
	}))
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, out)
}

func TestWorkerPool_RunFirstErrorWins(t *testing.T) {
	wp := NewWorkerPool(4)
	defer wp.Close()

	first, second := errors.New("first"), errors.New("second")
	err := wp.Run(t.Context(), 8, func(i int) error {
		switch i {
		case 2:
			return first
		case 5:
			return second
		}
		return nil
	})
	assert.Equal(t, first, err)

	err = wp.Run(t.Context(), 2, func(i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
