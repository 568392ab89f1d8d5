package splatview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerDecoderMatchesInProcess(t *testing.T) {
	buf := buildSplat(2, []testPoint{
		{x: 0x3c00, y: 0xbc00, z: 0x3800, r: 255, g: 0, b: 0},
		{x: 0x4000, y: 0x3c00, z: 0x0000, r: 0, g: 255, b: 0},
	})

	worker := NewDecoder(2)
	defer worker.Close()
	inline := NewDecoder(0)
	defer inline.Close()

	// the worker consumes its buffer, so decode from separate copies
	fromWorker, err := worker.DecodeScene(context.Background(), append([]byte(nil), buf...))
	require.NoError(t, err)
	fromInline, err := inline.DecodeScene(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, fromInline, fromWorker)
}

func TestWorkerDecoderPropagatesFormatError(t *testing.T) {
	worker := NewDecoder(1)
	defer worker.Close()

	_, err := worker.DecodeScene(context.Background(), []byte{9, 0, 0, 0})
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestWorkerDecoderHonorsCancellation(t *testing.T) {
	// no goroutines draining jobs: the submit must block until ctx fires
	d := &workerDecoder{jobs: make(chan decodeJob)}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := d.DecodeScene(ctx, []byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, context.Canceled)
}
