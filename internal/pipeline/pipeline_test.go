package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func TestMetadataReturnsCopy(t *testing.T) {
	h := NewHandle(Metadata{ModelID: "m", CacheConfig: &CacheConfig{BlockSize: 32, NumGPUBlocks: 8}}, nil)
	m1, err := h.Metadata(context.Background())
	require.NoError(t, err)
	m1.CacheConfig.NumGPUBlocks = 999

	m2, err := h.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, m2.CacheConfig.NumGPUBlocks, "mutating a returned copy must not leak into the handle")
}

func TestMetadataCanceledContext(t *testing.T) {
	h := NewHandle(Metadata{ModelID: "m"}, nil)
	// Hold the lock so acquisition blocks, then cancel.
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Metadata(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCloseReleasesRuntimeOnce(t *testing.T) {
	c := &closeCounter{}
	h := NewHandle(Metadata{}, c)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Equal(t, 1, c.n)
}
