package pipeline

import (
	"context"
)

// PagedAttnConfig is the caller-side request for a paged-attention KV cache.
// The loader backend resolves it into a concrete CacheConfig, or reports no
// cache at all when the target device cannot serve one.
type PagedAttnConfig struct {
	// BlockSize in tokens per cache page; nil selects the backend default.
	BlockSize *int
	// MemCPUMB is the host memory reserved for swapped-out pages.
	MemCPUMB int
	// MemGPUUtilization is the fraction of device memory given to the cache.
	MemGPUUtilization float64
}

// CacheConfig is the resolved paged-attention cache geometry reported by a
// loaded pipeline.
type CacheConfig struct {
	BlockSize    int
	NumGPUBlocks int
	NumCPUBlocks int
}

// Metadata is the queryable state of a loaded pipeline.
type Metadata struct {
	ModelID   string
	MaxSeqLen int
	NoKVCache bool
	// CacheConfig is non-nil only when the pipeline was configured with a
	// paged-attention cache.
	CacheConfig *CacheConfig
}

// Runtime is the externally owned, device-bound model instance behind a
// Handle. Implementations live in the loader backends.
type Runtime interface {
	Close() error
}

// Handle guards a loaded pipeline. Metadata reads take a scoped exclusive
// lock implemented as a capacity-1 semaphore so acquisition can be abandoned
// on context cancellation; the lock is held only for the metadata copy.
type Handle struct {
	sem  chan struct{}
	meta Metadata
	rt   Runtime
}

// NewHandle wraps a loaded runtime and its metadata.
func NewHandle(meta Metadata, rt Runtime) *Handle {
	return &Handle{sem: make(chan struct{}, 1), meta: meta, rt: rt}
}

// Metadata returns a copy of the pipeline metadata.
func (h *Handle) Metadata(ctx context.Context) (Metadata, error) {
	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		return Metadata{}, ctx.Err()
	}
	m := h.meta
	if h.meta.CacheConfig != nil {
		cc := *h.meta.CacheConfig
		m.CacheConfig = &cc
	}
	<-h.sem
	return m, nil
}

// Close releases the underlying runtime. Safe on a handle without one.
func (h *Handle) Close() error {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()
	if h.rt == nil {
		return nil
	}
	err := h.rt.Close()
	h.rt = nil
	return err
}
