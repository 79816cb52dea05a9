//go:build !llama

package loader

// This file provides a no-CGO stub backend compiled when the 'llama' build
// tag is NOT set, keeping default builds and CI CGO-free. The real backend
// lives in backend_llama.go (tagged 'llama').

import (
	"context"

	"assembld/internal/pipeline"
)

// llamaBuilt indicates whether this binary carries the real GGUF backend.
var llamaBuilt = false

type stubBackend struct{}

// DefaultBackend returns the compile-time backend. Without the 'llama' tag it
// refuses every load rather than mock one.
func DefaultBackend() Backend { return stubBackend{} }

func (stubBackend) Load(ctx context.Context, spec Spec, req HubRequest) (*pipeline.Handle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return nil, ErrBackendUnavailable("gguf backend not built (missing 'llama' build tag)")
}
