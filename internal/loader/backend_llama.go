//go:build llama

package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"assembld/internal/device"
	"assembld/internal/pipeline"
)

// llamaBuilt indicates whether this binary carries the real GGUF backend.
var llamaBuilt = true

const defaultCacheBlockSize = 32

type llamaBackend struct{}

// DefaultBackend returns the in-process go-llama.cpp backend.
func DefaultBackend() Backend { return llamaBackend{} }

type llamaRuntime struct {
	model *llama.LLama
}

func (r *llamaRuntime) Close() error {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

func (llamaBackend) Load(ctx context.Context, spec Spec, req HubRequest) (*pipeline.Handle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	path, err := resolveModelPath(spec)
	if err != nil {
		return nil, err
	}

	maxSeqLen := 4096
	if req.DeviceMapping.Auto != nil && req.DeviceMapping.Auto.MaxSeqLen > 0 {
		maxSeqLen = req.DeviceMapping.Auto.MaxSeqLen
	}
	opts := []llama.ModelOption{llama.SetContext(maxSeqLen)}
	if req.Device.Kind == device.KindCUDA {
		// Offload everything; explicit per-device splits are not supported by
		// the in-process backend.
		opts = append(opts, llama.SetGPULayers(9999))
	}
	if len(spec.AdapterIDs) > 0 {
		// go-llama.cpp applies a single adapter; the first id wins.
		opts = append(opts, llama.SetLoraAdapter(spec.AdapterIDs[0]), llama.SetLoraBase(path))
	}

	m, err := llama.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	meta := pipeline.Metadata{
		ModelID:     spec.ModelID,
		MaxSeqLen:   maxSeqLen,
		NoKVCache:   spec.NoKVCache,
		CacheConfig: resolveCacheConfig(req, maxSeqLen),
	}
	return pipeline.NewHandle(meta, &llamaRuntime{model: m}), nil
}

// resolveCacheConfig turns a paged-attention request into concrete cache
// geometry. CPU-only loads report no cache, which the scheduler treats as
// fallback (vision) or a contract violation (text).
func resolveCacheConfig(req HubRequest, maxSeqLen int) *pipeline.CacheConfig {
	if req.PagedAttn == nil || req.Device.Kind != device.KindCUDA {
		return nil
	}
	bs := defaultCacheBlockSize
	if req.PagedAttn.BlockSize != nil && *req.PagedAttn.BlockSize > 0 {
		bs = *req.PagedAttn.BlockSize
	}
	gpuBlocks := maxSeqLen / bs
	if gpuBlocks < 1 {
		gpuBlocks = 1
	}
	cpuBlocks := 0
	if req.PagedAttn.MemCPUMB > 0 {
		cpuBlocks = req.PagedAttn.MemCPUMB / bs
	}
	return &pipeline.CacheConfig{BlockSize: bs, NumGPUBlocks: gpuBlocks, NumCPUBlocks: cpuBlocks}
}

func resolveModelPath(spec Spec) (string, error) {
	candidates := []string{spec.ModelID}
	if spec.Text != nil && spec.Text.HubCachePath != nil {
		candidates = append(candidates, filepath.Join(*spec.Text.HubCachePath, spec.ModelID))
	}
	if spec.Vision != nil && spec.Vision.HubCachePath != nil {
		candidates = append(candidates, filepath.Join(*spec.Vision.HubCachePath, spec.ModelID))
	}
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", errors.New("model not found locally: " + spec.ModelID)
}
