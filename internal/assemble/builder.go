// Package assemble turns a modality-tagged base-model descriptor plus a list
// of LoRA adapter ids into a ready-to-serve Model: it projects the load
// config, assembles and invokes the loader, derives the scheduler policy from
// the loaded pipeline, and wires the runner.
package assemble

import (
	"context"
	"errors"
	"sync/atomic"

	"assembld/internal/device"
	"assembld/internal/loader"
	"assembld/internal/logging"
	"assembld/internal/runner"
	"assembld/internal/sched"
)

// ErrAlreadyBuilt is returned when Build is called on a consumed builder.
var ErrAlreadyBuilt = errors.New("assemble: builder already consumed")

// Builder wraps a text or vision descriptor plus adapter ids. Construct with
// FromTextDescriptor or FromVisionDescriptor; a builder is single-use.
type Builder struct {
	modality Modality
	text     *TextDescriptor
	vision   *VisionDescriptor
	adapters []string
	backend  loader.Backend
	built    atomic.Bool
}

// FromTextDescriptor wraps a text descriptor. Adapter ids pass through
// untouched; duplicates and an empty list are both valid.
func FromTextDescriptor(d TextDescriptor, adapterIDs ...string) *Builder {
	return &Builder{
		modality: ModalityText,
		text:     &d,
		adapters: append([]string(nil), adapterIDs...),
	}
}

// FromVisionDescriptor wraps a vision descriptor.
func FromVisionDescriptor(d VisionDescriptor, adapterIDs ...string) *Builder {
	return &Builder{
		modality: ModalityVision,
		vision:   &d,
		adapters: append([]string(nil), adapterIDs...),
	}
}

// WithBackend overrides the compile-time loader backend.
func (b *Builder) WithBackend(be loader.Backend) *Builder {
	b.backend = be
	return b
}

// Build assembles the model. It dispatches once on the modality tag; the two
// paths are structurally parallel and differ only where the domain does
// (organization and KV-cache toggle on text, bound-tool callbacks and
// missing-cache fallback on vision).
func (b *Builder) Build(ctx context.Context) (*Model, error) {
	if b.built.Swap(true) {
		return nil, ErrAlreadyBuilt
	}
	switch b.modality {
	case ModalityText:
		return b.buildText(ctx)
	case ModalityVision:
		return b.buildVision(ctx)
	}
	return nil, errors.New("assemble: descriptor missing")
}

func (b *Builder) buildText(ctx context.Context) (*Model, error) {
	d := b.text
	cfg := projectText(d)

	if d.WithLogging {
		logging.Init()
	}

	lb := loader.NewTextBuilder(cfg, d.ChatTemplate, d.TokenizerJSON, d.ModelID, d.NoKVCache, d.JinjaExplicit).
		WithLoRA(b.adapters)
	if b.backend != nil {
		lb = lb.WithBackend(b.backend)
	}
	ld, err := lb.Build(d.LoaderType)
	if err != nil {
		return nil, err
	}

	dev, err := resolveDevice(d.Device, d.ForceCPU)
	if err != nil {
		return nil, err
	}
	mapping := resolveMapping(d.DeviceMapping, loader.DefaultTextMapParams())

	pipe, err := ld.LoadFromHub(ctx, loader.HubRequest{
		Revision:      d.Revision,
		TokenSource:   d.TokenSource,
		Dtype:         d.Dtype,
		Device:        dev,
		SilentLoad:    !d.WithLogging,
		DeviceMapping: mapping,
		ISQ:           d.ISQ,
		PagedAttn:     d.PagedAttnCfg,
	})
	if err != nil {
		return nil, err
	}

	policy, err := sched.Select(ctx, pipe, sched.Params{
		PagedAttnRequested: d.PagedAttnCfg != nil,
		MaxNumSeqs:         d.MaxNumSeqs,
		// Text treats a missing cache config after a paged-attention load as
		// a loader contract violation; see sched.Params.
		FallbackOnMissingCache: false,
	})
	if err != nil {
		// The pipeline is already bound to backend resources; release it
		// before surfacing the failure.
		_ = pipe.Close()
		return nil, err
	}

	rb := runner.NewBuilder(pipe, policy, d.ThroughputLogging, d.SearchEmbedModel)
	if d.SearchCallback != nil {
		rb = rb.WithSearchCallback(d.SearchCallback)
	}
	for name, cb := range d.ToolCallbacks {
		rb = rb.WithToolCallback(name, cb)
	}
	rb = rb.
		WithNoKVCache(d.NoKVCache).
		WithNoPrefixCache(d.PrefixCacheN == nil)
	if d.PrefixCacheN != nil {
		rb = rb.WithPrefixCacheN(*d.PrefixCacheN)
	}

	return newModel(ModalityText, d.ModelID, b.adapters, rb.Build(ctx)), nil
}

func (b *Builder) buildVision(ctx context.Context) (*Model, error) {
	d := b.vision
	cfg := projectVision(d)

	if d.WithLogging {
		logging.Init()
	}

	lb := loader.NewVisionBuilder(cfg, d.ChatTemplate, d.TokenizerJSON, d.ModelID, d.JinjaExplicit).
		WithLoRA(b.adapters)
	if b.backend != nil {
		lb = lb.WithBackend(b.backend)
	}
	ld := lb.Build(d.LoaderType)

	dev, err := resolveDevice(d.Device, d.ForceCPU)
	if err != nil {
		return nil, err
	}
	mapping := resolveMapping(d.DeviceMapping, loader.DefaultVisionMapParams())

	pipe, err := ld.LoadFromHub(ctx, loader.HubRequest{
		Revision:      d.Revision,
		TokenSource:   d.TokenSource,
		Dtype:         d.Dtype,
		Device:        dev,
		SilentLoad:    !d.WithLogging,
		DeviceMapping: mapping,
		ISQ:           d.ISQ,
		PagedAttn:     d.PagedAttnCfg,
	})
	if err != nil {
		return nil, err
	}

	policy, err := sched.Select(ctx, pipe, sched.Params{
		PagedAttnRequested:     d.PagedAttnCfg != nil,
		MaxNumSeqs:             d.MaxNumSeqs,
		FallbackOnMissingCache: true,
	})
	if err != nil {
		_ = pipe.Close()
		return nil, err
	}

	rb := runner.NewBuilder(pipe, policy, d.ThroughputLogging, d.SearchEmbedModel)
	if d.SearchCallback != nil {
		rb = rb.WithSearchCallback(d.SearchCallback)
	}
	for name, cb := range d.ToolCallbacks {
		rb = rb.WithToolCallback(name, cb)
	}
	for name, cbt := range d.ToolCallbacksWithTools {
		rb = rb.WithToolCallbackAndTool(name, cbt.Callback, cbt.Tool)
	}
	// Vision models never disable the KV cache.
	rb = rb.
		WithNoKVCache(false).
		WithNoPrefixCache(d.PrefixCacheN == nil)
	if d.PrefixCacheN != nil {
		rb = rb.WithPrefixCacheN(*d.PrefixCacheN)
	}

	return newModel(ModalityVision, d.ModelID, b.adapters, rb.Build(ctx)), nil
}

func resolveDevice(explicit *device.Device, forceCPU bool) (device.Device, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return device.Best(forceCPU)
}

func resolveMapping(explicit *loader.DeviceMapSetting, auto loader.AutoDeviceMapParams) loader.DeviceMapSetting {
	if explicit != nil {
		return *explicit
	}
	return loader.AutoDeviceMap(auto)
}
