package loader

import (
	"context"
	"fmt"

	"assembld/internal/device"
	"assembld/internal/pipeline"
)

// Spec is the fully assembled loader input handed to a Backend. Exactly one
// of Text/Vision is non-nil and fixes the modality.
type Spec struct {
	ModelID       string
	Text          *TextConfig
	Vision        *VisionConfig
	ChatTemplate  *string
	TokenizerJSON *string
	JinjaExplicit *string
	// NoKVCache is only honored for text specs; vision loads always keep the
	// KV cache enabled.
	NoKVCache  bool
	AdapterIDs []string
	LoaderType *string
}

// HubRequest parameterizes a single model-from-hub load.
type HubRequest struct {
	Revision      *string
	TokenSource   TokenSource
	Dtype         DType
	Device        device.Device
	SilentLoad    bool
	DeviceMapping DeviceMapSetting
	ISQ           *IsqType
	PagedAttn     *pipeline.PagedAttnConfig
}

// Backend performs the actual weight loading. The default implementation is
// selected at compile time (see backend_llama.go / backend_stub.go); tests
// substitute fakes.
type Backend interface {
	Load(ctx context.Context, spec Spec, req HubRequest) (*pipeline.Handle, error)
}

// Loader is a finalized, adapter-aware loader bound to a backend.
type Loader struct {
	spec    Spec
	backend Backend
}

// Spec exposes the assembled loader input, mainly for tests and logging.
func (l *Loader) Spec() Spec { return l.spec }

// LoadFromHub loads the model onto the requested device and returns the
// pipeline handle. Errors come straight from the backend.
func (l *Loader) LoadFromHub(ctx context.Context, req HubRequest) (*pipeline.Handle, error) {
	return l.backend.Load(ctx, l.spec, req)
}

// textLoaderTypes are the architectures the text loader can be pinned to.
// An unset loader type means auto-detection from the checkpoint.
var textLoaderTypes = map[string]struct{}{
	"llama": {}, "mistral": {}, "mixtral": {}, "gemma": {}, "gemma2": {},
	"phi2": {}, "phi3": {}, "qwen2": {}, "starcoder2": {},
}

// TextBuilder assembles a text-model loader.
type TextBuilder struct {
	cfg           TextConfig
	chatTemplate  *string
	tokenizerJSON *string
	modelID       string
	noKVCache     bool
	jinjaExplicit *string
	adapters      []string
	backend       Backend
}

// NewTextBuilder starts a text loader from its projected config, template and
// tokenizer sources, model id, KV-cache toggle and explicit-template flag.
func NewTextBuilder(cfg TextConfig, chatTemplate, tokenizerJSON *string, modelID string, noKVCache bool, jinjaExplicit *string) *TextBuilder {
	return &TextBuilder{
		cfg:           cfg,
		chatTemplate:  chatTemplate,
		tokenizerJSON: tokenizerJSON,
		modelID:       modelID,
		noKVCache:     noKVCache,
		jinjaExplicit: jinjaExplicit,
	}
}

// WithLoRA attaches the adapter id list. Attachment is unconditional: an
// empty list yields an adapter-free loader, never an error.
func (b *TextBuilder) WithLoRA(ids []string) *TextBuilder {
	b.adapters = append([]string(nil), ids...)
	return b
}

// WithBackend overrides the compile-time default backend.
func (b *TextBuilder) WithBackend(be Backend) *TextBuilder {
	b.backend = be
	return b
}

// Build finalizes the loader against an optional architecture pin. Unknown
// pins are rejected here, before any load is attempted.
func (b *TextBuilder) Build(loaderType *string) (*Loader, error) {
	if loaderType != nil {
		if _, ok := textLoaderTypes[*loaderType]; !ok {
			return nil, fmt.Errorf("unknown text loader type %q", *loaderType)
		}
	}
	be := b.backend
	if be == nil {
		be = DefaultBackend()
	}
	cfg := b.cfg
	return &Loader{
		spec: Spec{
			ModelID:       b.modelID,
			Text:          &cfg,
			ChatTemplate:  b.chatTemplate,
			TokenizerJSON: b.tokenizerJSON,
			JinjaExplicit: b.jinjaExplicit,
			NoKVCache:     b.noKVCache,
			AdapterIDs:    b.adapters,
			LoaderType:    loaderType,
		},
		backend: be,
	}, nil
}

// VisionBuilder assembles a vision-model loader. There is no KV-cache toggle:
// vision pipelines always run with the cache enabled.
type VisionBuilder struct {
	cfg           VisionConfig
	chatTemplate  *string
	tokenizerJSON *string
	modelID       string
	jinjaExplicit *string
	adapters      []string
	backend       Backend
}

// NewVisionBuilder starts a vision loader.
func NewVisionBuilder(cfg VisionConfig, chatTemplate, tokenizerJSON *string, modelID string, jinjaExplicit *string) *VisionBuilder {
	return &VisionBuilder{
		cfg:           cfg,
		chatTemplate:  chatTemplate,
		tokenizerJSON: tokenizerJSON,
		modelID:       modelID,
		jinjaExplicit: jinjaExplicit,
	}
}

// WithLoRA attaches the adapter id list unconditionally.
func (b *VisionBuilder) WithLoRA(ids []string) *VisionBuilder {
	b.adapters = append([]string(nil), ids...)
	return b
}

// WithBackend overrides the compile-time default backend.
func (b *VisionBuilder) WithBackend(be Backend) *VisionBuilder {
	b.backend = be
	return b
}

// Build finalizes the vision loader. Vision architecture pins are passed
// through to the backend untouched, so this cannot fail.
func (b *VisionBuilder) Build(loaderType *string) *Loader {
	be := b.backend
	if be == nil {
		be = DefaultBackend()
	}
	cfg := b.cfg
	return &Loader{
		spec: Spec{
			ModelID:       b.modelID,
			Vision:        &cfg,
			ChatTemplate:  b.chatTemplate,
			TokenizerJSON: b.tokenizerJSON,
			JinjaExplicit: b.jinjaExplicit,
			AdapterIDs:    b.adapters,
			LoaderType:    loaderType,
		},
		backend: be,
	}
}
