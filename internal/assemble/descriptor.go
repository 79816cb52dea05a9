package assemble

import (
	"assembld/internal/device"
	"assembld/internal/loader"
	"assembld/internal/pipeline"
	"assembld/internal/runner"
)

// Modality tags a descriptor as text-only or vision-capable. The tag fixes
// which projection, loader shape and scheduler fallback rule apply; no code
// path mixes values derived from different modalities.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityVision Modality = "vision"
)

// TextDescriptor is the immutable configuration bundle for a text base model.
// Callers fill it once and hand it to FromTextDescriptor; it is never mutated
// afterwards.
type TextDescriptor struct {
	ModelID       string
	Revision      *string
	TokenSource   loader.TokenSource
	TokenizerJSON *string
	ChatTemplate  *string
	JinjaExplicit *string

	Dtype         loader.DType
	Device        *device.Device
	ForceCPU      bool
	DeviceMapping *loader.DeviceMapSetting
	ISQ           *loader.IsqType
	PagedAttnCfg  *pipeline.PagedAttnConfig

	Topology     *string
	Organization loader.Organization
	WriteUQFF    *string
	FromUQFF     *string
	HubCachePath *string
	LoaderType   *string

	WithLogging       bool
	NoKVCache         bool
	ThroughputLogging bool

	SearchEmbedModel *string
	SearchCallback   runner.SearchCallback
	ToolCallbacks    map[string]runner.ToolCallback

	PrefixCacheN *int
	MaxNumSeqs   int
}

// VisionDescriptor is the vision counterpart. Differences from text: no
// organization, no caller-facing KV-cache toggle (the cache is always on),
// image bounds, calibration/imatrix/matformer inputs sourced directly, and a
// second callback table binding callbacks to concrete tools.
type VisionDescriptor struct {
	ModelID       string
	Revision      *string
	TokenSource   loader.TokenSource
	TokenizerJSON *string
	ChatTemplate  *string
	JinjaExplicit *string

	Dtype         loader.DType
	Device        *device.Device
	ForceCPU      bool
	DeviceMapping *loader.DeviceMapSetting
	ISQ           *loader.IsqType
	PagedAttnCfg  *pipeline.PagedAttnConfig

	Topology            *string
	WriteUQFF           *string
	FromUQFF            *string
	HubCachePath        *string
	LoaderType          *string
	MaxEdge             *int
	CalibrationFile     *string
	Imatrix             *string
	MatformerConfigPath *string
	MatformerSliceName  *string

	WithLogging       bool
	ThroughputLogging bool

	SearchEmbedModel       *string
	SearchCallback         runner.SearchCallback
	ToolCallbacks          map[string]runner.ToolCallback
	ToolCallbacksWithTools map[string]runner.ToolCallbackWithTool

	PrefixCacheN *int
	MaxNumSeqs   int
}
