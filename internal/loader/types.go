package loader

// DType selects the numeric precision used for model weights and activations.
type DType string

const (
	DTypeAuto DType = "auto"
	DTypeF16  DType = "f16"
	DTypeBF16 DType = "bf16"
	DTypeF32  DType = "f32"
)

// TokenSourceKind enumerates where hub credentials come from.
type TokenSourceKind string

const (
	TokenSourceCache   TokenSourceKind = "cache"
	TokenSourceEnvVar  TokenSourceKind = "env"
	TokenSourcePath    TokenSourceKind = "path"
	TokenSourceLiteral TokenSourceKind = "literal"
	TokenSourceNone    TokenSourceKind = "none"
)

// TokenSource describes the hub credential lookup strategy. The zero value
// means the shared token cache.
type TokenSource struct {
	Kind TokenSourceKind
	// Value holds the env var name, file path, or literal token depending on
	// Kind; unused for cache and none.
	Value string
}

// IsqType names an in-situ quantization scheme applied after load.
type IsqType string

const (
	IsqQ4_0 IsqType = "Q4_0"
	IsqQ4K  IsqType = "Q4K"
	IsqQ5K  IsqType = "Q5K"
	IsqQ6K  IsqType = "Q6K"
	IsqQ8_0 IsqType = "Q8_0"
)

// Organization selects the weight layout for text models (dense vs MoQE).
type Organization string

const (
	OrganizationDefault Organization = "default"
	OrganizationMoQE    Organization = "moqe"
)

// AutoDeviceMapParams seeds automatic device mapping. Image bounds are only
// meaningful for vision models.
type AutoDeviceMapParams struct {
	MaxSeqLen    int
	MaxBatchSize int
	MaxImageLen  int
	MaxNumImages int
}

// DefaultTextMapParams returns the automatic mapping defaults for text models.
func DefaultTextMapParams() AutoDeviceMapParams {
	return AutoDeviceMapParams{MaxSeqLen: 4096, MaxBatchSize: 1}
}

// DefaultVisionMapParams returns the automatic mapping defaults for vision
// models.
func DefaultVisionMapParams() AutoDeviceMapParams {
	return AutoDeviceMapParams{MaxSeqLen: 4096, MaxBatchSize: 1, MaxImageLen: 1024, MaxNumImages: 1}
}

// DeviceLayers pins a number of transformer layers onto one device ordinal.
type DeviceLayers struct {
	Ordinal int
	Layers  int
}

// DeviceMapSetting selects between an explicit per-device layer assignment
// and automatic mapping seeded by AutoDeviceMapParams. Exactly one of the
// fields is meaningful; Explicit wins when both are set.
type DeviceMapSetting struct {
	Auto     *AutoDeviceMapParams
	Explicit []DeviceLayers
}

// AutoDeviceMap builds an automatic mapping setting.
func AutoDeviceMap(p AutoDeviceMapParams) DeviceMapSetting {
	return DeviceMapSetting{Auto: &p}
}
