package assemble

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assembld/internal/device"
	"assembld/internal/loader"
	"assembld/internal/pipeline"
	"assembld/internal/runner"
	"assembld/internal/sched"
)

// fakeBackend records what the loader handed it and returns a pipeline whose
// metadata the test controls.
type fakeBackend struct {
	spec  loader.Spec
	req   loader.HubRequest
	cache *pipeline.CacheConfig
	rt    pipeline.Runtime
	err   error
}

func (b *fakeBackend) Load(_ context.Context, spec loader.Spec, req loader.HubRequest) (*pipeline.Handle, error) {
	b.spec = spec
	b.req = req
	if b.err != nil {
		return nil, b.err
	}
	return pipeline.NewHandle(pipeline.Metadata{ModelID: spec.ModelID, CacheConfig: b.cache}, b.rt), nil
}

// closeRecorder counts runtime releases.
type closeRecorder struct{ closed int }

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func cpu() *device.Device { return &device.Device{Kind: device.KindCPU} }

func intptr(n int) *int { return &n }

func TestTextDefaultSchedulerFixedSlots(t *testing.T) {
	// Scenario A: no paged-attention request, max_num_seqs=16.
	be := &fakeBackend{}
	m, err := FromTextDescriptor(TextDescriptor{
		ModelID:    "base",
		Device:     cpu(),
		MaxNumSeqs: 16,
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, sched.DefaultScheduler{FixedSlots: 16}, m.Runner().Policy())
	assert.Equal(t, ModalityText, m.Modality())
	assert.NotEmpty(t, m.ID())
}

func TestTextPagedAttentionHappyPath(t *testing.T) {
	cc := pipeline.CacheConfig{BlockSize: 32, NumGPUBlocks: 64}
	be := &fakeBackend{cache: &cc}
	m, err := FromTextDescriptor(TextDescriptor{
		ModelID:      "base",
		Device:       cpu(),
		MaxNumSeqs:   8,
		PagedAttnCfg: &pipeline.PagedAttnConfig{MemGPUUtilization: 0.9},
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	meta, ok := m.Runner().Policy().(sched.PagedAttentionMeta)
	require.True(t, ok, "expected PagedAttentionMeta, got %T", m.Runner().Policy())
	assert.Equal(t, 8, meta.MaxNumSeqs)
	assert.Equal(t, cc, meta.CacheConfig)
	require.NotNil(t, be.req.PagedAttn)
}

func TestTextPagedAttentionMissingCachePanics(t *testing.T) {
	be := &fakeBackend{cache: nil}
	b := FromTextDescriptor(TextDescriptor{
		ModelID:      "base",
		Device:       cpu(),
		MaxNumSeqs:   8,
		PagedAttnCfg: &pipeline.PagedAttnConfig{},
	}).WithBackend(be)
	assert.Panics(t, func() { _, _ = b.Build(context.Background()) })
}

func TestVisionPagedAttentionPresentCache(t *testing.T) {
	// Scenario B: vision, paged requested, cache config X reported.
	cc := pipeline.CacheConfig{BlockSize: 16, NumGPUBlocks: 32, NumCPUBlocks: 2}
	be := &fakeBackend{cache: &cc}
	m, err := FromVisionDescriptor(VisionDescriptor{
		ModelID:      "vbase",
		Device:       cpu(),
		MaxNumSeqs:   8,
		PagedAttnCfg: &pipeline.PagedAttnConfig{},
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	meta, ok := m.Runner().Policy().(sched.PagedAttentionMeta)
	require.True(t, ok)
	assert.Equal(t, sched.PagedAttentionMeta{MaxNumSeqs: 8, CacheConfig: cc}, meta)
}

func TestVisionPagedAttentionMissingCacheFallsBack(t *testing.T) {
	// Scenario C: vision never fails on a missing cache config.
	be := &fakeBackend{cache: nil}
	m, err := FromVisionDescriptor(VisionDescriptor{
		ModelID:      "vbase",
		Device:       cpu(),
		MaxNumSeqs:   8,
		PagedAttnCfg: &pipeline.PagedAttnConfig{},
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sched.DefaultScheduler{FixedSlots: 8}, m.Runner().Policy())
}

func TestTextToolCallbacksResolvable(t *testing.T) {
	// Scenario D: both callbacks resolvable from the finished runner.
	be := &fakeBackend{}
	noop := func(runner.ToolCall) (string, error) { return "", nil }
	m, err := FromTextDescriptor(TextDescriptor{
		ModelID:    "base",
		Device:     cpu(),
		MaxNumSeqs: 4,
		ToolCallbacks: map[string]runner.ToolCallback{
			"search": noop,
			"calc":   noop,
		},
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"search", "calc"} {
		_, ok := m.Runner().ToolCallback(name)
		assert.True(t, ok, "callback %q", name)
	}
}

func TestPrefixCacheToggle(t *testing.T) {
	// Scenario E: absent depth disables prefix caching; present depth enables.
	be := &fakeBackend{}
	off, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.False(t, off.Runner().PrefixCacheEnabled())

	on, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4, PrefixCacheN: intptr(4),
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, on.Runner().PrefixCacheEnabled())
	assert.Equal(t, 4, on.Runner().PrefixCacheN())
}

func TestTextKVCacheToggleCallerControlled(t *testing.T) {
	be := &fakeBackend{}
	m, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4, NoKVCache: true,
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.False(t, m.Runner().KVCacheEnabled())
	assert.True(t, be.spec.NoKVCache, "loader must see the KV toggle")
}

func TestVisionKVCacheAlwaysEnabled(t *testing.T) {
	be := &fakeBackend{}
	m, err := FromVisionDescriptor(VisionDescriptor{
		ModelID: "vbase", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, m.Runner().KVCacheEnabled())
	assert.False(t, be.spec.NoKVCache)
}

func TestVisionBoundToolCallbacks(t *testing.T) {
	be := &fakeBackend{}
	tool := runner.Tool{Name: "ocr", Description: "read an image"}
	m, err := FromVisionDescriptor(VisionDescriptor{
		ModelID: "vbase", Device: cpu(), MaxNumSeqs: 4,
		ToolCallbacksWithTools: map[string]runner.ToolCallbackWithTool{
			"ocr": {Callback: func(runner.ToolCall) (string, error) { return "", nil }, Tool: tool},
		},
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	got, ok := m.Runner().ToolCallbackWithTool("ocr")
	require.True(t, ok)
	assert.Equal(t, tool, got.Tool)
}

func TestBuilderSingleUse(t *testing.T) {
	be := &fakeBackend{}
	b := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(be)
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	_, err = b.Build(context.Background())
	require.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestLoadErrorPropagatesVerbatim(t *testing.T) {
	loadErr := errors.New("checkpoint incompatible")
	be := &fakeBackend{err: loadErr}
	_, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(be).Build(context.Background())
	require.ErrorIs(t, err, loadErr)
}

func TestConversionErrorSurfaced(t *testing.T) {
	be := &fakeBackend{}
	_, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 0,
	}).WithBackend(be).Build(context.Background())
	require.Error(t, err)
	assert.True(t, sched.IsConversion(err))
}

func TestAdapterIDsReachLoaderInOrder(t *testing.T) {
	be := &fakeBackend{}
	m, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}, "style-a", "style-b", "style-a").WithBackend(be).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"style-a", "style-b", "style-a"}, be.spec.AdapterIDs)
	assert.Equal(t, []string{"style-a", "style-b", "style-a"}, m.Adapters())
}

func TestDeviceMappingDefaultsPerModality(t *testing.T) {
	tb := &fakeBackend{}
	_, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(tb).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tb.req.DeviceMapping.Auto)
	assert.Equal(t, loader.DefaultTextMapParams(), *tb.req.DeviceMapping.Auto)

	vb := &fakeBackend{}
	_, err = FromVisionDescriptor(VisionDescriptor{
		ModelID: "vbase", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(vb).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, vb.req.DeviceMapping.Auto)
	assert.Equal(t, loader.DefaultVisionMapParams(), *vb.req.DeviceMapping.Auto)
}

func TestSilentLoadIsInverseOfWithLogging(t *testing.T) {
	be := &fakeBackend{}
	_, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4, WithLogging: true,
	}).WithBackend(be).Build(context.Background())
	require.NoError(t, err)
	assert.False(t, be.req.SilentLoad)

	be2 := &fakeBackend{}
	_, err = FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 4,
	}).WithBackend(be2).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, be2.req.SilentLoad)
}

func TestPipelineReleasedOnSchedulerError(t *testing.T) {
	rt := &closeRecorder{}
	be := &fakeBackend{rt: rt}
	_, err := FromTextDescriptor(TextDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: 0,
	}).WithBackend(be).Build(context.Background())
	require.Error(t, err)
	assert.True(t, sched.IsConversion(err))
	assert.Equal(t, 1, rt.closed, "loaded pipeline must be released when build fails after load")
}

func TestVisionPipelineReleasedOnSchedulerError(t *testing.T) {
	rt := &closeRecorder{}
	be := &fakeBackend{rt: rt}
	_, err := FromVisionDescriptor(VisionDescriptor{
		ModelID: "base", Device: cpu(), MaxNumSeqs: -1,
	}).WithBackend(be).Build(context.Background())
	require.Error(t, err)
	assert.True(t, sched.IsConversion(err))
	assert.Equal(t, 1, rt.closed)
}
