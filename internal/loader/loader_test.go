package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assembld/internal/pipeline"
)

type recordingBackend struct {
	spec Spec
	req  HubRequest
}

func (b *recordingBackend) Load(_ context.Context, spec Spec, req HubRequest) (*pipeline.Handle, error) {
	b.spec = spec
	b.req = req
	return pipeline.NewHandle(pipeline.Metadata{ModelID: spec.ModelID}, nil), nil
}

func strptr(s string) *string { return &s }

func TestTextBuildRejectsUnknownLoaderType(t *testing.T) {
	b := NewTextBuilder(TextConfig{}, nil, nil, "m", false, nil)
	_, err := b.Build(strptr("not-an-arch"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-arch")
}

func TestTextBuildKnownLoaderType(t *testing.T) {
	b := NewTextBuilder(TextConfig{}, nil, nil, "m", true, nil).WithBackend(&recordingBackend{})
	l, err := b.Build(strptr("mistral"))
	require.NoError(t, err)
	require.NotNil(t, l.Spec().Text)
	assert.True(t, l.Spec().NoKVCache)
	assert.Equal(t, "mistral", *l.Spec().LoaderType)
}

func TestEmptyAdapterListIsPassThrough(t *testing.T) {
	be := &recordingBackend{}
	withNone, err := NewTextBuilder(TextConfig{}, nil, nil, "m", false, nil).
		WithBackend(be).Build(nil)
	require.NoError(t, err)
	withEmpty, err := NewTextBuilder(TextConfig{}, nil, nil, "m", false, nil).
		WithLoRA(nil).WithBackend(be).Build(nil)
	require.NoError(t, err)

	assert.Equal(t, withNone.Spec().AdapterIDs, withEmpty.Spec().AdapterIDs)
	assert.Empty(t, withEmpty.Spec().AdapterIDs)
}

func TestLoadFromHubForwardsSpecAndRequest(t *testing.T) {
	be := &recordingBackend{}
	l := NewVisionBuilder(VisionConfig{MaxEdge: intptr(448)}, strptr("tmpl"), nil, "vm", nil).
		WithLoRA([]string{"a", "b", "a"}).
		WithBackend(be).
		Build(nil)

	req := HubRequest{Dtype: DTypeBF16, DeviceMapping: AutoDeviceMap(DefaultVisionMapParams())}
	h, err := l.LoadFromHub(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, h)

	require.NotNil(t, be.spec.Vision)
	assert.Equal(t, 448, *be.spec.Vision.MaxEdge)
	// Duplicate adapter ids are the backend's concern; pass them through.
	assert.Equal(t, []string{"a", "b", "a"}, be.spec.AdapterIDs)
	assert.Equal(t, DTypeBF16, be.req.Dtype)
	assert.Equal(t, 1024, be.req.DeviceMapping.Auto.MaxImageLen)
}

func TestDefaultBackendRefusesWithoutTag(t *testing.T) {
	if llamaBuilt {
		t.Skip("real backend compiled in")
	}
	_, err := DefaultBackend().Load(context.Background(), Spec{ModelID: "m"}, HubRequest{})
	require.Error(t, err)
	assert.True(t, IsBackendUnavailable(err))
}

func intptr(n int) *int { return &n }
