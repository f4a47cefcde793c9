package tracer

import (
	"fmt"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
)

type mockResource struct {
	backend  *mockBackend
	released bool
}

func (r *mockResource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.backend.live--
}

type mockSphereBuffer struct {
	mockResource
	spheres []scene.Sphere
}

func (b *mockSphereBuffer) Len() int {
	return len(b.spheres)
}

type mockTarget struct {
	mockResource
	name          string
	width, height uint32
	data          []float32
}

func (t *mockTarget) Width() uint32  { return t.width }
func (t *mockTarget) Height() uint32 { return t.height }

type mockSkybox struct {
	mockResource
}

// mockBackend emulates a compute device on the host. Dispatch fills the
// output target with the value returned by frameValue.
type mockBackend struct {
	calls   []string
	live    int
	params  []FrameParams
	weights []float32
	groups  [][2]uint32

	dispatchCount int
	frameValue    func(frame int) float32

	uploadErr   error
	dispatchErr error
	closed      bool
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		frameValue: func(frame int) float32 { return float32(frame + 1) },
	}
}

func (b *mockBackend) Name() string {
	return "mock"
}

func (b *mockBackend) UploadSpheres(spheres []scene.Sphere) (SphereBuffer, error) {
	b.calls = append(b.calls, "upload-spheres")
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	b.live++
	return &mockSphereBuffer{mockResource: mockResource{backend: b}, spheres: spheres}, nil
}

func (b *mockBackend) UploadSkybox(tex *texture.Texture) (Skybox, error) {
	b.calls = append(b.calls, "upload-skybox")
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	b.live++
	return &mockSkybox{mockResource{backend: b}}, nil
}

func (b *mockBackend) NewTarget(name string, width, height uint32) (Target, error) {
	b.calls = append(b.calls, "new-target:"+name)
	b.live++
	return &mockTarget{
		mockResource: mockResource{backend: b},
		name:         name,
		width:        width,
		height:       height,
		data:         make([]float32, width*height*TargetChannels),
	}, nil
}

func (b *mockBackend) Bind(params *FrameParams) error {
	b.calls = append(b.calls, "bind")
	b.params = append(b.params, *params)
	return nil
}

func (b *mockBackend) Dispatch(out Target, groupsX, groupsY uint32) error {
	b.calls = append(b.calls, "dispatch")
	if b.dispatchErr != nil {
		return b.dispatchErr
	}

	b.groups = append(b.groups, [2]uint32{groupsX, groupsY})
	val := b.frameValue(b.dispatchCount)
	b.dispatchCount++

	target := out.(*mockTarget)
	for i := range target.data {
		target.data[i] = val
	}
	return nil
}

func (b *mockBackend) Blend(src, dst Target, weight float32) error {
	b.calls = append(b.calls, "blend")
	b.weights = append(b.weights, weight)

	srcT, dstT := src.(*mockTarget), dst.(*mockTarget)
	if weight >= 1 {
		copy(dstT.data, srcT.data)
		return nil
	}
	for i := range dstT.data {
		dstT.data[i] = dstT.data[i]*(1-weight) + srcT.data[i]*weight
	}
	return nil
}

func (b *mockBackend) ReadTarget(t Target, dst []float32) error {
	target := t.(*mockTarget)
	if len(dst) < len(target.data) {
		return fmt.Errorf("mock: destination buffer too small")
	}
	copy(dst, target.data)
	return nil
}

func (b *mockBackend) Close() {
	b.closed = true
}

// Get the recorded calls and clear the call log.
func (b *mockBackend) drainCalls() []string {
	calls := b.calls
	b.calls = nil
	return calls
}
