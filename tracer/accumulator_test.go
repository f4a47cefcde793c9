package tracer

import (
	"fmt"
	"testing"

	"github.com/achilleasa/lumen/types"
)

func TestAccumulator(t *testing.T) {
	var acc Accumulator
	if acc.Value() != 0 {
		t.Fatalf("expected initial sample to be 0; got %d", acc.Value())
	}

	for i := 0; i < 5; i++ {
		acc.Advance()
	}
	if acc.Value() != 5 {
		t.Fatalf("expected sample to be 5; got %d", acc.Value())
	}

	acc.Reset()
	if acc.Value() != 0 {
		t.Fatalf("expected sample to be 0 after reset; got %d", acc.Value())
	}
}

func TestBlendWeight(t *testing.T) {
	type spec struct {
		sample    uint32
		expWeight float32
	}
	specs := []spec{
		{0, 1},
		{1, 0.5},
		{3, 0.25},
		{99, 0.01},
	}

	for index, s := range specs {
		if w := BlendWeight(s.sample); w != s.expWeight {
			t.Fatalf("[spec %d] expected weight %f; got %f", index, s.expWeight, w)
		}
	}

	// The weight must stay finite when the counter saturates
	if w := BlendWeight(^uint32(0)); w <= 0 || w >= 1e-9 {
		t.Fatalf("expected tiny positive weight for max sample; got %g", w)
	}
}

func TestPoseTracker(t *testing.T) {
	base := pose{
		cameraToWorld:    types.Ident4(),
		cameraProjection: types.Perspective4(60, 1, 0.3, 1000).Inv(),
		lightTransform:   types.Ident4(),
		lightIntensity:   1,
		frameW:           64,
		frameH:           32,
	}

	moved := base
	moved.cameraToWorld[12] += 1e-6

	rotatedLight := base
	rotatedLight.lightTransform[0] = 0.99

	dimmed := base
	dimmed.lightIntensity = 0.9

	resized := base
	resized.frameH = 33

	type spec struct {
		next     pose
		expCause ResetCause
	}
	specs := []spec{
		{base, NoReset},
		{moved, ResetCameraMoved},
		{rotatedLight, ResetLightMoved},
		{dimmed, ResetLightMoved},
		{resized, ResetViewportResized},
	}

	for index, s := range specs {
		var pt poseTracker
		if cause := pt.Observe(base); cause != ResetInitial {
			t.Fatalf("[spec %d] expected first observation to report %q; got %q", index, ResetInitial, cause)
		}
		if cause := pt.Observe(s.next); cause != s.expCause {
			t.Fatalf("[spec %d] expected cause %q; got %q", index, s.expCause, cause)
		}
		if cause := pt.Observe(s.next); cause != NoReset {
			t.Fatalf("[spec %d] expected repeated pose not to trigger a reset; got %q", index, cause)
		}
	}
}

func TestIsMissingResource(t *testing.T) {
	type spec struct {
		err error
		exp bool
	}
	specs := []spec{
		{ErrMissingCamera, true},
		{fmt.Errorf("frame 3: %w", ErrMissingSkybox), true},
		{ErrEmptyViewport, true},
		{ErrSessionClosed, false},
		{nil, false},
	}

	for index, s := range specs {
		if got := IsMissingResource(s.err); got != s.exp {
			t.Fatalf("[spec %d] expected IsMissingResource(%v) to be %t; got %t", index, s.err, s.exp, got)
		}
	}
}
