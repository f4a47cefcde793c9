package tracer

import "time"

// Statistics for the last rendered frame.
type FrameStats struct {
	// Accumulated samples after the frame was composited.
	Sample uint32

	FrameW, FrameH uint32
	NumSpheres     uint32

	// The reason for the accumulation reset performed by the frame.
	Reset ResetCause

	DispatchTime  time.Duration
	CompositeTime time.Duration
	RenderTime    time.Duration
}
