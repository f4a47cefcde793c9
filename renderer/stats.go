package renderer

import (
	"time"

	"github.com/achilleasa/lumen/tracer"
)

type FrameStats struct {
	// Name of the backend used for rendering.
	Backend string

	// Stats for the last rendered frame.
	Last tracer.FrameStats

	// Number of frames rendered and the number of frames that were skipped
	// because of an error.
	Frames  uint32
	Skipped uint32

	// Total render time for all frames.
	RenderTime time.Duration
}

// Get the average time spent on each rendered frame.
func (s FrameStats) AvgFrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.RenderTime / time.Duration(s.Frames)
}
