package renderer

type Renderer interface {
	// Render until the renderer is done or closed.
	Render() error

	// Shutdown renderer and release its render session. The backend is
	// owned by the caller.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
