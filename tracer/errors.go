package tracer

import "errors"

// Missing resource errors. A frame that fails with one of these errors is
// skipped without touching the accumulation state.
var (
	ErrMissingCamera      = errors.New("tracer: no camera defined")
	ErrMissingLight       = errors.New("tracer: no directional light defined")
	ErrMissingKernel      = errors.New("tracer: trace kernel not available")
	ErrMissingSceneBuffer = errors.New("tracer: sphere buffer not allocated")
	ErrMissingSkybox      = errors.New("tracer: no skybox defined")
	ErrEmptyViewport      = errors.New("tracer: viewport has zero area")
)

var (
	ErrSessionClosed   = errors.New("tracer: session closed")
	ErrNoFrame         = errors.New("tracer: no frame has been rendered")
	ErrInvalidOption   = errors.New("tracer: invalid option")
	ErrTargetMismatch  = errors.New("tracer: render target dimensions do not match")
	ErrForeignResource = errors.New("tracer: resource was not allocated by this backend")
)

// Returns true if err indicates that a resource required for rendering a
// frame was absent.
func IsMissingResource(err error) bool {
	for _, target := range []error{
		ErrMissingCamera,
		ErrMissingLight,
		ErrMissingKernel,
		ErrMissingSceneBuffer,
		ErrMissingSkybox,
		ErrEmptyViewport,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
