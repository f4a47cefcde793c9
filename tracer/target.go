package tracer

// TargetManager keeps a render target sized to the current viewport.
type TargetManager struct {
	name    string
	backend Backend
	target  Target
}

// Create a target manager for a named target.
func NewTargetManager(name string, backend Backend) *TargetManager {
	return &TargetManager{
		name:    name,
		backend: backend,
	}
}

// Ensure that the managed target matches the requested dimensions. If the
// target is missing or has different dimensions it is released and
// reallocated and the returned flag is set to true.
func (m *TargetManager) Ensure(width, height uint32) (Target, bool, error) {
	if width == 0 || height == 0 {
		return nil, false, ErrEmptyViewport
	}

	if m.target != nil && m.target.Width() == width && m.target.Height() == height {
		return m.target, false, nil
	}

	m.Release()
	target, err := m.backend.NewTarget(m.name, width, height)
	if err != nil {
		return nil, false, err
	}

	m.target = target
	return target, true, nil
}

// Get the managed target or nil if it has not been allocated yet.
func (m *TargetManager) Target() Target {
	return m.target
}

// Release the managed target.
func (m *TargetManager) Release() {
	if m.target != nil {
		m.target.Release()
		m.target = nil
	}
}
