package physics

// MotionState caches the world transform of a body. The world writes it after
// every Step for non-static bodies; renderers read it.
type MotionState interface {
	WorldTransform() Transform
	SetWorldTransform(tr Transform)
}

// DefaultMotionState stores the last transform written by the world.
type DefaultMotionState struct {
	Start     Transform
	transform Transform
	writes    int
}

// NewDefaultMotionState returns a motion state seeded with tr.
func NewDefaultMotionState(tr Transform) *DefaultMotionState {
	return &DefaultMotionState{Start: tr, transform: tr}
}

func (m *DefaultMotionState) WorldTransform() Transform { return m.transform }

func (m *DefaultMotionState) SetWorldTransform(tr Transform) {
	m.transform = tr
	m.writes++
}

// Writes reports how many times the world has updated the state.
func (m *DefaultMotionState) Writes() int { return m.writes }
