package kinematics

import "github.com/pthm-cable/recon/geom"

// MotionProto declares the motion envelope of a remote.
type MotionProto struct {
	InitialVelocity geom.Vector
	MaxVelocity     geom.Limit
	MaxAcceleration geom.Limit
}

// IsMobile reports whether a remote built from the proto can ever move.
func (p MotionProto) IsMobile() bool {
	canMove := !p.MaxVelocity.IsBounded() || p.MaxVelocity.Value() > 0
	canStart := p.InitialVelocity.Magnitude() > 0 ||
		!p.MaxAcceleration.IsBounded() || p.MaxAcceleration.Value() > 0
	return canMove && canStart
}

// Motion is a velocity held within a velocity and acceleration envelope.
type Motion struct {
	velocity        geom.Vector
	maxVelocity     geom.Limit
	maxAcceleration geom.Limit
}

// NewMotion creates a Motion starting at the proto's initial velocity.
func NewMotion(p MotionProto) *Motion {
	return &Motion{
		velocity:        p.MaxVelocity.Clamp(p.InitialVelocity),
		maxVelocity:     p.MaxVelocity,
		maxAcceleration: p.MaxAcceleration,
	}
}

// Velocity returns the current velocity.
func (m *Motion) Velocity() geom.Vector { return m.velocity }

// Speed returns the magnitude of the velocity.
func (m *Motion) Speed() float64 { return m.velocity.Magnitude() }

// MaxVelocity returns the velocity cap.
func (m *Motion) MaxVelocity() geom.Limit { return m.maxVelocity }

// MaxAcceleration returns the acceleration cap.
func (m *Motion) MaxAcceleration() geom.Limit { return m.maxAcceleration }

// IsMoving reports whether the velocity is non-zero.
func (m *Motion) IsMoving() bool { return m.velocity.Magnitude() > 0 }

// IsMobile reports whether the envelope allows any movement.
func (m *Motion) IsMobile() bool {
	if m.IsMoving() {
		return true
	}
	return MotionProto{MaxVelocity: m.maxVelocity, MaxAcceleration: m.maxAcceleration}.IsMobile()
}

// UpdateVelocityBy applies force for stepSize, clamping the force to the max
// acceleration and the resulting velocity to the max velocity.
func (m *Motion) UpdateVelocityBy(force geom.Vector, stepSize float64) {
	force = m.maxAcceleration.Clamp(force)
	m.velocity = m.maxVelocity.Clamp(m.velocity.Add(force.Scale(stepSize)))
}

// Push applies an external force for stepSize. Only the velocity cap holds.
func (m *Motion) Push(force geom.Vector, stepSize float64) {
	m.velocity = m.maxVelocity.Clamp(m.velocity.Add(force.Scale(stepSize)))
}

// SetVelocity replaces the velocity, clamped to the max velocity.
func (m *Motion) SetVelocity(v geom.Vector) {
	m.velocity = m.maxVelocity.Clamp(v)
}

// ShiftVelocityTo returns the acceleration that moves the velocity toward
// target within one step of stepSize.
func (m *Motion) ShiftVelocityTo(target geom.Vector, stepSize float64) geom.Vector {
	target = m.maxVelocity.Clamp(target)
	delta := target.Sub(m.velocity).Scale(1 / stepSize)
	return m.maxAcceleration.Clamp(delta)
}
