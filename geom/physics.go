package geom

// MaxReflections bounds the number of bounces computed for one step.
const MaxReflections = 8

// BoundaryCollision finds where the segment tail→tip crosses the boundary of
// box. If neither endpoint is in bounds there is no answer. A tip resting on
// the boundary is its own collision point. Otherwise the in-bounds endpoint is
// treated as the tail and the segment is walked to the first edge it leaves
// through.
func BoundaryCollision(tail, tip Vector, box Box) (Collision, bool) {
	tailIn, tipIn := box.Contains(tail), box.Contains(tip)
	if !tailIn && !tipIn {
		return Collision{}, false
	}
	if box.OnBoundary(tip) {
		return Collision{Point: tip, Box: box}, true
	}
	if tailIn && tipIn {
		return Collision{}, false
	}
	if !tailIn {
		tail, tip = tip, tail
	}
	return Collision{Point: box.exit(tail, tip), Box: box}, true
}

// Bounce returns where tip ends up after reflecting off the boundary of box.
func Bounce(tail, tip Vector, box Box) (Vector, bool) {
	c, ok := BoundaryCollision(tail, tip, box)
	if !ok {
		return Vector{}, false
	}
	return c.Reflect(tip), true
}

// BounceWithin reflects the move tail→tip off the walls of box until the
// endpoint lands inside, mirroring velocity with every reflection. It fails
// when no collision can be found or MaxReflections is exceeded.
func BounceWithin(tail, tip, velocity Vector, box Box) (Vector, Vector, bool) {
	for i := 0; i < MaxReflections; i++ {
		c, ok := BoundaryCollision(tail, tip, box)
		if !ok {
			return Vector{}, Vector{}, false
		}
		tip = c.Reflect(tip)
		velocity = c.ReflectVelocity(velocity)
		if box.Contains(tip) {
			return tip, velocity, true
		}
		tail = c.Point
	}
	return Vector{}, Vector{}, false
}
