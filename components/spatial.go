package components

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity in units per second.
type Velocity struct {
	X, Y, Z float32
}

// Force holds the acceleration requested by the entity's controller this tick.
type Force struct {
	X, Y, Z float32
	Brake   float32 // 0..1, fraction of the configured brake applied
}
