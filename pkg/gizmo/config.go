package gizmo

import (
	"fmt"
	"math"
)

// Edge count bounds for a room footprint.
const (
	MinEdges = 3
	MaxEdges = 10
)

// Config describes the prism a room gizmo is built from.
type Config struct {
	Radius        float64 // Ring radius in world units
	CeilingHeight float64 // Initial Y of the ceiling ring
	FloorHeight   float64 // Y of the floor ring, fixed for the gizmo's lifetime
	HandleSize    float64 // Pick radius of each handle marker
}

// DefaultConfig returns the prism the editor starts with: the camera sits
// at the origin, inside the room, slightly nearer the ceiling than the
// floor.
func DefaultConfig() Config {
	return Config{
		Radius:        200,
		CeilingHeight: 100,
		FloorHeight:   -150,
		HandleSize:    8,
	}
}

// Validate reports whether the config can build a gizmo.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"radius":         c.Radius,
		"ceiling height": c.CeilingHeight,
		"floor height":   c.FloorHeight,
		"handle size":    c.HandleSize,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, name)
		}
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius %g must be positive", ErrInvalidParameter, c.Radius)
	}
	if c.HandleSize <= 0 {
		return fmt.Errorf("%w: handle size %g must be positive", ErrInvalidParameter, c.HandleSize)
	}
	if c.CeilingHeight <= c.FloorHeight {
		return fmt.Errorf("%w: ceiling %g must be above floor %g", ErrInvalidParameter, c.CeilingHeight, c.FloorHeight)
	}
	return nil
}
