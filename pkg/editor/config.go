package editor

import (
	"fmt"

	"github.com/taigrr/panoroom/pkg/gizmo"
)

// Config holds the viewport tunables.
type Config struct {
	Gizmo     gizmo.Config
	EdgeCount int // initial room edge count

	// Look-around
	LookSpeed   float64 // degrees per pixel of drag
	LookRadius  float64 // distance of the look-at target
	MaxLatitude float64 // degrees

	// Field of view, degrees
	InitialFOV float64
	MinFOV     float64
	MaxFOV     float64
	WheelScale float64 // degrees per wheel delta unit

	// Orbit camera
	OrbitDistance    float64
	OrbitMinDistance float64
	OrbitMaxDistance float64
	OrbitSpeed       float64 // radians of impulse per pixel of drag

	GuideRadius float64 // lat/long sphere drawn when no panorama is loaded
	FPS         int
}

// DefaultConfig returns the editor defaults.
func DefaultConfig() Config {
	g := gizmo.DefaultConfig()
	return Config{
		Gizmo:     g,
		EdgeCount: 4,

		LookSpeed:   0.1,
		LookRadius:  500,
		MaxLatitude: 85,

		InitialFOV: 70,
		MinFOV:     10,
		MaxFOV:     75,
		WheelScale: 0.05,

		OrbitDistance:    3 * g.Radius,
		OrbitMinDistance: 1.5 * g.Radius,
		OrbitMaxDistance: 6 * g.Radius,
		OrbitSpeed:       0.004,

		GuideRadius: 3000,
		FPS:         60,
	}
}

func (c Config) validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", gizmo.ErrInvalidParameter, c.FPS)
	case c.MinFOV <= 0 || c.MinFOV > c.MaxFOV || c.MaxFOV >= 180:
		return fmt.Errorf("%w: fov bounds [%g, %g]", gizmo.ErrInvalidParameter, c.MinFOV, c.MaxFOV)
	case c.LookSpeed <= 0 || c.LookRadius <= 0:
		return fmt.Errorf("%w: look speed %g radius %g", gizmo.ErrInvalidParameter, c.LookSpeed, c.LookRadius)
	case c.MaxLatitude <= 0 || c.MaxLatitude >= 90:
		return fmt.Errorf("%w: max latitude %g", gizmo.ErrInvalidParameter, c.MaxLatitude)
	case c.OrbitMinDistance <= 0 || c.OrbitMinDistance > c.OrbitMaxDistance:
		return fmt.Errorf("%w: orbit distance bounds [%g, %g]", gizmo.ErrInvalidParameter, c.OrbitMinDistance, c.OrbitMaxDistance)
	}
	return nil
}
