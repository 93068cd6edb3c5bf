package editor

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/panoroom/pkg/math3d"
	"github.com/taigrr/panoroom/pkg/render"
)

// maxElevation keeps the orbit camera off the poles, where LookAt loses yaw.
const maxElevation = 85 * math.Pi / 180

// orbitAxis tracks one orbit angle with a spring that decays its velocity.
type orbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newOrbitAxis(fps int, position float64) orbitAxis {
	return orbitAxis{
		Position: position,
		// Critically damped: the camera coasts to a stop without overshoot.
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (a *orbitAxis) update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// OrbitController circles the inspection camera around a target. Drags add
// angular velocity that decays after release.
type OrbitController struct {
	Target math3d.Vec3

	azimuth   orbitAxis
	elevation orbitAxis

	distance    float64
	minDistance float64
	maxDistance float64
	speed       float64

	active       bool
	lastX, lastY float64
}

// NewOrbitController places the camera outside the room, above and to the
// side of its center.
func NewOrbitController(cfg Config, target math3d.Vec3) *OrbitController {
	return &OrbitController{
		azimuth:     newOrbitAxis(cfg.FPS, math.Atan2(1, -2)),
		elevation:   newOrbitAxis(cfg.FPS, 0.22),
		Target:      target,
		distance:    math.Max(cfg.OrbitMinDistance, math.Min(cfg.OrbitMaxDistance, cfg.OrbitDistance)),
		minDistance: cfg.OrbitMinDistance,
		maxDistance: cfg.OrbitMaxDistance,
		speed:       cfg.OrbitSpeed,
	}
}

// Begin starts a drag at the pointer position.
func (o *OrbitController) Begin(x, y float64) {
	o.active = true
	o.lastX, o.lastY = x, y
}

// Move converts pointer motion into angular impulse.
func (o *OrbitController) Move(x, y float64) {
	if !o.active {
		return
	}
	o.azimuth.Velocity -= (x - o.lastX) * o.speed
	o.elevation.Velocity += (y - o.lastY) * o.speed
	o.lastX, o.lastY = x, y
}

// End releases the drag; the camera keeps coasting until the springs settle.
func (o *OrbitController) End() {
	o.active = false
}

// Active reports whether a drag is in progress.
func (o *OrbitController) Active() bool {
	return o.active
}

// Angles returns the current azimuth and elevation in radians.
func (o *OrbitController) Angles() (azimuth, elevation float64) {
	return o.azimuth.Position, o.elevation.Position
}

// Distance returns the current camera distance from the target.
func (o *OrbitController) Distance() float64 {
	return o.distance
}

// Zoom moves the camera toward (negative) or away from the target, within
// the configured bounds.
func (o *OrbitController) Zoom(delta float64) {
	o.distance = math.Max(o.minDistance, math.Min(o.maxDistance, o.distance+delta))
}

// Update advances the springs and places the camera.
func (o *OrbitController) Update(cam *render.Camera) {
	o.azimuth.update()
	o.elevation.update()
	if o.elevation.Position > maxElevation {
		o.elevation.Position, o.elevation.Velocity = maxElevation, 0
	} else if o.elevation.Position < -maxElevation {
		o.elevation.Position, o.elevation.Velocity = -maxElevation, 0
	}

	az, el := o.azimuth.Position, o.elevation.Position
	offset := math3d.V3(
		math.Cos(el)*math.Sin(az),
		math.Sin(el),
		math.Cos(el)*math.Cos(az),
	).Scale(o.distance)
	cam.SetPosition(o.Target.Add(offset))
	cam.LookAt(o.Target)
}
