package editor

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/taigrr/panoroom/pkg/math3d"
	"github.com/taigrr/panoroom/pkg/render"
)

// LookAroundController turns pointer drags into longitude and latitude for
// the panorama camera. Angles are in degrees.
type LookAroundController struct {
	Lon, Lat float64

	speed  float64
	radius float64
	maxLat float64

	active           bool
	downX, downY     float64
	downLon, downLat float64
}

// NewLookAroundController looks along +X at the horizon.
func NewLookAroundController(speed, radius, maxLat float64) *LookAroundController {
	return &LookAroundController{speed: speed, radius: radius, maxLat: maxLat}
}

// Begin anchors a drag at the pointer position.
func (l *LookAroundController) Begin(x, y float64) {
	l.active = true
	l.downX, l.downY = x, y
	l.downLon, l.downLat = l.Lon, l.Lat
}

// Move updates the angles from the drag anchor. Dragging right turns left,
// dragging down looks up.
func (l *LookAroundController) Move(x, y float64) {
	if !l.active {
		return
	}
	l.Lon = (l.downX-x)*l.speed + l.downLon
	l.Lat = mgl64.Clamp((y-l.downY)*l.speed+l.downLat, -l.maxLat, l.maxLat)
}

// End finishes the drag.
func (l *LookAroundController) End() {
	l.active = false
}

// Active reports whether a drag is in progress.
func (l *LookAroundController) Active() bool {
	return l.active
}

// Target returns the look-at point relative to the camera.
func (l *LookAroundController) Target() math3d.Vec3 {
	l.Lat = mgl64.Clamp(l.Lat, -l.maxLat, l.maxLat)
	phi := mgl64.DegToRad(90 - l.Lat)
	theta := mgl64.DegToRad(l.Lon)
	// mgl64 measures the polar angle from +Z; the room's up axis is +Y.
	v := mgl64.SphericalToCartesian(l.radius, phi, theta)
	return math3d.V3(v[0], v[2], v[1])
}

// Update points the camera at the current target.
func (l *LookAroundController) Update(cam *render.Camera) {
	cam.LookAt(cam.Position.Add(l.Target()))
}
