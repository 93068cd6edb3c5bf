// Package editor wires the room gizmo, the two cameras and pointer input
// into a single-threaded viewport driven by Tick.
package editor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"fortio.org/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/taigrr/panoroom/pkg/gizmo"
	"github.com/taigrr/panoroom/pkg/layout"
	"github.com/taigrr/panoroom/pkg/math3d"
	"github.com/taigrr/panoroom/pkg/models"
	"github.com/taigrr/panoroom/pkg/render"
)

// ErrInvalidTarget is returned when the viewport is created without a
// usable framebuffer.
var ErrInvalidTarget = errors.New("editor: invalid render target")

// InteractionMode governs where pointer events are routed. Exactly one mode
// is active at a time.
type InteractionMode int

const (
	Idle InteractionMode = iota
	LookAround
	DraggingVertex
	Orbiting
)

func (m InteractionMode) String() string {
	switch m {
	case LookAround:
		return "look-around"
	case DraggingVertex:
		return "dragging-vertex"
	case Orbiting:
		return "orbiting"
	default:
		return "idle"
	}
}

// InteractionState is the per-viewport pointer state.
type InteractionState struct {
	Mode InteractionMode

	// Drag plane and the offset between the handle and the point first
	// grabbed on it.
	planePoint  math3d.Vec3
	planeNormal math3d.Vec3
	grabOffset  math3d.Vec3

	// Handle under the pointer while idle.
	hover *gizmo.Handle
}

var lightDir = math3d.V3(0.5, 1, 0.3).Normalize()

// Viewport owns the room, both cameras and their controllers. All methods
// must be called from one goroutine.
type Viewport struct {
	cfg Config
	fb  *render.Framebuffer

	room   *gizmo.Room
	tool   *gizmo.TransformTool
	picker gizmo.PickController

	modes  *CameraModeController
	look   *LookAroundController
	orbit  *OrbitController
	raster *render.Rasterizer

	panorama *render.Panorama
	rotation float64 // degrees
	layoutID uuid.UUID

	state InteractionState
}

// NewViewport builds the initial room and cameras for fb. A nil or empty
// framebuffer is ErrInvalidTarget and nothing is created.
func NewViewport(fb *render.Framebuffer, cfg Config) (*Viewport, error) {
	if fb == nil || fb.Empty() {
		return nil, ErrInvalidTarget
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	room, err := gizmo.NewRoom(cfg.EdgeCount, cfg.Gizmo)
	if err != nil {
		return nil, err
	}

	panoCam := newCamera(cfg, fb)
	orbitCam := newCamera(cfg, fb)

	v := &Viewport{
		cfg:      cfg,
		fb:       fb,
		room:     room,
		tool:     gizmo.NewTransformTool(room.Handles, room.Mesh),
		picker:   gizmo.PickController{Radius: cfg.Gizmo.HandleSize},
		look:     NewLookAroundController(cfg.LookSpeed, cfg.LookRadius, cfg.MaxLatitude),
		raster:   render.NewRasterizer(orbitCam, fb),
		layoutID: uuid.New(),
	}
	center := math3d.V3(0, (cfg.Gizmo.CeilingHeight+cfg.Gizmo.FloorHeight)/2, 0)
	v.orbit = NewOrbitController(cfg, center)
	v.modes = NewCameraModeController(panoCam, orbitCam, v.tool)
	v.tool.OnDraggingChanged = v.modes.SetDragging

	v.look.Update(panoCam)
	v.orbit.Update(orbitCam)
	log.Debugf("viewport %dx%d, room with %d edges", fb.Width, fb.Height, cfg.EdgeCount)
	return v, nil
}

func newCamera(cfg Config, fb *render.Framebuffer) *render.Camera {
	cam := render.NewCamera()
	cam.SetFOV(mgl64.DegToRad(mgl64.Clamp(cfg.InitialFOV, cfg.MinFOV, cfg.MaxFOV)))
	cam.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	cam.SetClipPlanes(0.1, 2*cfg.GuideRadius)
	return cam
}

// Room returns the current room. It is replaced by SetEdgeCount and
// ApplyLayout.
func (v *Viewport) Room() *gizmo.Room { return v.room }

// Tool returns the transform tool.
func (v *Viewport) Tool() *gizmo.TransformTool { return v.tool }

// CameraModes returns the camera mode controller.
func (v *Viewport) CameraModes() *CameraModeController { return v.modes }

// LookAround returns the panorama camera controller.
func (v *Viewport) LookAround() *LookAroundController { return v.look }

// Orbit returns the inspection camera controller.
func (v *Viewport) Orbit() *OrbitController { return v.orbit }

// Interaction returns the current interaction mode.
func (v *Viewport) Interaction() InteractionMode { return v.state.Mode }

// Framebuffer returns the render target.
func (v *Viewport) Framebuffer() *render.Framebuffer { return v.fb }

// Rotation returns the panorama rotation in degrees.
func (v *Viewport) Rotation() float64 { return v.rotation }

// Resize changes the render target size. Zero sizes are accepted; Tick
// draws nothing until the target is non-empty again.
func (v *Viewport) Resize(width, height int) {
	v.fb.Resize(width, height)
	v.raster.Resize()
	if v.fb.Empty() {
		return
	}
	aspect := float64(width) / float64(height)
	v.modes.Panorama().SetAspectRatio(aspect)
	v.modes.Orbit().SetAspectRatio(aspect)
}

// ndc maps a framebuffer pixel position to normalized device coordinates.
func (v *Viewport) ndc(x, y float64) math3d.Vec2 {
	return math3d.V2(x/float64(v.fb.Width)*2-1, 1-y/float64(v.fb.Height)*2)
}

// PointerDown starts an interaction at pixel (x, y). Non-primary pointers
// are ignored. In panorama mode a hit on a handle starts a vertex drag and
// a miss starts look-around; in object mode the drag orbits.
func (v *Viewport) PointerDown(x, y float64, primary bool) {
	if !primary || v.fb.Empty() {
		return
	}
	// A missed release must not leave a stale interaction behind.
	v.release()

	if !v.modes.PickingEnabled() {
		v.orbit.Begin(x, y)
		v.state.Mode = Orbiting
		return
	}

	cam := v.modes.Active()
	ndc := v.ndc(x, y)
	h, ok := v.picker.Pick(ndc, cam, v.room.Handles.All())
	if !ok {
		if v.modes.LookAroundEnabled() {
			v.look.Begin(x, y)
			v.state.Mode = LookAround
		}
		return
	}

	v.tool.Attach(h)
	point, normal, err := v.tool.DragPlane(cam.Forward())
	if err != nil {
		v.tool.Detach()
		return
	}
	v.state.planePoint, v.state.planeNormal = point, normal
	v.state.grabOffset = math3d.Vec3{}
	if hit, ok := cam.ScreenRay(ndc).IntersectPlane(point, normal); ok {
		v.state.grabOffset = h.Position().Sub(hit)
	}
	v.state.Mode = DraggingVertex
	v.state.hover = nil
	log.LogVf("drag %v", h.ID())
}

// PointerMove routes motion to the active interaction. The only error it
// returns is a *gizmo.SyncError, which the caller must treat as fatal.
func (v *Viewport) PointerMove(x, y float64) error {
	if v.fb.Empty() {
		return nil
	}
	switch v.state.Mode {
	case DraggingVertex:
		return v.drag(x, y)
	case LookAround:
		v.look.Move(x, y)
	case Orbiting:
		v.orbit.Move(x, y)
	default:
		v.state.hover = nil
		if v.modes.PickingEnabled() {
			if h, ok := v.picker.Pick(v.ndc(x, y), v.modes.Active(), v.room.Handles.All()); ok {
				v.state.hover = h
			}
		}
	}
	return nil
}

func (v *Viewport) drag(x, y float64) error {
	ray := v.modes.Active().ScreenRay(v.ndc(x, y))
	hit, ok := ray.IntersectPlane(v.state.planePoint, v.state.planeNormal)
	if !ok {
		return nil
	}
	err := v.tool.OnDrag(hit.Add(v.state.grabOffset))
	if errors.Is(err, gizmo.ErrGeometrySync) {
		v.release()
		return err
	}
	if err != nil {
		log.Debugf("drag ignored: %v", err)
	}
	return nil
}

// PointerUp ends the active interaction.
func (v *Viewport) PointerUp(x, y float64) {
	v.release()
}

// PointerCancel ends the active interaction without a final position.
func (v *Viewport) PointerCancel() {
	v.release()
}

// PointerLeave ends the active interaction when the pointer leaves the
// viewport.
func (v *Viewport) PointerLeave() {
	v.release()
	v.state.hover = nil
}

// release returns to Idle from any interaction, detaching the tool.
func (v *Viewport) release() {
	switch v.state.Mode {
	case DraggingVertex:
		v.tool.Detach()
	case LookAround:
		v.look.End()
	case Orbiting:
		v.orbit.End()
	}
	v.state.Mode = Idle
}

// Wheel zooms the active camera by changing its field of view.
func (v *Viewport) Wheel(delta float64) {
	cam := v.modes.Active()
	fov := mgl64.RadToDeg(cam.FOV) + delta*v.cfg.WheelScale
	cam.SetFOV(mgl64.DegToRad(mgl64.Clamp(fov, v.cfg.MinFOV, v.cfg.MaxFOV)))
}

// SetEdgeCount rebuilds the room with n edges. Any drag in progress is
// released. An invalid n leaves the current room untouched.
func (v *Viewport) SetEdgeCount(n int) error {
	room, err := gizmo.NewRoom(n, v.cfg.Gizmo)
	if err != nil {
		return err
	}
	v.replaceRoom(room)
	log.Debugf("room rebuilt with %d edges", n)
	return nil
}

func (v *Viewport) replaceRoom(room *gizmo.Room) {
	v.release()
	v.state.hover = nil
	v.room = room
	v.tool.SetRoom(room.Handles, room.Mesh)
}

// SetPanoramaRotation rotates the panorama sphere, in degrees [0, 360].
func (v *Viewport) SetPanoramaRotation(deg float64) error {
	if math.IsNaN(deg) || deg < 0 || deg > 360 {
		return fmt.Errorf("%w: rotation %g outside [0, 360]", gizmo.ErrInvalidParameter, deg)
	}
	v.rotation = deg
	if v.panorama != nil {
		v.panorama.SetYaw(mgl64.DegToRad(deg))
	}
	return nil
}

// SetPanorama replaces the background image.
func (v *Viewport) SetPanorama(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: empty panorama image", gizmo.ErrInvalidParameter)
	}
	v.panorama = render.NewPanorama(img)
	v.panorama.SetYaw(mgl64.DegToRad(v.rotation))
	return nil
}

// HasPanorama reports whether a background image is loaded.
func (v *Viewport) HasPanorama() bool {
	return v.panorama != nil
}

// SetCameraMode switches cameras, ending any interaction in progress.
func (v *Viewport) SetCameraMode(m CameraMode) {
	if m == v.modes.Mode() {
		return
	}
	v.release()
	v.state.hover = nil
	v.modes.SetMode(m)
	log.LogVf("camera mode %v", m)
}

// Tick runs one frame: camera orientation first, then rendering. Input is
// applied by the event methods before Tick is called.
func (v *Viewport) Tick() {
	if v.fb.Empty() {
		return
	}
	cam := v.modes.Active()
	if v.modes.Mode() == ModeObject {
		v.orbit.Update(cam)
	} else {
		v.look.Update(cam)
	}
	v.render(cam)
}

func (v *Viewport) render(cam *render.Camera) {
	wire := render.NewWireframe(cam, v.fb)

	switch {
	case v.modes.Mode() == ModeObject:
		v.fb.Clear(render.ColorBackground)
		v.raster.ClearDepth()
	case v.panorama != nil:
		render.DrawPanorama(v.fb, cam, v.panorama)
	default:
		v.fb.Clear(render.ColorBackground)
		wire.DrawGuideSphere(v.cfg.GuideRadius, 32, 32, render.ColorGuide)
	}

	target, _ := v.tool.Target()
	for obj := range v.room.Objects() {
		switch obj.Kind() {
		case gizmo.KindRoomGizmo:
			mesh := obj.(*gizmo.RoomMesh)
			if v.modes.Wireframe() {
				wire.DrawEdges(mesh.Points(), mesh.Edges(), render.ColorWall)
			} else {
				v.raster.DrawMesh(mesh.Drawable, render.ColorSolid, lightDir)
			}
		case gizmo.KindVertexHandle:
			if !v.modes.PickingEnabled() {
				continue
			}
			h := obj.(*gizmo.Handle)
			color := render.ColorFloor
			if h.Ring() == gizmo.Ceiling {
				color = render.ColorCeiling
			}
			selected := h == target || h == v.state.hover
			if h == target {
				color = render.ColorSelected
			}
			wire.DrawMarker(h.Position(), v.markerSize(cam, h.Position()), color, selected)
		}
	}
}

// markerSize returns the on-screen size of a handle's pick sphere, so what
// is drawn matches what can be picked.
func (v *Viewport) markerSize(cam *render.Camera, pos math3d.Vec3) int {
	dist := pos.Distance(cam.Position)
	if dist < 1e-6 {
		return 1
	}
	px := v.cfg.Gizmo.HandleSize / (dist * math.Tan(cam.FOV/2)) * float64(v.fb.Height)
	return int(mgl64.Clamp(px, 2, 9))
}

// Layout returns the current room as a layout record.
func (v *Viewport) Layout() *layout.Layout {
	l := layout.New(v.room.EdgeCount(), v.room.Handles.Footprint(), v.room.Handles.CeilingHeight())
	l.ID = v.layoutID
	l.Rotation = v.rotation
	return l
}

// ApplyLayout rebuilds the room from a saved record. The footprint and the
// ceiling height go through the transform tool, so the restored room obeys
// the same rules as an edited one. On error the current room is kept.
func (v *Viewport) ApplyLayout(l *layout.Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	room, err := gizmo.NewRoom(l.EdgeCount, v.cfg.Gizmo)
	if err != nil {
		return err
	}
	if err := restore(room, l.Footprint(), l.CeilingHeight); err != nil {
		return err
	}
	if err := v.SetPanoramaRotation(l.Rotation); err != nil {
		return err
	}
	v.replaceRoom(room)
	v.layoutID = l.ID
	log.Debugf("layout %v applied: %d edges, ceiling %g", l.ID, l.EdgeCount, l.CeilingHeight)
	return nil
}

func restore(room *gizmo.Room, floor []math3d.Vec2, ceiling float64) error {
	tool := gizmo.NewTransformTool(room.Handles, room.Mesh)
	defer tool.Detach()

	for i, p := range floor {
		h, err := room.Handles.Get(gizmo.HandleID{Ring: gizmo.Floor, Index: i})
		if err != nil {
			return err
		}
		tool.Attach(h)
		if err := tool.OnDrag(math3d.V3(p.X, 0, p.Y)); err != nil {
			return err
		}
	}

	h, err := room.Handles.Get(gizmo.HandleID{Ring: gizmo.Ceiling, Index: 0})
	if err != nil {
		return err
	}
	tool.Attach(h)
	return tool.OnDrag(math3d.V3(0, ceiling, 0))
}

// ExportGLB writes the room mesh and one named node per handle.
func (v *Viewport) ExportGLB(path string) error {
	markers := make([]models.Marker, 0, v.room.Handles.Len())
	for h := range v.room.Handles.All() {
		markers = append(markers, models.Marker{Name: h.ID().String(), Position: h.Position()})
	}
	return models.SaveGLB(path, v.room.Mesh.Drawable, markers)
}

// ImportGLB restores a room from the handle nodes of a GLB written by
// ExportGLB. Node names must be handle identities.
func (v *Viewport) ImportGLB(path string) error {
	scene, err := models.LoadGLB(path)
	if err != nil {
		return err
	}

	floor := map[int]math3d.Vec3{}
	ceiling := map[int]math3d.Vec3{}
	for _, m := range scene.Markers {
		id, err := gizmo.ParseHandleID(m.Name)
		if err != nil {
			return fmt.Errorf("node %q: %w", m.Name, err)
		}
		if id.Ring == gizmo.Floor {
			floor[id.Index] = m.Position
		} else {
			ceiling[id.Index] = m.Position
		}
	}

	n := len(floor) - 1
	if len(ceiling) != len(floor) {
		return fmt.Errorf("%w: %d ceiling and %d floor handles", gizmo.ErrInvalidParameter, len(ceiling), len(floor))
	}
	l := &layout.Layout{
		ID:        uuid.New(),
		EdgeCount: n,
		Floor:     make([]layout.Point, 0, len(floor)),
		Rotation:  v.rotation,
	}
	for i := range len(floor) {
		p, ok := floor[i]
		if !ok {
			return fmt.Errorf("%w: floor handle %d missing", gizmo.ErrIndexOutOfRange, i)
		}
		l.Floor = append(l.Floor, layout.Point{X: p.X, Z: p.Z})
	}
	c, ok := ceiling[0]
	if !ok {
		return fmt.Errorf("%w: ceiling handle 0 missing", gizmo.ErrIndexOutOfRange)
	}
	l.CeilingHeight = c.Y
	return v.ApplyLayout(l)
}

// Snapshot saves the last rendered frame as a PNG.
func (v *Viewport) Snapshot(path string) error {
	return v.fb.SavePNG(path)
}
