package editor

import (
	"github.com/taigrr/panoroom/pkg/gizmo"
	"github.com/taigrr/panoroom/pkg/render"
)

// CameraMode selects which camera renders the scene.
type CameraMode int

const (
	ModePanorama CameraMode = iota // inside the room, editing
	ModeObject                     // orbiting the room from outside
)

func (m CameraMode) String() string {
	if m == ModeObject {
		return "object"
	}
	return "panorama"
}

// CameraModeController owns the two cameras and decides which one is live
// and which interactions it permits.
type CameraModeController struct {
	mode      CameraMode
	panorama  *render.Camera
	orbit     *render.Camera
	tool      *gizmo.TransformTool
	wireframe bool
	dragging  bool
}

// NewCameraModeController starts in panorama mode with the room drawn as a
// wireframe.
func NewCameraModeController(panorama, orbit *render.Camera, tool *gizmo.TransformTool) *CameraModeController {
	return &CameraModeController{
		mode:      ModePanorama,
		panorama:  panorama,
		orbit:     orbit,
		tool:      tool,
		wireframe: true,
	}
}

// Mode returns the active mode.
func (c *CameraModeController) Mode() CameraMode { return c.mode }

// SetMode switches modes. Entering object mode detaches the transform tool
// and draws the room solid; returning to panorama restores the wireframe
// but never re-attaches anything. It reports whether the mode changed.
func (c *CameraModeController) SetMode(m CameraMode) bool {
	if m == c.mode {
		return false
	}
	c.mode = m
	switch m {
	case ModeObject:
		c.tool.Detach()
		c.wireframe = false
	default:
		c.wireframe = true
	}
	return true
}

// Active returns the camera that renders the current mode.
func (c *CameraModeController) Active() *render.Camera {
	if c.mode == ModeObject {
		return c.orbit
	}
	return c.panorama
}

// Panorama returns the look-around camera.
func (c *CameraModeController) Panorama() *render.Camera { return c.panorama }

// Orbit returns the inspection camera.
func (c *CameraModeController) Orbit() *render.Camera { return c.orbit }

// PickingEnabled reports whether handles may be picked and dragged.
func (c *CameraModeController) PickingEnabled() bool {
	return c.mode == ModePanorama
}

// Wireframe reports whether the room is drawn as lines.
func (c *CameraModeController) Wireframe() bool { return c.wireframe }

// SetDragging records the transform tool's dragging state. It is wired to
// TransformTool.OnDraggingChanged.
func (c *CameraModeController) SetDragging(dragging bool) {
	c.dragging = dragging
}

// LookAroundEnabled reports whether pointer drags may rotate the panorama
// camera.
func (c *CameraModeController) LookAroundEnabled() bool {
	return c.mode == ModePanorama && !c.dragging
}
