package gizmo

import (
	"github.com/taigrr/panoroom/pkg/math3d"
)

// AxisMask selects which world axes a drag may change.
type AxisMask uint8

const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisZ

	AxisNone       AxisMask = 0
	AxisVertical            = AxisY
	AxisHorizontal          = AxisX | AxisZ
)

// Has reports whether every axis in o is allowed.
func (m AxisMask) Has(o AxisMask) bool {
	return m&o == o
}

// Clamp keeps the allowed axes of next and the locked axes of current.
func (m AxisMask) Clamp(current, next math3d.Vec3) math3d.Vec3 {
	out := current
	if m.Has(AxisX) {
		out.X = next.X
	}
	if m.Has(AxisY) {
		out.Y = next.Y
	}
	if m.Has(AxisZ) {
		out.Z = next.Z
	}
	return out
}

// AllowedAxes returns the drag mask for a ring: ceilings move vertically,
// floors horizontally.
func AllowedAxes(r Ring) AxisMask {
	if r == Ceiling {
		return AxisVertical
	}
	return AxisHorizontal
}

// TransformTool drags one attached handle at a time along the axes its ring
// allows, synchronizing the room after every move.
type TransformTool struct {
	handles *HandleSet
	mesh    *RoomMesh
	target  *Handle
	mask    AxisMask

	// OnDraggingChanged is called with true on attach and false on detach.
	OnDraggingChanged func(dragging bool)
}

// NewTransformTool returns a detached tool operating on the given room.
func NewTransformTool(handles *HandleSet, mesh *RoomMesh) *TransformTool {
	return &TransformTool{handles: handles, mesh: mesh}
}

// SetRoom points the tool at a rebuilt room, detaching first.
func (t *TransformTool) SetRoom(handles *HandleSet, mesh *RoomMesh) {
	t.Detach()
	t.handles = handles
	t.mesh = mesh
}

// Attach selects h. Attaching while another handle is attached switches the
// target without a detach signal.
func (t *TransformTool) Attach(h *Handle) {
	wasAttached := t.target != nil
	t.target = h
	t.mask = AllowedAxes(h.Ring())
	if !wasAttached && t.OnDraggingChanged != nil {
		t.OnDraggingChanged(true)
	}
}

// Detach clears the selection. It is a no-op when already detached.
func (t *TransformTool) Detach() {
	if t.target == nil {
		return
	}
	t.target = nil
	t.mask = AxisNone
	if t.OnDraggingChanged != nil {
		t.OnDraggingChanged(false)
	}
}

// Target returns the attached handle, if any.
func (t *TransformTool) Target() (*Handle, bool) {
	return t.target, t.target != nil
}

// Mask returns the allowed axes of the current attachment.
func (t *TransformTool) Mask() AxisMask {
	return t.mask
}

// OnDrag moves the attached handle toward newPos, keeping locked axes at
// their current values, and synchronizes the room.
func (t *TransformTool) OnDrag(newPos math3d.Vec3) error {
	if t.target == nil {
		return ErrNotAttached
	}
	clamped := t.mask.Clamp(t.target.Position(), newPos)
	if err := t.handles.SetPosition(t.target, clamped); err != nil {
		return err
	}
	return Synchronize(t.target, t.handles, t.mesh)
}

// DragPlane returns the plane pointer rays are intersected with while
// dragging the attached handle. Floor handles slide on their horizontal
// plane. Ceiling handles move on the vertical plane through the handle that
// faces the viewer.
func (t *TransformTool) DragPlane(viewDir math3d.Vec3) (point, normal math3d.Vec3, err error) {
	if t.target == nil {
		return math3d.Vec3{}, math3d.Vec3{}, ErrNotAttached
	}
	point = t.target.Position()
	if t.target.Ring() == Floor {
		return point, math3d.Up(), nil
	}

	normal = math3d.V3(viewDir.X, 0, viewDir.Z)
	if normal.Len() < 1e-6 {
		// Looking straight up or down; any vertical plane works.
		normal = math3d.V3(0, 0, 1)
	}
	return point, normal.Normalize().Negate(), nil
}
