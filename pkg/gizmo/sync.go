package gizmo

import "fmt"

// Synchronize propagates an edit of h to the rest of the handle set and
// regenerates the mesh.
//
// A ceiling edit broadcasts the new height to every ceiling handle, closing
// duplicate included, and leaves their horizontal coordinates alone. A floor
// edit touches only the edited handle. The floor ring is never mirrored onto
// the ceiling.
func Synchronize(h *Handle, handles *HandleSet, mesh *RoomMesh) error {
	switch h.Ring() {
	case Ceiling:
		y := h.Position().Y
		for c := range handles.Ring(Ceiling) {
			pos := c.Position()
			pos.Y = y
			if err := handles.SetPosition(c, pos); err != nil {
				return err
			}
		}
	case Floor:
		own, err := handles.Get(h.ID())
		if err != nil {
			return err
		}
		pos := own.Position()
		hz := h.Position().Horizontal()
		pos.X, pos.Z = hz.X, hz.Y
		if err := handles.SetPosition(own, pos); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown %v", ErrInvalidParameter, h.Ring())
	}

	return mesh.Rebuild(handles)
}
