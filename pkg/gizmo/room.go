package gizmo

import "iter"

// Room is a mesh together with the handle set created from it. Both are
// replaced as a unit whenever the edge count changes.
type Room struct {
	Mesh    *RoomMesh
	Handles *HandleSet
}

// NewRoom builds the prism and its handles.
func NewRoom(edgeCount int, cfg Config) (*Room, error) {
	mesh, err := Build(edgeCount, cfg)
	if err != nil {
		return nil, err
	}
	return &Room{Mesh: mesh, Handles: NewHandleSet(mesh)}, nil
}

// EdgeCount returns N.
func (r *Room) EdgeCount() int {
	return r.Mesh.EdgeCount()
}

// Objects yields the mesh followed by every handle.
func (r *Room) Objects() iter.Seq[SceneObject] {
	return func(yield func(SceneObject) bool) {
		if !yield(r.Mesh) {
			return
		}
		for h := range r.Handles.All() {
			if !yield(h) {
				return
			}
		}
	}
}
