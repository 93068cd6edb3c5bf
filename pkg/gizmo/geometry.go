// Package gizmo implements the room prism editor: the ceiling and floor
// rings, their draggable vertex handles, the axis-constrained transform tool
// and the synchronization rules that keep both rings planar.
package gizmo

import (
	"fmt"
	"math"

	"github.com/taigrr/panoroom/pkg/math3d"
	"github.com/taigrr/panoroom/pkg/models"
)

// Ring identifies one of the two closed vertex loops of the prism.
type Ring int

const (
	Ceiling Ring = iota
	Floor
)

func (r Ring) String() string {
	switch r {
	case Ceiling:
		return "ceiling"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("ring(%d)", int(r))
	}
}

// Opposite returns the other ring.
func (r Ring) Opposite() Ring {
	if r == Ceiling {
		return Floor
	}
	return Ceiling
}

// RoomMesh is the prism built from an edge count: N+1 vertices per ring,
// the last one closing the loop onto the first. Drawable holds the triangle
// buffer the renderer reads; it is only ever regenerated through Rebuild.
type RoomMesh struct {
	edges    int
	cfg      Config
	rings    [2][]math3d.Vec3
	Drawable *models.Mesh
}

// Build constructs a fresh prism with the given edge count.
func Build(edgeCount int, cfg Config) (*RoomMesh, error) {
	if edgeCount < MinEdges || edgeCount > MaxEdges {
		return nil, fmt.Errorf("%w: edge count %d outside [%d, %d]", ErrInvalidParameter, edgeCount, MinEdges, MaxEdges)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &RoomMesh{edges: edgeCount, cfg: cfg}
	heights := [2]float64{Ceiling: cfg.CeilingHeight, Floor: cfg.FloorHeight}
	for ring, y := range heights {
		points := make([]math3d.Vec3, edgeCount+1)
		for i := range edgeCount {
			angle := 2*math.Pi*float64(i)/float64(edgeCount) + math.Pi/float64(edgeCount)
			points[i] = math3d.V3(cfg.Radius*math.Cos(angle), y, cfg.Radius*math.Sin(angle))
		}
		points[edgeCount] = points[0]
		m.rings[ring] = points
	}
	m.Drawable = m.buildDrawable()
	return m, nil
}

// EdgeCount returns N.
func (m *RoomMesh) EdgeCount() int {
	return m.edges
}

// RingSize returns the number of vertices per ring, N+1.
func (m *RoomMesh) RingSize() int {
	return m.edges + 1
}

// Config returns the config the mesh was built with.
func (m *RoomMesh) Config() Config {
	return m.cfg
}

// Kind tags the mesh for scene traversal.
func (m *RoomMesh) Kind() ObjectKind {
	return KindRoomGizmo
}

// VertexPosition returns the current position of a ring vertex.
func (m *RoomMesh) VertexPosition(ring Ring, index int) (math3d.Vec3, error) {
	if ring != Ceiling && ring != Floor {
		return math3d.Vec3{}, fmt.Errorf("%w: unknown %v", ErrInvalidParameter, ring)
	}
	if index < 0 || index >= m.RingSize() {
		return math3d.Vec3{}, fmt.Errorf("%w: %v index %d, ring has %d vertices", ErrIndexOutOfRange, ring, index, m.RingSize())
	}
	return m.rings[ring][index], nil
}

// Points returns all vertices, ceiling ring first, in drawable order.
func (m *RoomMesh) Points() []math3d.Vec3 {
	points := make([]math3d.Vec3, 0, 2*m.RingSize())
	points = append(points, m.rings[Ceiling]...)
	return append(points, m.rings[Floor]...)
}

// vertexIndex maps a ring vertex to its slot in Points and Drawable.
func (m *RoomMesh) vertexIndex(ring Ring, index int) int {
	return int(ring)*m.RingSize() + index
}

// Edges returns the wireframe segments as index pairs into Points: both
// ring loops plus one vertical per corner.
func (m *RoomMesh) Edges() [][2]int {
	edges := make([][2]int, 0, 3*m.edges)
	for i := range m.edges {
		edges = append(edges,
			[2]int{m.vertexIndex(Ceiling, i), m.vertexIndex(Ceiling, i+1)},
			[2]int{m.vertexIndex(Floor, i), m.vertexIndex(Floor, i+1)},
			[2]int{m.vertexIndex(Ceiling, i), m.vertexIndex(Floor, i)},
		)
	}
	return edges
}

// Rebuild regenerates the ring positions and the drawable buffer from the
// handle set. A handle set that does not match the mesh topology is a
// *SyncError and leaves the mesh untouched.
func (m *RoomMesh) Rebuild(handles *HandleSet) error {
	want := 2 * m.RingSize()
	if handles == nil {
		return &SyncError{Expected: want, Actual: 0, Reason: "no handle set"}
	}
	if handles.Len() != want {
		return &SyncError{Expected: want, Actual: handles.Len(), Reason: "handle count does not match mesh"}
	}

	next := [2][]math3d.Vec3{
		make([]math3d.Vec3, m.RingSize()),
		make([]math3d.Vec3, m.RingSize()),
	}
	seen := make([]bool, want)
	for h := range handles.All() {
		id := h.ID()
		if id.Index < 0 || id.Index >= m.RingSize() || (id.Ring != Ceiling && id.Ring != Floor) {
			return &SyncError{Expected: m.RingSize(), Actual: id.Index, Reason: "handle " + id.String() + " outside mesh"}
		}
		slot := m.vertexIndex(id.Ring, id.Index)
		if seen[slot] {
			return &SyncError{Expected: want, Actual: handles.Len(), Reason: "duplicate handle " + id.String()}
		}
		seen[slot] = true
		next[id.Ring][id.Index] = h.Position()
	}

	if len(m.Drawable.Vertices) != want {
		return &SyncError{Expected: want, Actual: len(m.Drawable.Vertices), Reason: "drawable vertex buffer"}
	}
	m.rings = next
	m.Drawable.SetPositions(m.Points())
	return nil
}

// buildDrawable triangulates the prism: two triangles per wall and a fan
// for each cap.
func (m *RoomMesh) buildDrawable() *models.Mesh {
	mesh := models.NewMesh("room")
	for _, p := range m.Points() {
		mesh.Vertices = append(mesh.Vertices, models.MeshVertex{Position: p})
	}

	for i := range m.edges {
		c0, c1 := m.vertexIndex(Ceiling, i), m.vertexIndex(Ceiling, i+1)
		f0, f1 := m.vertexIndex(Floor, i), m.vertexIndex(Floor, i+1)
		mesh.Faces = append(mesh.Faces,
			models.Face{V: [3]int{c0, c1, f1}},
			models.Face{V: [3]int{c0, f1, f0}},
		)
	}
	for _, ring := range []Ring{Ceiling, Floor} {
		for i := 1; i+1 < m.edges; i++ {
			mesh.Faces = append(mesh.Faces, models.Face{V: [3]int{
				m.vertexIndex(ring, 0), m.vertexIndex(ring, i), m.vertexIndex(ring, i+1),
			}})
		}
	}

	mesh.CalculateSmoothNormals()
	mesh.CalculateBounds()
	return mesh
}
