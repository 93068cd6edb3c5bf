package gizmo

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/taigrr/panoroom/pkg/math3d"
)

// ObjectKind tags scene objects once, at creation, so traversal never has
// to probe an object's shape.
type ObjectKind int

const (
	KindOther ObjectKind = iota
	KindRoomGizmo
	KindVertexHandle
)

func (k ObjectKind) String() string {
	switch k {
	case KindRoomGizmo:
		return "room-gizmo"
	case KindVertexHandle:
		return "vertex-handle"
	default:
		return "other"
	}
}

// SceneObject is anything the viewport draws.
type SceneObject interface {
	Kind() ObjectKind
}

// HandleID is the stable identity of a handle: its ring and its index in
// that ring.
type HandleID struct {
	Ring  Ring
	Index int
}

// String formats the identity as "ring:index", e.g. "floor:2".
func (id HandleID) String() string {
	return id.Ring.String() + ":" + strconv.Itoa(id.Index)
}

// ParseHandleID parses the String form of a HandleID. Anything else,
// including negative or non-numeric indices, is ErrMalformedHandleIdentity.
// Whether the index exists in a given ring is checked by HandleSet.Get.
func ParseHandleID(s string) (HandleID, error) {
	name, idx, ok := strings.Cut(s, ":")
	if !ok {
		return HandleID{}, fmt.Errorf("%w: %q has no ring separator", ErrMalformedHandleIdentity, s)
	}

	var id HandleID
	switch name {
	case "ceiling":
		id.Ring = Ceiling
	case "floor":
		id.Ring = Floor
	default:
		return HandleID{}, fmt.Errorf("%w: unknown ring %q", ErrMalformedHandleIdentity, name)
	}

	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 || strings.HasPrefix(idx, "+") {
		return HandleID{}, fmt.Errorf("%w: bad index %q", ErrMalformedHandleIdentity, idx)
	}
	id.Index = n
	return id, nil
}

// Handle is a pickable marker bound to one ring vertex.
type Handle struct {
	id  HandleID
	pos math3d.Vec3
}

// ID returns the handle identity.
func (h *Handle) ID() HandleID { return h.id }

// Ring returns the ring the handle belongs to.
func (h *Handle) Ring() Ring { return h.id.Ring }

// Index returns the handle's position in its ring.
func (h *Handle) Index() int { return h.id.Index }

// Position returns the current world position.
func (h *Handle) Position() math3d.Vec3 { return h.pos }

// Kind tags the handle for scene traversal.
func (h *Handle) Kind() ObjectKind { return KindVertexHandle }

// HandleSet holds one handle per mesh vertex, ceiling ring first.
type HandleSet struct {
	ringSize int
	handles  []*Handle
}

// NewHandleSet wraps every vertex of the mesh in a handle placed at the
// vertex position.
func NewHandleSet(mesh *RoomMesh) *HandleSet {
	s := &HandleSet{ringSize: mesh.RingSize()}
	for _, ring := range []Ring{Ceiling, Floor} {
		for i := range mesh.RingSize() {
			pos, _ := mesh.VertexPosition(ring, i)
			s.handles = append(s.handles, &Handle{id: HandleID{Ring: ring, Index: i}, pos: pos})
		}
	}
	return s
}

// Len returns the total handle count, 2(N+1).
func (s *HandleSet) Len() int {
	return len(s.handles)
}

// All yields every handle. The sequence can be iterated any number of times.
func (s *HandleSet) All() iter.Seq[*Handle] {
	return func(yield func(*Handle) bool) {
		for _, h := range s.handles {
			if !yield(h) {
				return
			}
		}
	}
}

// Ring yields the handles of one ring in index order.
func (s *HandleSet) Ring(r Ring) iter.Seq[*Handle] {
	return func(yield func(*Handle) bool) {
		for _, h := range s.handles {
			if h.id.Ring == r && !yield(h) {
				return
			}
		}
	}
}

// Get looks a handle up by identity.
func (s *HandleSet) Get(id HandleID) (*Handle, error) {
	if id.Ring != Ceiling && id.Ring != Floor {
		return nil, fmt.Errorf("%w: unknown %v", ErrInvalidParameter, id.Ring)
	}
	if id.Index < 0 || id.Index >= s.ringSize {
		return nil, fmt.Errorf("%w: %v, ring has %d handles", ErrIndexOutOfRange, id, s.ringSize)
	}
	return s.handles[int(id.Ring)*s.ringSize+id.Index], nil
}

// SetPosition moves a handle. Only finiteness is checked; the planarity
// rules are the transform tool's job.
func (s *HandleSet) SetPosition(h *Handle, pos math3d.Vec3) error {
	if !pos.IsFinite() {
		return fmt.Errorf("%w: position %v for %v is not finite", ErrInvalidParameter, pos, h.id)
	}
	h.pos = pos
	return nil
}

// Footprint returns the horizontal (x, z) coordinates of the floor ring in
// index order.
func (s *HandleSet) Footprint() []math3d.Vec2 {
	points := make([]math3d.Vec2, 0, s.ringSize)
	for h := range s.Ring(Floor) {
		points = append(points, h.pos.Horizontal())
	}
	return points
}

// CeilingHeight returns the shared Y of the ceiling ring.
func (s *HandleSet) CeilingHeight() float64 {
	for h := range s.Ring(Ceiling) {
		return h.pos.Y
	}
	return 0
}
