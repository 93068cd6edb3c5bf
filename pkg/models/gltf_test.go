package models

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/panoroom/pkg/math3d"
)

func unitQuad() *Mesh {
	mesh := NewMesh("quad")
	for _, p := range []math3d.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
	} {
		mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: p})
	}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}}, {V: [3]int{0, 2, 3}}}
	mesh.CalculateSmoothNormals()
	mesh.CalculateBounds()
	return mesh
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestSaveGLBEmptyMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glb")
	if err := SaveGLB(path, NewMesh("empty"), nil); !errors.Is(err, ErrNoMesh) {
		t.Errorf("expected ErrNoMesh, got %v", err)
	}
}

func TestGLBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.glb")
	mesh := unitQuad()
	markers := []Marker{
		{Name: "ceiling:0", Position: math3d.V3(1, 2, 3)},
		{Name: "floor:0", Position: math3d.V3(-1, -2, -3)},
	}

	if err := SaveGLB(path, mesh, markers); err != nil {
		t.Fatalf("SaveGLB: %v", err)
	}

	scene, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}

	if scene.Mesh.VertexCount() != 4 || scene.Mesh.TriangleCount() != 2 {
		t.Errorf("got %d vertices / %d faces, want 4 / 2",
			scene.Mesh.VertexCount(), scene.Mesh.TriangleCount())
	}
	// Winding is reversed on write and on read, so faces survive unchanged.
	for i, f := range mesh.Faces {
		if scene.Mesh.Faces[i] != f {
			t.Errorf("face %d = %v, want %v", i, scene.Mesh.Faces[i].V, f.V)
		}
	}

	if len(scene.Markers) != len(markers) {
		t.Fatalf("got %d markers, want %d", len(scene.Markers), len(markers))
	}
	for i, m := range markers {
		got := scene.Markers[i]
		if got.Name != m.Name {
			t.Errorf("marker %d name = %q, want %q", i, got.Name, m.Name)
		}
		if got.Position.Distance(m.Position) > 1e-9 {
			t.Errorf("marker %d position = %v, want %v", i, got.Position, m.Position)
		}
	}
}

func TestMeshSetPositions(t *testing.T) {
	mesh := unitQuad()
	mesh.SetPositions([]math3d.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 2}, {X: 0, Y: 0, Z: 2},
	})

	if got := mesh.Size(); got != math3d.V3(2, 0, 2) {
		t.Errorf("size = %v, want (2, 0, 2)", got)
	}
	n := mesh.Vertices[0].Normal
	if math.Abs(math.Abs(n.Y)-1) > 1e-9 {
		t.Errorf("flat quad normal = %v, want ±Y", n)
	}
}

func TestMeshClone(t *testing.T) {
	mesh := unitQuad()
	clone := mesh.Clone()
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	if mesh.Vertices[0].Position == clone.Vertices[0].Position {
		t.Error("clone should not share vertex storage")
	}
}
