// Package layout is the room layout record a host persists: the edge
// count, the floor footprint and the ceiling height.
package layout

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/panoroom/pkg/gizmo"
	"github.com/taigrr/panoroom/pkg/math3d"
)

// ErrInvalidLayout is returned for records that cannot describe a room.
var ErrInvalidLayout = errors.New("layout: invalid record")

// Point is a footprint vertex on the horizontal plane.
type Point struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// Layout is one saved room.
type Layout struct {
	ID            uuid.UUID `yaml:"id"`
	EdgeCount     int       `yaml:"edges"`
	Floor         []Point   `yaml:"floor"`
	CeilingHeight float64   `yaml:"ceiling_height"`
	Rotation      float64   `yaml:"panorama_rotation,omitempty"` // degrees
}

// New creates a record with a fresh identity.
func New(edgeCount int, floor []math3d.Vec2, ceilingHeight float64) *Layout {
	l := &Layout{
		ID:            uuid.New(),
		EdgeCount:     edgeCount,
		Floor:         make([]Point, len(floor)),
		CeilingHeight: ceilingHeight,
	}
	for i, p := range floor {
		l.Floor[i] = Point{X: p.X, Z: p.Y}
	}
	return l
}

// Footprint returns the floor ring as (x, z) vectors.
func (l *Layout) Footprint() []math3d.Vec2 {
	out := make([]math3d.Vec2, len(l.Floor))
	for i, p := range l.Floor {
		out[i] = math3d.V2(p.X, p.Z)
	}
	return out
}

// Validate checks the record against the room topology.
func (l *Layout) Validate() error {
	if l.EdgeCount < gizmo.MinEdges || l.EdgeCount > gizmo.MaxEdges {
		return fmt.Errorf("%w: edge count %d outside [%d, %d]", ErrInvalidLayout, l.EdgeCount, gizmo.MinEdges, gizmo.MaxEdges)
	}
	if len(l.Floor) != l.EdgeCount+1 {
		return fmt.Errorf("%w: %d floor points for %d edges, want %d", ErrInvalidLayout, len(l.Floor), l.EdgeCount, l.EdgeCount+1)
	}
	for i, p := range l.Floor {
		if !finite(p.X) || !finite(p.Z) {
			return fmt.Errorf("%w: floor point %d is not finite", ErrInvalidLayout, i)
		}
	}
	if !finite(l.CeilingHeight) {
		return fmt.Errorf("%w: ceiling height is not finite", ErrInvalidLayout)
	}
	if l.Rotation < 0 || l.Rotation > 360 {
		return fmt.Errorf("%w: rotation %g outside [0, 360]", ErrInvalidLayout, l.Rotation)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Encode writes the record as YAML.
func (l *Layout) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return enc.Close()
}

// Decode reads and validates a YAML record.
func Decode(r io.Reader) (*Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return &l, nil
}

// Save writes the record to path, replacing any existing file.
func (l *Layout) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create layout file: %w", err)
	}
	if err := l.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a record from path.
func Load(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
