package layout

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/panoroom/pkg/math3d"
)

func square() []math3d.Vec2 {
	return []math3d.Vec2{{X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.yaml")
	l := New(4, square(), 120)
	l.Rotation = 90

	require.NoError(t, l.Save(path))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, l.ID, got.ID)
	assert.Equal(t, 4, got.EdgeCount)
	assert.Equal(t, 120.0, got.CeilingHeight)
	assert.Equal(t, 90.0, got.Rotation)
	assert.Equal(t, square(), got.Footprint())
}

func TestDecodeAssignsMissingID(t *testing.T) {
	doc := `
edges: 3
ceiling_height: 80
floor:
  - {x: 0, z: 1}
  - {x: 1, z: 0}
  - {x: 0, z: -1}
  - {x: 0, z: 1}
`
	l, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, l.ID)
	assert.Len(t, l.Floor, 4)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"too few edges", func(l *Layout) { l.EdgeCount = 2 }},
		{"too many edges", func(l *Layout) { l.EdgeCount = 11 }},
		{"floor length", func(l *Layout) { l.Floor = l.Floor[:3] }},
		{"nan floor", func(l *Layout) { l.Floor[1].X = math.NaN() }},
		{"inf ceiling", func(l *Layout) { l.CeilingHeight = math.Inf(-1) }},
		{"rotation", func(l *Layout) { l.Rotation = 361 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New(4, square(), 100)
			require.NoError(t, l.Validate())
			tc.mutate(l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidLayout)
		})
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	l := New(4, square()[:2], 100)
	require.NoError(t, l.Encode(&buf))

	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
