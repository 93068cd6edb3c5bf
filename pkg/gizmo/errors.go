package gizmo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for out-of-range construction or
	// settings values, such as an edge count outside [MinEdges, MaxEdges].
	ErrInvalidParameter = errors.New("gizmo: invalid parameter")
	// ErrIndexOutOfRange is returned when a ring index does not exist.
	ErrIndexOutOfRange = errors.New("gizmo: index out of range")
	// ErrMalformedHandleIdentity is returned when a handle name cannot be
	// parsed back into a ring and index.
	ErrMalformedHandleIdentity = errors.New("gizmo: malformed handle identity")
	// ErrGeometrySync is returned when the drawable buffer cannot be
	// regenerated from the handle set. It is not recoverable.
	ErrGeometrySync = errors.New("gizmo: geometry sync failed")
	// ErrNotAttached is returned by drags while no handle is attached.
	ErrNotAttached = errors.New("gizmo: transform tool not attached")
)

// SyncError describes a mismatch between the handle set and the mesh it is
// rebuilding.
type SyncError struct {
	Expected int
	Actual   int
	Reason   string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%v: %s (expected %d, got %d)", ErrGeometrySync, e.Reason, e.Expected, e.Actual)
}

// Unwrap lets errors.Is match ErrGeometrySync.
func (e *SyncError) Unwrap() error {
	return ErrGeometrySync
}
