// Package errs collects the sentinel errors shared across catgen's
// packages, wrapped at call sites with fmt.Errorf("%w: ...").
package errs

import "errors"

var (
	// ErrInputNotFound is returned when the configured input path does not exist.
	ErrInputNotFound = errors.New("input path not found")
	// ErrInputNotDir is returned when a directory was expected but a file was given.
	ErrInputNotDir = errors.New("input path is not a directory")
	// ErrSidecarHeader is returned when a sidecar CSV's first column is not source_id.
	ErrSidecarHeader = errors.New("sidecar header must start with source_id")
	// ErrOutputExists is returned when the output directory cannot be prepared.
	ErrOutputExists = errors.New("output path could not be prepared")

	// ErrOctantExists is returned when create_octant would collide with an existing id.
	ErrOctantExists = errors.New("octant id already exists")
	// ErrOctantMissing is returned when a lookup by octant id fails unexpectedly.
	ErrOctantMissing = errors.New("octant not found")
	// ErrParentMissing is returned when a non-root, non-deleted octant has no resolvable parent.
	ErrParentMissing = errors.New("octant parent missing")
	// ErrDepthExceeded is returned when insertion cannot place a star within the maximum depth.
	ErrDepthExceeded = errors.New("octree maximum depth exceeded")
	// ErrStarIndexOutOfRange is returned when a writer encounters an out-of-range particle index.
	ErrStarIndexOutOfRange = errors.New("star index out of range")

	// ErrUnknownCompression is returned when an unrecognized compression name is requested.
	ErrUnknownCompression = errors.New("unknown compression codec")
	// ErrUnknownColumn is returned when a --columns alias cannot be resolved.
	ErrUnknownColumn = errors.New("unknown column alias")
)
