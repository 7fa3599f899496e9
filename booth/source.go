package booth

import (
	"context"
	"image"
)

// CaptureSource is the device camera abstraction. Implementations own the
// device handle: Open acquires it, Close releases it. A Session guarantees
// Close is called on every exit path so no handle leaks past a capture.
type CaptureSource interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (image.Image, error)
	// FrontFacing reports whether the source faces the user ("selfie"
	// orientation). Frames from such sources are flipped on encode so the
	// saved image is un-mirrored.
	FrontFacing() bool
	Close() error
}
