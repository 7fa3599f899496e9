package booth

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// DefaultQuality matches the capture quality of the web client.
const DefaultQuality = 90

// Encoder turns a captured frame into a compressed JPEG buffer. Single
// format, fixed quality.
type Encoder struct {
	Quality int
}

func NewEncoder() *Encoder {
	return &Encoder{Quality: DefaultQuality}
}

// Encode compresses the frame. With mirror set the frame is flipped
// horizontally first, so a front-facing capture saves the way a viewer
// would see it even though the live preview stays mirrored.
func (e *Encoder) Encode(frame image.Image, mirror bool) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("no frame to encode")
	}

	if mirror {
		frame = flipHorizontal(frame)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func flipHorizontal(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, src.At(bounds.Min.X+bounds.Max.X-1-x, y))
		}
	}
	return dst
}
