// Package face turns raw detector output into face regions and embeddings.
// It contains the multi-scale detection loop, the embedding extractor and
// the overlap-based post-pass that collapses duplicate detections.
package face

import (
	"errors"
	"fmt"
	"math"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// ErrInvalidRegion is returned for detection rows or regions that do not
// describe exactly one face.
var ErrInvalidRegion = errors.New("malformed face region")

// UnmatchedScore marks a region that has not been assigned an identity.
const UnmatchedScore = -1.0

// Point is a 2D pixel coordinate.
type Point struct {
	X, Y int
}

// Region is one detected face: bounding box, the five facial landmarks
// reported by the detector, and the detection score. Label and MatchScore
// are filled in later by the identity matcher and default to "" and
// UnmatchedScore.
type Region struct {
	X, Y          int
	Width, Height int

	RightEye   Point
	LeftEye    Point
	NoseTip    Point
	RightMouth Point
	LeftMouth  Point

	Score float32

	Label      string
	MatchScore float64
}

// ParseRow builds a Region from one raw detection row of vision.RowLen
// values. Coordinates are truncated to whole pixels; any scaling back to the
// original image happens beforehand via RescaleRow.
func ParseRow(row []float32) (Region, error) {
	if len(row) != vision.RowLen {
		return Region{}, fmt.Errorf("detection row has %d values, want %d: %w",
			len(row), vision.RowLen, ErrInvalidRegion)
	}

	return Region{
		X:          int(row[0]),
		Y:          int(row[1]),
		Width:      int(row[2]),
		Height:     int(row[3]),
		RightEye:   Point{X: int(row[4]), Y: int(row[5])},
		LeftEye:    Point{X: int(row[6]), Y: int(row[7])},
		NoseTip:    Point{X: int(row[8]), Y: int(row[9])},
		RightMouth: Point{X: int(row[10]), Y: int(row[11])},
		LeftMouth:  Point{X: int(row[12]), Y: int(row[13])},
		Score:      row[14],
		Label:      "",
		MatchScore: UnmatchedScore,
	}, nil
}

// RescaleRow maps a raw detection row from a downscaled copy of an image
// back to the original coordinate space by dividing every coordinate value
// by the scale factor, rounding to whole pixels. The detection score in the
// last position is left untouched. Rescaling happens on the raw floats,
// before ParseRow truncates, so the round trip stays within one pixel.
func RescaleRow(row []float32, scale float64) []float32 {
	out := make([]float32, len(row))
	copy(out, row)
	for j := 0; j < len(out) && j < vision.RowLen-1; j++ {
		out[j] = float32(math.Round(float64(out[j]) / scale))
	}
	return out
}

// Row reconstructs the raw detection row for this region, in the layout the
// embedder's align-and-crop step expects.
func (r Region) Row() []float32 {
	return []float32{
		float32(r.X), float32(r.Y),
		float32(r.Width), float32(r.Height),
		float32(r.RightEye.X), float32(r.RightEye.Y),
		float32(r.LeftEye.X), float32(r.LeftEye.Y),
		float32(r.NoseTip.X), float32(r.NoseTip.Y),
		float32(r.RightMouth.X), float32(r.RightMouth.Y),
		float32(r.LeftMouth.X), float32(r.LeftMouth.Y),
		r.Score,
	}
}

// String renders the region for logs and CLI output.
func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d score=%.2f", r.Width, r.Height, r.X, r.Y, r.Score)
}
