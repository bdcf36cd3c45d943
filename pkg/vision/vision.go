// Package vision defines the boundary to the native computer vision models.
// The rest of the application talks to the detector and embedder only through
// the interfaces in this package, so the detection and matching logic never
// depends on OpenCV directly.
package vision

import (
	"errors"
	"math"
)

// RowLen is the number of values in one raw detection row:
// x, y, w, h of the bounding box, five (x, y) landmark pairs, and the
// detection score.
const RowLen = 15

// ErrInvalidImage is returned for missing, empty, zero-dimension or
// undecodable images.
var ErrInvalidImage = errors.New("invalid or empty image")

// ErrInvalidModel is returned when a native model handle is unusable or the
// model file path is invalid.
var ErrInvalidModel = errors.New("invalid model handle")

// Image is one decoded raster image. Implementations own native pixel data
// and must be released with Close exactly once.
type Image interface {
	// Cols returns the image width in pixels.
	Cols() int
	// Rows returns the image height in pixels.
	Rows() int
	// Empty reports whether the image holds no pixel data.
	Empty() bool
	// Resize returns a new image scaled by the given positive factor. The
	// receiver is left untouched; the caller owns the returned image.
	Resize(scale float64) (Image, error)
	// Close releases the underlying pixel data.
	Close() error
}

// Detector finds candidate face regions in an image at a fixed input size.
// The configured input size must match the image passed to Detect.
type Detector interface {
	// Configure sets the input size for subsequent Detect calls.
	Configure(width, height int)
	// Detect returns one raw row of RowLen values per candidate face, in the
	// coordinate space of the given image.
	Detect(img Image) ([][]float32, error)
	// Close releases the native model.
	Close() error
}

// Embedder turns one detected face into a fixed-length feature vector and
// compares such vectors.
type Embedder interface {
	// Extract aligns and crops the face described by the detection row, then
	// computes its feature vector. The returned slice is owned by the caller.
	Extract(img Image, row []float32) ([]float32, error)
	// Similarity compares two feature vectors on the embedder's native
	// scale; higher means more alike.
	Similarity(a, b []float32) float64
	// Close releases the native model.
	Close() error
}

// Cosine returns the cosine similarity of two feature vectors, the native
// comparison metric of the SFace model. Mismatched or empty vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
