package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// matImage wraps a gocv Mat as an Image.
type matImage struct {
	mat gocv.Mat
}

// NewMatImage wraps an existing Mat. The returned Image takes ownership of
// the Mat and releases it on Close.
func NewMatImage(mat gocv.Mat) Image {
	return &matImage{mat: mat}
}

// Decode reads an image file from disk. Undecodable or empty files fail with
// ErrInvalidImage rather than producing an empty image.
func Decode(path string) (Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decode %s: %w", path, ErrInvalidImage)
	}
	return &matImage{mat: mat}, nil
}

func (m *matImage) Cols() int {
	return m.mat.Cols()
}

func (m *matImage) Rows() int {
	return m.mat.Rows()
}

func (m *matImage) Empty() bool {
	return m.mat.Empty()
}

func (m *matImage) Resize(scale float64) (Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	width := int(math.Round(float64(m.mat.Cols()) * scale))
	height := int(math.Round(float64(m.mat.Rows()) * scale))
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidImage)
	}

	dst := gocv.NewMat()
	gocv.Resize(m.mat, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("resize produced empty image: %w", ErrInvalidImage)
	}
	return &matImage{mat: dst}, nil
}

func (m *matImage) Close() error {
	return m.mat.Close()
}

// matOf unwraps the gocv Mat behind an Image.
func matOf(img Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.Mat{}, ErrInvalidImage
	}
	m, ok := img.(*matImage)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("image is not Mat-backed: %w", ErrInvalidImage)
	}
	if m.mat.Empty() {
		return gocv.Mat{}, ErrInvalidImage
	}
	return m.mat, nil
}
