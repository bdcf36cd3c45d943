package gallery

import (
	"math"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

type mockImage struct {
	cols, rows int
	path       string
	closed     bool
}

func (m *mockImage) Cols() int   { return m.cols }
func (m *mockImage) Rows() int   { return m.rows }
func (m *mockImage) Empty() bool { return m.cols <= 0 || m.rows <= 0 }

func (m *mockImage) Resize(scale float64) (vision.Image, error) {
	return &mockImage{
		cols: int(math.Round(float64(m.cols) * scale)),
		rows: int(math.Round(float64(m.rows) * scale)),
		path: m.path,
	}, nil
}

func (m *mockImage) Close() error {
	m.closed = true
	return nil
}

type mockDetector struct {
	DetectFunc func(img vision.Image) ([][]float32, error)
}

func (m *mockDetector) Configure(width, height int) {}

func (m *mockDetector) Detect(img vision.Image) ([][]float32, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(img)
	}
	return [][]float32{faceRow()}, nil
}

func (m *mockDetector) Close() error { return nil }

type mockEmbedder struct {
	ExtractFunc func(img vision.Image, row []float32) ([]float32, error)
}

func (m *mockEmbedder) Extract(img vision.Image, row []float32) ([]float32, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(img, row)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) Similarity(a, b []float32) float64 { return 0 }

func (m *mockEmbedder) Close() error { return nil }

// faceRow is one plausible raw detection row.
func faceRow() []float32 {
	return []float32{
		20, 30, 40, 50,
		30, 45, 50, 45, 40, 55, 32, 65, 48, 65,
		0.9,
	}
}
