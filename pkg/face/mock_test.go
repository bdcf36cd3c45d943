package face

import (
	"math"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// mockImage is a pixel-less stand-in for a decoded image. Resized copies
// remember the factor they were produced with, so detector mocks can emit
// rows in the right coordinate space.
type mockImage struct {
	cols, rows int
	scale      float64
	closed     bool
	children   []*mockImage
}

func newMockImage(cols, rows int) *mockImage {
	return &mockImage{cols: cols, rows: rows, scale: 1.0}
}

func (m *mockImage) Cols() int { return m.cols }

func (m *mockImage) Rows() int { return m.rows }

func (m *mockImage) Empty() bool { return m.cols <= 0 || m.rows <= 0 }

func (m *mockImage) Resize(scale float64) (vision.Image, error) {
	child := &mockImage{
		cols:  int(math.Round(float64(m.cols) * scale)),
		rows:  int(math.Round(float64(m.rows) * scale)),
		scale: scale,
	}
	m.children = append(m.children, child)
	return child, nil
}

func (m *mockImage) Close() error {
	m.closed = true
	return nil
}

type mockDetector struct {
	ConfigureFunc func(width, height int)
	DetectFunc    func(img vision.Image) ([][]float32, error)

	configured [][2]int
}

func (m *mockDetector) Configure(width, height int) {
	m.configured = append(m.configured, [2]int{width, height})
	if m.ConfigureFunc != nil {
		m.ConfigureFunc(width, height)
	}
}

func (m *mockDetector) Detect(img vision.Image) ([][]float32, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(img)
	}
	return nil, nil
}

func (m *mockDetector) Close() error { return nil }

type mockEmbedder struct {
	ExtractFunc    func(img vision.Image, row []float32) ([]float32, error)
	SimilarityFunc func(a, b []float32) float64
}

func (m *mockEmbedder) Extract(img vision.Image, row []float32) ([]float32, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(img, row)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) Similarity(a, b []float32) float64 {
	if m.SimilarityFunc != nil {
		return m.SimilarityFunc(a, b)
	}
	return 0
}

func (m *mockEmbedder) Close() error { return nil }
