package face

import (
	"errors"
	"testing"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// scaledRow emits the row a detector would report for a face at the given
// full-resolution coordinates when the image is downscaled by scale.
func scaledRow(scale float64) []float32 {
	base := validRow()
	row := make([]float32, len(base))
	for j := 0; j < 14; j++ {
		row[j] = base[j] * float32(scale)
	}
	row[14] = base[14]
	return row
}

func TestDetectSmallImageSinglePass(t *testing.T) {
	// An image already within the supported window gets exactly one
	// full-resolution pass with no coordinate adjustment.
	img := newMockImage(300, 240)
	det := &mockDetector{
		DetectFunc: func(vision.Image) ([][]float32, error) {
			return [][]float32{validRow()}, nil
		},
	}

	regions, err := NewMultiScaleDetector(det, 300, 0.2, 0.3).Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(det.configured) != 1 {
		t.Fatalf("expected 1 detection pass, got %d", len(det.configured))
	}
	if det.configured[0] != [2]int{300, 240} {
		t.Errorf("expected input size 300x240, got %v", det.configured[0])
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].X != 100 || regions[0].Width != 50 {
		t.Errorf("full-resolution coordinates must be kept raw, got %+v", regions[0])
	}
	if len(img.children) != 0 {
		t.Errorf("expected no downscaled copies, got %d", len(img.children))
	}
}

func TestDetectMultiplePasses(t *testing.T) {
	img := newMockImage(1000, 800)
	det := &mockDetector{
		DetectFunc: func(i vision.Image) ([][]float32, error) {
			return [][]float32{scaledRow(i.(*mockImage).scale)}, nil
		},
	}

	regions, err := NewMultiScaleDetector(det, 300, 0.2, 0.3).Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// Scale factors 1.0, 0.8, 0.6, 0.4 before hitting the floor.
	wantSizes := [][2]int{{1000, 800}, {800, 640}, {600, 480}, {400, 320}}
	if len(det.configured) != len(wantSizes) {
		t.Fatalf("expected %d passes, got %d: %v", len(wantSizes), len(det.configured), det.configured)
	}
	for i, want := range wantSizes {
		if det.configured[i] != want {
			t.Errorf("pass %d: expected input size %v, got %v", i, want, det.configured[i])
		}
	}

	// Every pass contributes its detection, rescaled to within one pixel
	// of the original coordinates, scores untouched.
	if len(regions) != len(wantSizes) {
		t.Fatalf("expected %d regions, got %d", len(wantSizes), len(regions))
	}
	for i, region := range regions {
		if diff := region.X - 100; diff < -1 || diff > 1 {
			t.Errorf("pass %d: x = %d, want 100 +/- 1", i, region.X)
		}
		if diff := region.NoseTip.Y - 230; diff < -1 || diff > 1 {
			t.Errorf("pass %d: nose tip y = %d, want 230 +/- 1", i, region.NoseTip.Y)
		}
		if region.Score != 0.91 {
			t.Errorf("pass %d: score = %f, want 0.91", i, region.Score)
		}
	}
}

func TestDetectClosesDownscaledCopies(t *testing.T) {
	img := newMockImage(1000, 800)
	det := &mockDetector{}

	if _, err := NewMultiScaleDetector(det, 300, 0.2, 0.3).Detect(img); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if img.closed {
		t.Error("the original image must not be closed by Detect")
	}
	for i, child := range img.children {
		if !child.closed {
			t.Errorf("downscaled copy %d was not closed", i)
		}
	}
}

func TestDetectInvalidImage(t *testing.T) {
	msd := NewMultiScaleDetector(&mockDetector{}, 300, 0.2, 0.3)

	if _, err := msd.Detect(nil); !errors.Is(err, vision.ErrInvalidImage) {
		t.Errorf("nil image: expected ErrInvalidImage, got %v", err)
	}
	if _, err := msd.Detect(newMockImage(0, 0)); !errors.Is(err, vision.ErrInvalidImage) {
		t.Errorf("empty image: expected ErrInvalidImage, got %v", err)
	}
}

func TestDetectNilDetector(t *testing.T) {
	msd := NewMultiScaleDetector(nil, 300, 0.2, 0.3)
	if _, err := msd.Detect(newMockImage(100, 100)); !errors.Is(err, vision.ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestDetectErrorPropagates(t *testing.T) {
	boom := errors.New("native detector failure")
	det := &mockDetector{
		DetectFunc: func(vision.Image) ([][]float32, error) {
			return nil, boom
		},
	}

	_, err := NewMultiScaleDetector(det, 300, 0.2, 0.3).Detect(newMockImage(100, 100))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped detector error, got %v", err)
	}
}

func TestDetectMalformedRow(t *testing.T) {
	det := &mockDetector{
		DetectFunc: func(vision.Image) ([][]float32, error) {
			return [][]float32{{1, 2, 3}}, nil
		},
	}

	_, err := NewMultiScaleDetector(det, 300, 0.2, 0.3).Detect(newMockImage(100, 100))
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestNewMultiScaleDetectorDefaults(t *testing.T) {
	msd := NewMultiScaleDetector(&mockDetector{}, 0, 0, 0)
	if msd.window != DefaultWindow || msd.step != DefaultScaleStep || msd.floor != DefaultScaleFloor {
		t.Errorf("expected defaults, got window=%d step=%f floor=%f", msd.window, msd.step, msd.floor)
	}
}
