package face

import (
	"fmt"

	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// Default multi-scale parameters, calibrated for the YuNet model's supported
// face size window.
const (
	// DefaultWindow is the pixel size below which a single full-resolution
	// pass covers the whole image.
	DefaultWindow = 300
	// DefaultScaleStep is subtracted from the scale factor after each pass.
	DefaultScaleStep = 0.2
	// DefaultScaleFloor stops the loop once the scale factor drops to it.
	DefaultScaleFloor = 0.3
)

// MultiScaleDetector runs a fixed-input-size detector over an image at a
// series of shrinking scales so faces outside the model's supported pixel
// size window are still found.
//
// Every pass downscales the original image, never the previous pass's copy,
// and the resulting coordinates are mapped back to the original resolution.
// The aggregate result deliberately keeps overlapping detections of the same
// face found at different scales; callers that need one region per face run
// Dedupe afterwards.
type MultiScaleDetector struct {
	detector vision.Detector
	window   int
	step     float64
	floor    float64
}

// NewMultiScaleDetector wraps a detector with the multi-scale loop.
// Non-positive parameters fall back to the defaults.
func NewMultiScaleDetector(d vision.Detector, window int, step, floor float64) *MultiScaleDetector {
	if window <= 0 {
		window = DefaultWindow
	}
	if step <= 0 {
		step = DefaultScaleStep
	}
	if floor <= 0 {
		floor = DefaultScaleFloor
	}
	return &MultiScaleDetector{detector: d, window: window, step: step, floor: floor}
}

// Detect finds face regions in the image across all scales, in the original
// image's coordinate space. Images already within the supported window get
// exactly one full-resolution pass.
func (d *MultiScaleDetector) Detect(img vision.Image) ([]Region, error) {
	if img == nil || img.Empty() {
		return nil, vision.ErrInvalidImage
	}
	if d.detector == nil {
		return nil, vision.ErrInvalidModel
	}

	var regions []Region
	scale := 1.0
	cur := img
	for {
		d.detector.Configure(cur.Cols(), cur.Rows())
		rows, err := d.detector.Detect(cur)
		if cur != img {
			cur.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("detection pass at scale %.2f: %w", scale, err)
		}

		for _, row := range rows {
			if scale != 1.0 {
				row = RescaleRow(row, scale)
			}
			region, err := ParseRow(row)
			if err != nil {
				return nil, err
			}
			regions = append(regions, region)
		}
		logging.Debugf("detection pass at scale %.2f found %d region(s)", scale, len(rows))

		scale -= d.step
		if img.Cols() <= d.window || img.Rows() <= d.window || scale <= d.floor {
			break
		}

		next, err := img.Resize(scale)
		if err != nil {
			return nil, fmt.Errorf("downscale to %.2f: %w", scale, err)
		}
		cur = next
	}

	return regions, nil
}
