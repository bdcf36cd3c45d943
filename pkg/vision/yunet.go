package vision

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// YuNet is the OpenCV FaceDetectorYN face detection model.
//
// The model reliably finds faces roughly between 10x10 and 300x300 pixels at
// its configured input size; callers that need a wider range run it at
// several scales. A YuNet handle holds native state and is not safe for
// concurrent use.
type YuNet struct {
	fd gocv.FaceDetectorYN
}

// Default YuNet inference parameters, matching the OpenCV defaults.
const (
	yunetScoreThreshold = 0.9
	yunetNMSThreshold   = 0.3
	yunetTopK           = 5000
)

// NewYuNet loads the YuNet model from the given ONNX file and binds it to
// the inference backend. The input size starts at 0x0 and must be set with
// Configure before the first Detect call. The caller must Close the returned
// detector.
func NewYuNet(modelPath string, backend Backend) (*YuNet, error) {
	info, err := os.Stat(modelPath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("detector model %q: %w", modelPath, ErrInvalidModel)
	}
	backendID, targetID := backend.Resolve()
	fd := gocv.NewFaceDetectorYNWithParams(modelPath, "", image.Pt(0, 0),
		yunetScoreThreshold, yunetNMSThreshold, yunetTopK, backendID, targetID)
	return &YuNet{fd: fd}, nil
}

// Configure sets the model's input size. It must match the dimensions of the
// image passed to the next Detect call.
func (d *YuNet) Configure(width, height int) {
	d.fd.SetInputSize(image.Pt(width, height))
}

// Detect runs the model on the image and returns one raw row per candidate
// face. Coordinates are in the image's own coordinate space.
func (d *YuNet) Detect(img Image) ([][]float32, error) {
	mat, err := matOf(img)
	if err != nil {
		return nil, err
	}

	faces := gocv.NewMat()
	defer faces.Close()
	d.fd.Detect(mat, &faces)

	rows := make([][]float32, 0, faces.Rows())
	for i := 0; i < faces.Rows(); i++ {
		row := make([]float32, RowLen)
		for j := 0; j < RowLen; j++ {
			row[j] = faces.GetFloatAt(i, j)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close releases the native model.
func (d *YuNet) Close() error {
	return d.fd.Close()
}
