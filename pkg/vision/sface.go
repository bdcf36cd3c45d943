package vision

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// SFace is the OpenCV FaceRecognizerSF face embedding model.
//
// Extract aligns the face using the detection row's landmarks, crops it and
// computes a feature vector; Similarity compares two such vectors with the
// model's native cosine metric. An SFace handle holds native state and is
// not safe for concurrent use.
type SFace struct {
	fr gocv.FaceRecognizerSF
}

// NewSFace loads the SFace model from the given ONNX file and binds it to
// the inference backend. The caller must Close the returned embedder.
func NewSFace(modelPath string, backend Backend) (*SFace, error) {
	info, err := os.Stat(modelPath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("embedder model %q: %w", modelPath, ErrInvalidModel)
	}
	backendID, targetID := backend.Resolve()
	fr := gocv.NewFaceRecognizerSFWithParams(modelPath, "", backendID, targetID)
	return &SFace{fr: fr}, nil
}

// Extract aligns and crops the face described by the detection row, then
// computes its feature vector. The model reuses internal buffers between
// calls, so the vector is copied out before returning.
func (e *SFace) Extract(img Image, row []float32) ([]float32, error) {
	mat, err := matOf(img)
	if err != nil {
		return nil, err
	}
	if len(row) != RowLen {
		return nil, fmt.Errorf("detection row has %d values, want %d", len(row), RowLen)
	}

	box := gocv.NewMatWithSize(1, RowLen, gocv.MatTypeCV32F)
	defer box.Close()
	for j, v := range row {
		box.SetFloatAt(0, j, v)
	}

	aligned := gocv.NewMat()
	defer aligned.Close()
	e.fr.AlignCrop(mat, box, &aligned)
	if aligned.Empty() {
		return nil, fmt.Errorf("align and crop produced no face: %w", ErrInvalidImage)
	}

	feature := gocv.NewMat()
	defer feature.Close()
	e.fr.Feature(aligned, &feature)
	if feature.Cols() == 0 {
		return nil, fmt.Errorf("feature extraction returned empty vector: %w", ErrInvalidModel)
	}

	vec := make([]float32, feature.Cols())
	for j := range vec {
		vec[j] = feature.GetFloatAt(0, j)
	}
	return vec, nil
}

// Similarity compares two feature vectors on SFace's native cosine scale.
func (e *SFace) Similarity(a, b []float32) float64 {
	return Cosine(a, b)
}

// Close releases the native model.
func (e *SFace) Close() error {
	return e.fr.Close()
}
