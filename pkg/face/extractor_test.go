package face

import (
	"errors"
	"testing"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

func TestExtract(t *testing.T) {
	var gotRow []float32
	emb := &mockEmbedder{
		ExtractFunc: func(_ vision.Image, row []float32) ([]float32, error) {
			gotRow = row
			return []float32{0.5, 0.6, 0.7}, nil
		},
	}

	region, err := ParseRow(validRow())
	if err != nil {
		t.Fatalf("ParseRow failed: %v", err)
	}

	embedding, err := NewExtractor(emb).Extract(newMockImage(640, 480), region)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(gotRow) != vision.RowLen {
		t.Errorf("embedder received row of %d values, want %d", len(gotRow), vision.RowLen)
	}
	if gotRow[14] != region.Score {
		t.Errorf("embedder received score %f, want %f", gotRow[14], region.Score)
	}
	if len(embedding) != 3 || embedding[0] != 0.5 {
		t.Errorf("unexpected embedding: %v", embedding)
	}
}

func TestExtractDefensiveCopy(t *testing.T) {
	// The embedder may reuse its output buffer between calls; the returned
	// embedding must be unaffected by later mutation.
	buf := []float32{1, 2, 3}
	emb := &mockEmbedder{
		ExtractFunc: func(vision.Image, []float32) ([]float32, error) {
			return buf, nil
		},
	}

	region, _ := ParseRow(validRow())
	embedding, err := NewExtractor(emb).Extract(newMockImage(640, 480), region)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	buf[0] = 99
	if embedding[0] != 1 {
		t.Errorf("embedding shares the embedder's buffer: %v", embedding)
	}
}

func TestExtractInvalidRegion(t *testing.T) {
	region, _ := ParseRow(validRow())
	region.Width = 0

	_, err := NewExtractor(&mockEmbedder{}).Extract(newMockImage(640, 480), region)
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestExtractInvalidImage(t *testing.T) {
	region, _ := ParseRow(validRow())

	if _, err := NewExtractor(&mockEmbedder{}).Extract(nil, region); !errors.Is(err, vision.ErrInvalidImage) {
		t.Errorf("nil image: expected ErrInvalidImage, got %v", err)
	}
	if _, err := NewExtractor(&mockEmbedder{}).Extract(newMockImage(0, 0), region); !errors.Is(err, vision.ErrInvalidImage) {
		t.Errorf("empty image: expected ErrInvalidImage, got %v", err)
	}
}

func TestExtractNilEmbedder(t *testing.T) {
	region, _ := ParseRow(validRow())
	_, err := NewExtractor(nil).Extract(newMockImage(640, 480), region)
	if !errors.Is(err, vision.ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel, got %v", err)
	}
}

func TestExtractErrorPropagates(t *testing.T) {
	boom := errors.New("native embedder failure")
	emb := &mockEmbedder{
		ExtractFunc: func(vision.Image, []float32) ([]float32, error) {
			return nil, boom
		},
	}

	region, _ := ParseRow(validRow())
	_, err := NewExtractor(emb).Extract(newMockImage(640, 480), region)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped embedder error, got %v", err)
	}
}
