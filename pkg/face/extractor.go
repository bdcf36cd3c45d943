package face

import (
	"fmt"

	"github.com/SameriteRL/Face-Recognizer/pkg/vision"
)

// Extractor computes embeddings for detected face regions.
type Extractor struct {
	embedder vision.Embedder
}

// NewExtractor wraps an embedder.
func NewExtractor(e vision.Embedder) *Extractor {
	return &Extractor{embedder: e}
}

// Extract aligns, crops and embeds the face described by the region. The
// returned embedding is an independent copy; the embedder may reuse its
// output buffer between calls.
func (x *Extractor) Extract(img vision.Image, region Region) (Embedding, error) {
	if img == nil || img.Empty() {
		return nil, vision.ErrInvalidImage
	}
	if x.embedder == nil {
		return nil, vision.ErrInvalidModel
	}
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("region %s: %w", region, ErrInvalidRegion)
	}

	vec, err := x.embedder.Extract(img, region.Row())
	if err != nil {
		return nil, fmt.Errorf("extract embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedder returned empty vector: %w", vision.ErrInvalidModel)
	}

	out := make(Embedding, len(vec))
	copy(out, vec)
	return out, nil
}
