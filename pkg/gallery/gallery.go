// Package gallery builds and persists the set of known-subject embeddings
// that probe faces are matched against.
package gallery

import (
	"errors"
	"sort"

	"github.com/SameriteRL/Face-Recognizer/pkg/face"
)

// ErrEmptyGallery is returned when a gallery build or load produces zero
// usable embeddings across all subjects. The matcher must never operate on
// an empty gallery as if it were valid.
var ErrEmptyGallery = errors.New("gallery contains no usable face samples")

// Gallery maps each subject name to the embeddings harvested from that
// subject's sample images. Every key maps to a non-empty list; it is built
// once per matching session and not mutated afterwards.
type Gallery map[string][]face.Embedding

// Subjects returns all subject names in sorted order.
func (g Gallery) Subjects() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of embeddings across all subjects.
func (g Gallery) Count() int {
	total := 0
	for _, embs := range g {
		total += len(embs)
	}
	return total
}
