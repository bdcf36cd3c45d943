// Package match assigns identities to detected faces by scoring their
// embeddings against a gallery of known subjects.
package match

import (
	"github.com/SameriteRL/Face-Recognizer/pkg/face"
	"github.com/SameriteRL/Face-Recognizer/pkg/gallery"
	"github.com/SameriteRL/Face-Recognizer/pkg/logging"
)

// DefaultThreshold is the average similarity at or above which a subject is
// an exact identity match. The value is calibrated against the SFace
// embedder's native cosine scale and must not be changed without
// recalibration; it is not a generic cosine cutoff.
const DefaultThreshold = 0.363

// Probe is a region/embedding pair taken from the image being identified.
type Probe struct {
	Region    face.Region
	Embedding face.Embedding
}

// Match associates a probe region with a subject label and the averaged
// similarity score that won it.
type Match struct {
	Region face.Region
	Label  string
	Score  float64
}

// Matcher scores probe embeddings against gallery subjects.
type Matcher struct {
	// Similarity compares two embeddings; higher means more alike.
	Similarity func(a, b []float32) float64
	// Threshold is the inclusive acceptance cutoff for averaged scores.
	Threshold float64
}

// NewMatcher returns a matcher with the given similarity function. A
// non-positive threshold falls back to DefaultThreshold.
func NewMatcher(similarity func(a, b []float32) float64, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Similarity: similarity, Threshold: threshold}
}

// Identify scores the probe against every gallery subject and returns the
// best match. For each subject, the probe's similarity to every one of the
// subject's embeddings is averaged; subjects whose average meets the
// threshold are candidates, and the highest average wins. The second return
// is false when no subject meets the threshold or the gallery is empty.
func (m *Matcher) Identify(probe Probe, g gallery.Gallery) (Match, bool) {
	best := Match{Region: probe.Region, Score: face.UnmatchedScore}
	found := false

	for _, subject := range g.Subjects() {
		embs := g[subject]

		var sum float64
		for _, emb := range embs {
			sum += m.Similarity(probe.Embedding, emb)
		}
		avg := sum / float64(len(embs))
		logging.Debugf("probe %s vs %s: average score %.4f", probe.Region, subject, avg)

		if avg < m.Threshold {
			continue
		}
		if !found || avg > best.Score {
			best.Label = subject
			best.Score = avg
			found = true
		}
	}

	if found {
		best.Region.Label = best.Label
		best.Region.MatchScore = best.Score
	}
	return best, found
}

// IdentifyAll labels every probe independently. Each detected region gets
// its own best-matching subject, so the same subject name may legitimately
// label more than one region; probes that match no subject are omitted.
// An empty gallery or probe set yields no matches, not an error.
func (m *Matcher) IdentifyAll(probes []Probe, g gallery.Gallery) []Match {
	var matches []Match
	for _, probe := range probes {
		if match, ok := m.Identify(probe, g); ok {
			matches = append(matches, match)
		}
	}
	return matches
}
