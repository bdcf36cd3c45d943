package face

import "sort"

// DefaultOverlapPercent is the box overlap above which two detections are
// treated as the same physical face.
const DefaultOverlapPercent = 42

// OverlapPercent returns how much of the smaller of the two boxes is covered
// by their intersection, from 0 to 100.
func (r Region) OverlapPercent(other Region) int {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	inter := (x2 - x1) * (y2 - y1)
	areaR := r.Width * r.Height
	areaO := other.Width * other.Height
	smaller := min(areaR, areaO)
	if smaller <= 0 {
		return 0
	}

	return inter * 100 / smaller
}

// Dedupe collapses overlapping detections of the same physical face, keeping
// the highest-scoring region of each overlap cluster. Multi-scale detection
// intentionally reports one face per matching pass, so callers that need a
// single region per face run this on the aggregate result.
//
// A non-positive overlapPercent falls back to DefaultOverlapPercent. The
// input slice is not modified.
func Dedupe(regions []Region, overlapPercent int) []Region {
	if overlapPercent <= 0 {
		overlapPercent = DefaultOverlapPercent
	}
	if len(regions) < 2 {
		return append([]Region(nil), regions...)
	}

	sorted := append([]Region(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var kept []Region
	for _, candidate := range sorted {
		duplicate := false
		for _, k := range kept {
			if k.OverlapPercent(candidate) >= overlapPercent {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}
