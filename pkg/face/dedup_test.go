package face

import "testing"

func box(x, y, w, h int, score float32) Region {
	return Region{X: x, Y: y, Width: w, Height: h, Score: score, MatchScore: UnmatchedScore}
}

func TestOverlapPercent(t *testing.T) {
	tests := []struct {
		name string
		a, b Region
		want int
	}{
		{
			name: "identical",
			a:    box(0, 0, 100, 100, 0.9),
			b:    box(0, 0, 100, 100, 0.8),
			want: 100,
		},
		{
			name: "disjoint",
			a:    box(0, 0, 100, 100, 0.9),
			b:    box(200, 200, 100, 100, 0.8),
			want: 0,
		},
		{
			name: "half covered",
			a:    box(0, 0, 100, 100, 0.9),
			b:    box(0, 50, 100, 100, 0.8),
			want: 50,
		},
		{
			name: "small inside large",
			a:    box(0, 0, 200, 200, 0.9),
			b:    box(50, 50, 40, 40, 0.8),
			want: 100,
		},
		{
			name: "touching edges",
			a:    box(0, 0, 100, 100, 0.9),
			b:    box(100, 0, 100, 100, 0.8),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.OverlapPercent(tt.b); got != tt.want {
				t.Errorf("expected %d%%, got %d%%", tt.want, got)
			}
			if got := tt.b.OverlapPercent(tt.a); got != tt.want {
				t.Errorf("reverse: expected %d%%, got %d%%", tt.want, got)
			}
		})
	}
}

func TestDedupeCollapsesOverlaps(t *testing.T) {
	// Two detections of the same face from different scale passes, plus
	// one distinct face elsewhere.
	regions := []Region{
		box(100, 100, 80, 80, 0.85),
		box(102, 98, 82, 84, 0.93),
		box(400, 300, 60, 60, 0.90),
	}

	kept := Dedupe(regions, DefaultOverlapPercent)
	if len(kept) != 2 {
		t.Fatalf("expected 2 regions after dedup, got %d", len(kept))
	}
	if kept[0].Score != 0.93 {
		t.Errorf("the highest-scoring duplicate must win, got score %f", kept[0].Score)
	}
	if kept[1].X != 400 {
		t.Errorf("the distinct face must be kept, got %+v", kept[1])
	}
}

func TestDedupeKeepsDisjoint(t *testing.T) {
	regions := []Region{
		box(0, 0, 50, 50, 0.9),
		box(100, 100, 50, 50, 0.8),
		box(300, 0, 50, 50, 0.7),
	}

	if kept := Dedupe(regions, DefaultOverlapPercent); len(kept) != 3 {
		t.Errorf("expected all 3 disjoint regions kept, got %d", len(kept))
	}
}

func TestDedupeDoesNotModifyInput(t *testing.T) {
	regions := []Region{
		box(0, 0, 50, 50, 0.1),
		box(100, 100, 50, 50, 0.9),
	}

	Dedupe(regions, DefaultOverlapPercent)
	if regions[0].Score != 0.1 {
		t.Errorf("input slice was reordered: %+v", regions)
	}
}

func TestDedupeSmallInputs(t *testing.T) {
	if kept := Dedupe(nil, 0); len(kept) != 0 {
		t.Errorf("expected empty result for nil input, got %v", kept)
	}

	one := []Region{box(0, 0, 10, 10, 0.5)}
	if kept := Dedupe(one, 0); len(kept) != 1 {
		t.Errorf("expected single region kept, got %v", kept)
	}
}
