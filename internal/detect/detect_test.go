package detect

import (
	"testing"

	"github.com/safesitelabs/warden/internal/hazard"
)

func TestDeriveVerdict(t *testing.T) {
	t.Parallel()

	classes := hazard.DefaultDetectorClasses()

	tests := []struct {
		name  string
		items []Item
		want  Verdict
	}{
		{
			name:  "no items",
			items: nil,
			want:  VerdictNormal,
		},
		{
			name: "only benign classes",
			items: []Item{
				{Class: "forklift", Confidence: 0.93},
				{Class: "person", Confidence: 0.88},
			},
			want: VerdictNormal,
		},
		{
			name: "single hazard class",
			items: []Item{
				{Class: "no_helmet", Confidence: 0.77},
			},
			want: VerdictAnomaly,
		},
		{
			name: "hazard among benign items",
			items: []Item{
				{Class: "forklift", Confidence: 0.95},
				{Class: "danger_zone_entry", Confidence: 0.64},
				{Class: "person", Confidence: 0.81},
			},
			want: VerdictAnomaly,
		},
		{
			name: "unknown class is not a hazard",
			items: []Item{
				{Class: "pallet_jack", Confidence: 0.9},
			},
			want: VerdictNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveVerdict(tt.items, classes); got != tt.want {
				t.Errorf("DeriveVerdict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveVerdict_CustomClasses(t *testing.T) {
	t.Parallel()

	classes := hazard.NewSet("forklift_blind_spot")
	items := []Item{{Class: "forklift_blind_spot", Confidence: 0.5}}

	if got := DeriveVerdict(items, classes); got != VerdictAnomaly {
		t.Errorf("DeriveVerdict() = %q, want %q", got, VerdictAnomaly)
	}
	if got := DeriveVerdict(items, hazard.DefaultDetectorClasses()); got != VerdictNormal {
		t.Errorf("DeriveVerdict() with default classes = %q, want %q", got, VerdictNormal)
	}
}

func TestEmptyNormal(t *testing.T) {
	t.Parallel()

	r := EmptyNormal("/data/img.jpg")

	if r.Verdict != VerdictNormal {
		t.Errorf("Verdict = %q, want %q", r.Verdict, VerdictNormal)
	}
	if r.ImagePath != "/data/img.jpg" {
		t.Errorf("ImagePath = %q, want %q", r.ImagePath, "/data/img.jpg")
	}
	if r.Items == nil || len(r.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", r.Items)
	}
}
