// Package detect defines the visual detector contract and its output model.
// The detector itself is an external inference service; this package owns
// the verdict derivation rule applied to whatever the detector returns.
package detect

import "github.com/safesitelabs/warden/internal/hazard"

// Verdict is the binary classification of an image.
type Verdict string

const (
	// VerdictAnomaly means at least one hazard-class item was detected.
	VerdictAnomaly Verdict = "ANOMALY"

	// VerdictNormal means no hazard-class item was detected.
	VerdictNormal Verdict = "NORMAL"
)

// Item is a single detected region.
type Item struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"` // xmin, ymin, xmax, ymax
}

// Result is the detector output for one image.
type Result struct {
	Verdict   Verdict `json:"status"`
	ImagePath string  `json:"image_path"`
	Items     []Item  `json:"detected_objects"`
}

// DeriveVerdict classifies a detection list: anomaly iff any item's class
// belongs to the configured hazard-class set.
func DeriveVerdict(items []Item, hazardClasses hazard.Set) Verdict {
	for _, it := range items {
		if hazardClasses.Contains(it.Class) {
			return VerdictAnomaly
		}
	}
	return VerdictNormal
}

// EmptyNormal returns a synthetic detector result for modes that bypass the
// detector entirely, so downstream stages see a uniform shape.
func EmptyNormal(imagePath string) *Result {
	return &Result{
		Verdict:   VerdictNormal,
		ImagePath: imagePath,
		Items:     []Item{},
	}
}
