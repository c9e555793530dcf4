// Package groundtruth resolves the authoritative hazard-code set for an
// image from the dataset's label storage. Two incompatible storage schemes
// exist; both are exposed behind one Resolver interface so scoring never
// branches on scheme. Resolution gaps (unmapped image, missing or corrupt
// label file) are not errors: they resolve to the empty set with a warning.
package groundtruth

import (
	"context"

	"github.com/safesitelabs/warden/internal/detect"
)

// Record is the ground truth for one image.
type Record struct {
	ImageID string
	Codes   []string // ordered, de-duplicated; empty means no hazard
}

// Binary derives the binary ground-truth verdict: anomaly iff any code.
func (r *Record) Binary() detect.Verdict {
	if len(r.Codes) > 0 {
		return detect.VerdictAnomaly
	}
	return detect.VerdictNormal
}

// Has reports whether code is one of the record's hazard codes.
func (r *Record) Has(code string) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Resolver maps an image path to its ground-truth record.
type Resolver interface {
	Resolve(ctx context.Context, imagePath string) *Record
}

// appendCode appends code to codes if it is not already present.
func appendCode(codes []string, code string) []string {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
