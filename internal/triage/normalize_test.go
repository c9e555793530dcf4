package triage

import (
	"testing"

	"github.com/safesitelabs/warden/internal/detect"
	"github.com/safesitelabs/warden/internal/vlm"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		as      *vlm.Assessment
		skipped bool
		policy  Policy
		want    Prediction
	}{
		{
			name:    "gated off",
			as:      nil,
			skipped: true,
			policy:  PolicyLenient,
			want:    Prediction{Code: NoHazardCode, Binary: detect.VerdictNormal, Reason: SkipReason},
		},
		{
			name:    "analyzer failed",
			as:      nil,
			skipped: false,
			policy:  PolicyLenient,
			want:    Prediction{Code: NoHazardCode, Binary: detect.VerdictNormal, Reason: NoAssessmentReason},
		},
		{
			name:   "hazard code",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskHigh, HazardCode: "UA-01", Reason: "no helmet"},
			policy: PolicyLenient,
			want:   Prediction{Code: "UA-01", Binary: detect.VerdictAnomaly, Reason: "no helmet"},
		},
		{
			name:   "safe keyword lenient",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskLow, HazardCode: "NONE", Reason: "clear"},
			policy: PolicyLenient,
			want:   Prediction{Code: "NONE", Binary: detect.VerdictNormal, Reason: "clear"},
		},
		{
			name:   "lowercase safe keyword",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskLow, HazardCode: "none", Reason: "clear"},
			policy: PolicyLenient,
			want:   Prediction{Code: "none", Binary: detect.VerdictNormal, Reason: "clear"},
		},
		{
			name:   "empty code becomes NONE",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskLow, HazardCode: "", Reason: "clear"},
			policy: PolicyLenient,
			want:   Prediction{Code: NoHazardCode, Binary: detect.VerdictNormal, Reason: "clear"},
		},
		{
			name:   "strict forces anomaly on safe code",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskMed, HazardCode: "NONE", Reason: "uncertain"},
			policy: PolicyStrict,
			want:   Prediction{Code: "NONE", Binary: detect.VerdictAnomaly, Reason: "uncertain"},
		},
		{
			name:   "strict ignores unknown level",
			as:     &vlm.Assessment{RiskLevel: "???", HazardCode: "NONE", Reason: "garbled"},
			policy: PolicyStrict,
			want:   Prediction{Code: "NONE", Binary: detect.VerdictNormal, Reason: "garbled"},
		},
		{
			name:   "unlisted code still anomalous",
			as:     &vlm.Assessment{RiskLevel: vlm.RiskMed, HazardCode: "XX-99", Reason: "novel hazard"},
			policy: PolicyLenient,
			want:   Prediction{Code: "XX-99", Binary: detect.VerdictAnomaly, Reason: "novel hazard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.as, tt.skipped, tt.policy); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"hybrid", "vlm-only", "vlm-evaluate"} {
		m, err := ParseMode(s)
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
		if string(m) != s {
			t.Errorf("ParseMode(%q) = %q", s, m)
		}
	}

	if _, err := ParseMode("yolo"); err == nil {
		t.Error("ParseMode(yolo) expected error")
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"lenient", "strict"} {
		p, err := ParsePolicy(s)
		if err != nil {
			t.Errorf("ParsePolicy(%q) error = %v", s, err)
		}
		if string(p) != s {
			t.Errorf("ParsePolicy(%q) = %q", s, p)
		}
	}

	if _, err := ParsePolicy(""); err == nil {
		t.Error("ParsePolicy(empty) expected error")
	}
}
