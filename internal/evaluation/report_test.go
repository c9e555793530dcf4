package evaluation

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safesitelabs/warden/internal/detect"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{
			Image:           "a.jpg",
			GTCodes:         []string{"UA-01", "UC-02"},
			PredCode:        "UA-01",
			GTBinary:        detect.VerdictAnomaly,
			PredBinary:      detect.VerdictAnomaly,
			AccBinary:       true,
			AccCode:         true,
			Reason:          "worker without helmet",
			DetectorSeconds: 0.125,
			AnalyzerSeconds: 1.5,
			TotalSeconds:    1.625,
		},
		{
			Image:      "b.jpg",
			PredCode:   "NONE",
			GTBinary:   detect.VerdictNormal,
			PredBinary: detect.VerdictNormal,
			AccBinary:  true,
			AccCode:    true,
			Reason:     "skipped by detector",
		},
	}

	// parent dir is created on demand
	path := filepath.Join(t.TempDir(), "logs", "eval_result.csv")
	require.NoError(t, WriteReport(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Image", "GT_Codes", "Pred_Code", "GT_Binary", "Pred_Binary",
		"Acc_Binary", "Acc_Code", "Reason",
		"Time_Detector", "Time_Analyzer", "Time_Total",
	}, records[0])

	assert.Equal(t, []string{
		"a.jpg", "UA-01, UC-02", "UA-01", "ANOMALY", "ANOMALY",
		"true", "true", "worker without helmet",
		"0.1250", "1.5000", "1.6250",
	}, records[1])

	// empty ground truth renders as NONE
	assert.Equal(t, "NONE", records[2][1])
	assert.Equal(t, "b.jpg", records[2][0])
}

func TestWriteReport_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteReport(path, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
