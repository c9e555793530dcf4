package evaluation

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/safesitelabs/warden/internal/triage"
)

var reportHeader = []string{
	"Image", "GT_Codes", "Pred_Code", "GT_Binary", "Pred_Binary",
	"Acc_Binary", "Acc_Code", "Reason",
	"Time_Detector", "Time_Analyzer", "Time_Total",
}

// WriteReport persists the scored rows as delimited tabular text with a
// header, one row per evaluated image.
func WriteReport(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		gtCodes := triage.NoHazardCode
		if len(r.GTCodes) > 0 {
			gtCodes = strings.Join(r.GTCodes, ", ")
		}
		record := []string{
			r.Image,
			gtCodes,
			r.PredCode,
			string(r.GTBinary),
			string(r.PredBinary),
			strconv.FormatBool(r.AccBinary),
			strconv.FormatBool(r.AccCode),
			r.Reason,
			fmt.Sprintf("%.4f", r.DetectorSeconds),
			fmt.Sprintf("%.4f", r.AnalyzerSeconds),
			fmt.Sprintf("%.4f", r.TotalSeconds),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return f.Close()
}
