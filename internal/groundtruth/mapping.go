package groundtruth

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/linnemanlabs/go-core/log"
	"github.com/safesitelabs/warden/internal/hazard"
)

// MappingResolver resolves ground truth through the dataset's filename
// mapping table: processed filename -> original source path, which is then
// rewritten to the sibling annotation-JSON path. Multi-label: the JSON's
// situation ID and every per-object annotation code contribute.
type MappingResolver struct {
	mapping   map[string]string // new filename -> original image path
	whitelist hazard.Set
	logger    log.Logger
}

// NewMappingResolver loads the mapping table once. A missing or unreadable
// mapping file is tolerated: the resolver runs with an empty table and every
// image resolves to "no hazard".
func NewMappingResolver(mappingCSV string, whitelist hazard.Set, logger log.Logger) *MappingResolver {
	if logger == nil {
		logger = log.Nop()
	}
	r := &MappingResolver{
		mapping:   make(map[string]string),
		whitelist: whitelist,
		logger:    logger,
	}

	if err := r.loadMapping(mappingCSV); err != nil {
		logger.Warn(context.Background(), "mapping table unavailable, all images resolve to no hazard",
			"path", mappingCSV,
			"error", err.Error(),
		)
	} else {
		logger.Info(context.Background(), "mapping table loaded",
			"path", mappingCSV,
			"entries", len(r.mapping),
		)
	}
	return r
}

func (r *MappingResolver) loadMapping(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("empty mapping file")
	}

	nameCol, pathCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "New_Filename":
			nameCol = i
		case "Original_Path":
			pathCol = i
		}
	}
	if nameCol < 0 || pathCol < 0 {
		return fmt.Errorf("missing New_Filename/Original_Path columns")
	}

	for _, row := range rows[1:] {
		if len(row) <= nameCol || len(row) <= pathCol {
			continue
		}
		r.mapping[row[nameCol]] = row[pathCol]
	}
	return nil
}

// labelJSON matches the annotation-JSON layout of the original dataset.
type labelJSON struct {
	RawDataInfo struct {
		SituationID string `json:"situation_ID"`
	} `json:"Raw data Info."`
	LearningDataInfo struct {
		Annotation []struct {
			ClassID string `json:"class_id"`
		} `json:"annotation"`
	} `json:"Learning data info."`
}

// Resolve looks up the image's original path, rewrites it to the annotation
// JSON, and extracts the whitelisted hazard codes. The situation ID is the
// authoritative top-level code; per-object annotations supplement it.
func (r *MappingResolver) Resolve(ctx context.Context, imagePath string) *Record {
	name := filepath.Base(imagePath)
	rec := &Record{ImageID: name}

	origPath, ok := r.mapping[name]
	if !ok {
		return rec
	}

	jsonPath := labelPathFor(origPath)
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		r.logger.Warn(ctx, "label json unavailable", "image", name, "path", jsonPath)
		return rec
	}

	var lbl labelJSON
	if err := json.Unmarshal(raw, &lbl); err != nil {
		r.logger.Warn(ctx, "label json corrupt", "image", name, "path", jsonPath, "error", err.Error())
		return rec
	}

	if sit := lbl.RawDataInfo.SituationID; r.whitelist.Contains(sit) {
		rec.Codes = appendCode(rec.Codes, sit)
	}
	for _, ann := range lbl.LearningDataInfo.Annotation {
		if r.whitelist.Contains(ann.ClassID) {
			rec.Codes = appendCode(rec.Codes, ann.ClassID)
		}
	}
	return rec
}

// labelPathFor rewrites an original image path to its annotation JSON:
// the "original" directory segment becomes "label", the TS_/VS_ folder
// prefixes become TL_/VL_, and the extension becomes .json.
func labelPathFor(origPath string) string {
	p := strings.ReplaceAll(origPath, "/original/", "/label/")
	p = strings.ReplaceAll(p, "TS_", "TL_")
	p = strings.ReplaceAll(p, "VS_", "VL_")
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".json"
}
