package groundtruth

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linnemanlabs/go-core/log"
	"github.com/safesitelabs/warden/internal/hazard"
)

// LabelFileResolver resolves ground truth from the flat-label layout: a
// sibling text file per image whose lines start with an integer class index.
// The historical evaluator kept only the first qualifying code; this
// resolver returns all of them, in file order, so both schemes share the
// set-based scoring rule.
type LabelFileResolver struct {
	indexTable map[int]string
	whitelist  hazard.Set
	logger     log.Logger
}

// NewLabelFileResolver creates a resolver over the given class-index table
// and hazard whitelist.
func NewLabelFileResolver(indexTable map[int]string, whitelist hazard.Set, logger log.Logger) *LabelFileResolver {
	if logger == nil {
		logger = log.Nop()
	}
	return &LabelFileResolver{
		indexTable: indexTable,
		whitelist:  whitelist,
		logger:     logger,
	}
}

// Resolve derives the sibling label path (images -> labels, extension ->
// .txt) and maps each line's class index through the table, keeping
// whitelisted codes.
func (r *LabelFileResolver) Resolve(ctx context.Context, imagePath string) *Record {
	rec := &Record{ImageID: filepath.Base(imagePath)}

	labelPath := strings.ReplaceAll(imagePath, "/images/", "/labels/")
	labelPath = strings.TrimSuffix(labelPath, filepath.Ext(labelPath)) + ".txt"

	f, err := os.Open(labelPath)
	if err != nil {
		r.logger.Warn(ctx, "label file unavailable", "image", rec.ImageID, "path", labelPath)
		return rec
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		code, ok := r.indexTable[idx]
		if !ok || !r.whitelist.Contains(code) {
			continue
		}
		rec.Codes = appendCode(rec.Codes, code)
	}
	if err := sc.Err(); err != nil {
		r.logger.Warn(ctx, "label file read failed", "image", rec.ImageID, "path", labelPath, "error", err.Error())
	}
	return rec
}
