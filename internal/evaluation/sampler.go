// Package evaluation scores the triage pipeline against dataset ground
// truth: deterministic sampling, per-image scoring, aggregate metrics, and a
// row-level CSV report.
package evaluation

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListImages returns all .jpg/.png files directly under dir, sorted, so the
// sampling population is stable across runs.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".png":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Sample selects a reproducible subset: the same seed and size over the same
// population always select the same files. size <= 0 or size >= len(files)
// returns the population unchanged.
func Sample(files []string, size int, seed int64) []string {
	if size <= 0 || len(files) <= size {
		return files
	}
	r := rand.New(rand.NewSource(seed))
	picked := make([]string, 0, size)
	for _, i := range r.Perm(len(files))[:size] {
		picked = append(picked, files[i])
	}
	return picked
}
