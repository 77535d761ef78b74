package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Frame is one extracted still, ordered by capture time.
type Frame struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Score holds the per-frame difference and stability components.
type Score struct {
	Index      int     `json:"index"`
	Difference float64 `json:"difference"`
	Stability  float64 `json:"stability"`
}

// Combined is the base selection score before zone boosts.
func (s Score) Combined() float64 {
	return s.Difference + s.Stability
}

var frameExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// List returns the image frames in dir sorted by filename, indexed from 0.
func List(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := frameExtensions[ext]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	result := make([]Frame, len(names))
	for i, name := range names {
		result[i] = Frame{Index: i, Path: filepath.Join(dir, name)}
	}
	return result, nil
}
