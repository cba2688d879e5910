// Package library loads workout documents from a directory of markdown
// files and watches it for changes.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/logger"
	"github.com/forgefit-labs/discovery/internal/normalisers/workoutmd"
)

// Load parses every markdown file in dir, in filename order. Files that
// fail to parse are skipped with a warning so one bad file cannot hide the
// rest of the library.
func Load(dir string) ([]domain.WorkoutDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading library directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdown(entry.Name()) || isHidden(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]domain.WorkoutDocument, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		doc, err := workoutmd.Parse(content, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, *doc)
	}

	logger.Debug("Loaded %d workouts from %s", len(docs), dir)
	return docs, nil
}

// isMarkdown reports whether the filename has a markdown extension.
func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

// isHidden reports whether the filename is a dotfile.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
