package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoResults indicates that no result documents were found during discovery.
var ErrNoResults = errors.New("no result documents discovered")

// ResultFiles resolves the paths given to parse-result. Files are returned in
// the order given. A directory expands to the *.xml files directly inside it,
// sorted lexicographically. Paths seen twice are kept once.
func ResultFiles(root string, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, ErrNoResults
	}

	seen := make(map[string]struct{})
	resolved := make([]string, 0, len(inputs))
	add := func(path string) {
		rel := mustRelOrClean(root, path)
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		resolved = append(resolved, rel)
	}

	for _, input := range inputs {
		cleaned := input
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(root, cleaned)
		}
		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("result %q not found", input)
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if !info.IsDir() {
			add(cleaned)
			continue
		}

		pattern := filepath.Join(cleaned, "*.xml")
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		sort.Strings(found)
		for _, m := range found {
			add(m)
		}
	}

	if len(resolved) == 0 {
		return nil, ErrNoResults
	}
	return resolved, nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
