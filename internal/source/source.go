// Package source resolves specification files on disk into parse requests.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rcliao/specforge/internal/domain"
)

// File is one specification document read from disk.
type File struct {
	Path    string
	Format  domain.Format
	Content string
}

// DetectFormat picks the parser from the file extension. Anything that is
// not markdown or yaml is treated as plain text.
func DetectFormat(path string) domain.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return domain.FormatMarkdown
	case ".yaml", ".yml":
		return domain.FormatYAML
	default:
		return domain.FormatPlain
	}
}

// Extensions lists the file types picked up when scanning a directory.
var Extensions = []string{".md", ".markdown", ".yaml", ".yml", ".txt"}

// DirPattern matches every specification file below dir.
func DirPattern(dir string) string {
	exts := make([]string, len(Extensions))
	for i, e := range Extensions {
		exts[i] = strings.TrimPrefix(e, ".")
	}
	return filepath.Join(dir, "**", "*.{"+strings.Join(exts, ",")+"}")
}

// IsSpecFile reports whether path has one of Extensions.
func IsSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Ignored reports whether path matches any doublestar pattern.
func Ignored(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}

// Expand resolves glob patterns to a sorted, de-duplicated list of regular
// files. A pattern without meta characters must name an existing file.
func Expand(patterns []string, ignore []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		var matches []string
		if strings.ContainsAny(pattern, "*?[{") {
			if !doublestar.ValidatePathPattern(pattern) {
				return nil, fmt.Errorf("source: invalid pattern %q", pattern)
			}
			m, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("source: glob %q: %w", pattern, err)
			}
			matches = m
		} else {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("source: %w", err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("source: %s is a directory", pattern)
			}
			matches = []string{pattern}
		}

		for _, m := range matches {
			clean := filepath.Clean(m)
			if seen[clean] || Ignored(clean, ignore) {
				continue
			}
			seen[clean] = true
			paths = append(paths, clean)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads path. A non-empty format overrides extension detection.
func Load(path string, format domain.Format) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	if format == "" {
		format = DetectFormat(path)
	}
	return &File{Path: path, Format: format, Content: string(data)}, nil
}
