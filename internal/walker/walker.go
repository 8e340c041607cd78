// Package walker discovers processable documents under a directory for
// batch ingestion.
package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the largest file picked up by a walk (20 MB).
const DefaultMaxFileSize int64 = 20 << 20

// supportedTypes maps the file extensions the pipeline can process to
// their MIME types.
var supportedTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".txt":  "text/plain",
}

// excludedDirs are directory names skipped wholesale during traversal.
var excludedDirs = []string{
	".git",
	".finsift",
	"node_modules",
	".DS_Store",
}

// FileInfo describes one discovered document.
type FileInfo struct {
	Path     string // absolute path on disk
	RelPath  string // slash-separated path relative to the root
	Size     int64
	MimeType string
}

// Config controls a walk.
type Config struct {
	RootDir     string
	Include     []string // glob patterns; empty means everything
	Exclude     []string // glob patterns; empty means nothing
	MaxFileSize int64    // 0 selects DefaultMaxFileSize
}

// Walk traverses the tree under config.RootDir and returns every
// supported document that passes the filters, in traversal order.
// Unreadable entries are skipped rather than aborting the walk.
func Walk(config Config) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		mime, ok := supportedTypes[strings.ToLower(filepath.Ext(d.Name()))]
		if !ok {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel := filepath.ToSlash(relPath)

		if !matchesInclude(rel, config.Include) || matchesExclude(rel, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		files = append(files, FileInfo{
			Path:     path,
			RelPath:  rel,
			Size:     info.Size(),
			MimeType: mime,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// Supported reports whether the filename has a processable extension.
func Supported(filename string) bool {
	_, ok := supportedTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// DetectMime returns the MIME type for a supported filename, or
// application/octet-stream for anything else.
func DetectMime(filename string) string {
	if mime, ok := supportedTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

func excludedDir(name string) bool {
	for _, excl := range excludedDirs {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

func matchesInclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(rel, patterns)
}

func matchesExclude(rel string, patterns []string) bool {
	return len(patterns) > 0 && matchesAny(rel, patterns)
}

// matchesAny matches rel against each pattern, both as a full path and
// as a bare filename so "*.pdf" works at any depth.
func matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, rel); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(rel)); err == nil && matched {
			return true
		}
	}
	return false
}
