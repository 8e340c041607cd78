// Package storage abstracts the blob store that holds original uploads.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// Storage is the blob store contract consumed by the processing pipeline.
type Storage interface {
	// Put persists the bytes under key and returns the stored path.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// SignedURL returns a time-limited URL for reading the stored object.
	SignedURL(ctx context.Context, storedPath string, ttl time.Duration) (string, error)

	// Get reads the stored object back.
	Get(ctx context.Context, storedPath string) ([]byte, error)
}

// BuildKey namespaces an upload under its owner and application:
// {ownerID}/{applicationID}/{timestamp}-{filename}.
func BuildKey(ownerID, applicationID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", ownerID, applicationID, now.UnixMilli(), sanitizeFilename(filename))
}

// sanitizeFilename strips path components and characters that would break
// storage keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		return "upload"
	}
	return name
}
