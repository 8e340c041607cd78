package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores objects on the local filesystem under a root directory.
// Signed URLs point at the finsift HTTP server's /files/ route, which
// verifies the HMAC token before serving.
type Local struct {
	root    string
	baseURL string
	secret  string
}

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir, baseURL, secret string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", dir, err)
	}
	return &Local{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}, nil
}

func (l *Local) Put(ctx context.Context, key string, data []byte) (string, error) {
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating object directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}
	return key, nil
}

func (l *Local) SignedURL(ctx context.Context, storedPath string, ttl time.Duration) (string, error) {
	if _, err := l.resolve(storedPath); err != nil {
		return "", err
	}
	expiry := time.Now().Add(ttl)
	sig := Sign(l.secret, storedPath, expiry)

	q := url.Values{}
	q.Set("exp", fmt.Sprintf("%d", expiry.Unix()))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/files/%s?%s", l.baseURL, storedPath, q.Encode()), nil
}

func (l *Local) Get(ctx context.Context, storedPath string) ([]byte, error) {
	full, err := l.resolve(storedPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", storedPath, err)
	}
	return data, nil
}

// resolve maps a storage key to an absolute path, rejecting traversal
// outside the root.
func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}
