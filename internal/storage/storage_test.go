package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := BuildKey("user-1", "app-1", "my invoice.pdf", now)
	want := "user-1/app-1/1700000000000-my_invoice.pdf"
	if key != want {
		t.Errorf("BuildKey = %q, want %q", key, want)
	}
}

func TestBuildKeyStripsPathComponents(t *testing.T) {
	key := BuildKey("u", "a", "../../etc/passwd", time.UnixMilli(1))
	if strings.Contains(key, "..") {
		t.Errorf("key contains traversal: %q", key)
	}
}

func TestLocalPutGetRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080", "secret")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	path, err := store.Put(ctx, "user-1/app-1/1-doc.pdf", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := store.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("Get returned %q", data)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080", "secret")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Put(ctx, "../outside", []byte("x")); err == nil {
		t.Error("expected traversal key to be rejected")
	}
	if _, err := store.Get(ctx, "/etc/passwd"); err == nil {
		t.Error("expected absolute key to be rejected")
	}
}

func TestSignedURLVerifies(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080", "secret")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	path, err := store.Put(ctx, "u/a/1-doc.png", []byte("img"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	signed, err := store.SignedURL(ctx, path, time.Hour)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parsing signed URL: %v", err)
	}
	if !strings.HasPrefix(u.Path, "/files/") {
		t.Errorf("unexpected URL path %q", u.Path)
	}

	exp := u.Query().Get("exp")
	sig := u.Query().Get("sig")
	now := time.Now()

	if !Verify("secret", path, exp, sig, now) {
		t.Error("valid signature did not verify")
	}
	if Verify("wrong", path, exp, sig, now) {
		t.Error("signature verified with wrong secret")
	}
	if Verify("secret", "u/a/other", exp, sig, now) {
		t.Error("signature verified for a different path")
	}
	if Verify("secret", path, exp, sig, now.Add(2*time.Hour)) {
		t.Error("expired signature verified")
	}
	if Verify("secret", path, "notanumber", sig, now) {
		t.Error("malformed expiry verified")
	}
}
