package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattjoyce/sitescrub/internal/site"
)

var target = site.Target{Group: "acme", Env: "prod", DBRole: "acmedb"}

func baseUnder(root string) BaseFunc {
	return func(t site.Target) string {
		return filepath.Join(root, t.Group+"."+t.Env, "drush_tmp_cache")
	}
}

func TestFSWorkspaceManagerAcquireMD5Path(t *testing.T) {
	root := t.TempDir()
	mgr, err := NewFSManager(baseUnder(root), DigestMD5)
	if err != nil {
		t.Fatalf("NewFSManager() error = %v", err)
	}

	ws, err := mgr.Acquire(context.Background(), target, "acmesite.example.com")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	want := filepath.Join(root, "acme.prod", "drush_tmp_cache", DigestMD5.Sum("acmesite.example.com"))
	if ws.Dir != want {
		t.Fatalf("Acquire() dir = %q, want %q", ws.Dir, want)
	}
	if len(filepath.Base(ws.Dir)) != 32 {
		t.Fatalf("md5 dir name length = %d, want 32", len(filepath.Base(ws.Dir)))
	}
	info, err := os.Stat(ws.Dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("workspace not created: %v", err)
	}
}

func TestFSWorkspaceManagerAcquireIdempotent(t *testing.T) {
	mgr, err := NewFSManager(baseUnder(t.TempDir()), DigestMD5)
	if err != nil {
		t.Fatalf("NewFSManager() error = %v", err)
	}

	first, err := mgr.Acquire(context.Background(), target, "k")
	if err != nil {
		t.Fatalf("Acquire(first) error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(first.Dir, "leftover"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	second, err := mgr.Acquire(context.Background(), target, "k")
	if err != nil {
		t.Fatalf("Acquire(second) error = %v", err)
	}
	if first != second {
		t.Fatalf("Acquire() not idempotent: %+v vs %+v", first, second)
	}
}

func TestFSWorkspaceManagerBLAKE3(t *testing.T) {
	mgr, err := NewFSManager(baseUnder(t.TempDir()), DigestBLAKE3)
	if err != nil {
		t.Fatalf("NewFSManager() error = %v", err)
	}
	ws, err := mgr.Acquire(context.Background(), target, "acmesite.example.com")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if len(filepath.Base(ws.Dir)) != 64 {
		t.Fatalf("blake3 dir name length = %d, want 64", len(filepath.Base(ws.Dir)))
	}
	if DigestBLAKE3.Sum("a") == DigestBLAKE3.Sum("b") {
		t.Fatal("distinct keys produced the same digest")
	}
}

func TestFSWorkspaceManagerReleaseRemovesTree(t *testing.T) {
	mgr, err := NewFSManager(baseUnder(t.TempDir()), DigestMD5)
	if err != nil {
		t.Fatalf("NewFSManager() error = %v", err)
	}
	ws, err := mgr.Acquire(context.Background(), target, "k")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	nested := filepath.Join(ws.Dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "f"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := mgr.Release(ws); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Fatalf("workspace still present after Release: %v", err)
	}
	if err := mgr.Release(ws); err != nil {
		t.Fatalf("Release(absent) error = %v", err)
	}
}

func TestFSWorkspaceManagerCreateFailed(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	if err := os.WriteFile(blocker, []byte("file"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	mgr, err := NewFSManager(func(site.Target) string { return filepath.Join(blocker, "cache") }, DigestMD5)
	if err != nil {
		t.Fatalf("NewFSManager() error = %v", err)
	}

	_, err = mgr.Acquire(context.Background(), target, "k")
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Acquire() error = %v, want ErrCreateFailed", err)
	}

	_, err = mgr.Acquire(context.Background(), target, " ")
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Acquire(empty key) error = %v, want ErrCreateFailed", err)
	}
}

func TestNewFSManagerRejectsUnknownDigest(t *testing.T) {
	if _, err := NewFSManager(baseUnder(t.TempDir()), "sha1"); err == nil {
		t.Fatal("expected error for unknown digest")
	}
	if _, err := NewFSManager(nil, DigestMD5); err == nil {
		t.Fatal("expected error for nil base")
	}
}
