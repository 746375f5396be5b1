package workspace

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/site"
	"github.com/zeebo/blake3"
)

// Digest names the hash used to turn a workspace key into a directory name.
type Digest string

const (
	DigestMD5    Digest = "md5"
	DigestBLAKE3 Digest = "blake3"
)

// BaseFunc maps a target to the directory its workspaces live under.
type BaseFunc func(site.Target) string

// fsWorkspaceManager manages scratch directories on local disk.
type fsWorkspaceManager struct {
	base   BaseFunc
	digest Digest
}

var _ Manager = (*fsWorkspaceManager)(nil)

// NewFSManager creates a filesystem-backed workspace manager.
func NewFSManager(base BaseFunc, digest Digest) (*fsWorkspaceManager, error) {
	if base == nil {
		return nil, fmt.Errorf("workspace base function is nil")
	}
	switch digest {
	case DigestMD5, DigestBLAKE3:
	case "":
		digest = DigestMD5
	default:
		return nil, fmt.Errorf("unsupported workspace digest %q", digest)
	}
	return &fsWorkspaceManager{base: base, digest: digest}, nil
}

// Acquire creates the workspace for key idempotently.
func (m *fsWorkspaceManager) Acquire(ctx context.Context, target site.Target, key string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}

	path, err := m.workspacePath(target, key)
	if err != nil {
		return Workspace{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return Workspace{}, fmt.Errorf("%w: %s: %v", ErrCreateFailed, path, err)
	}

	return Workspace{Key: key, Dir: path}, nil
}

// Release removes the workspace tree.
func (m *fsWorkspaceManager) Release(ws Workspace) error {
	if strings.TrimSpace(ws.Dir) == "" {
		return fmt.Errorf("workspace dir is empty")
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		return fmt.Errorf("remove workspace %q: %w", ws.Dir, err)
	}
	return nil
}

// Sum returns the hex digest of key.
func (d Digest) Sum(key string) string {
	switch d {
	case DigestBLAKE3:
		sum := blake3.Sum256([]byte(key))
		return hex.EncodeToString(sum[:])
	default:
		sum := md5.Sum([]byte(key))
		return hex.EncodeToString(sum[:])
	}
}

func (m *fsWorkspaceManager) workspacePath(target site.Target, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	base := strings.TrimSpace(m.base(target))
	if base == "" {
		return "", fmt.Errorf("workspace base directory is empty for %s", target)
	}
	return filepath.Join(filepath.Clean(base), m.digest.Sum(key)), nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("workspace key is empty")
	}
	return nil
}
