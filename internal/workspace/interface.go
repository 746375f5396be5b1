package workspace

import (
	"context"
	"errors"

	"github.com/mattjoyce/sitescrub/internal/site"
)

//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/mattjoyce/sitescrub/internal/workspace Manager

// ErrCreateFailed reports that a scratch directory could not be created.
var ErrCreateFailed = errors.New("workspace create failed")

// Workspace is a per-run scratch directory handed to the scrub pipeline as
// its cache prefix.
type Workspace struct {
	Key string
	Dir string
}

// Manager governs scratch directory lifecycle.
type Manager interface {
	// Acquire returns the directory for key under the target's base,
	// creating it if needed. Acquiring the same key twice yields the same path.
	Acquire(ctx context.Context, target site.Target, key string) (Workspace, error)

	// Release recursively removes the workspace. Removing an absent
	// directory succeeds.
	Release(ws Workspace) error
}
