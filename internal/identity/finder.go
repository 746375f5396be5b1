package identity

import (
	"context"

	"github.com/mattjoyce/sitescrub/internal/extension"
)

// DiscoveryFinder finds modules by scanning the docroot on disk.
type DiscoveryFinder struct {
	Logger func(level, msg string, args ...any)
}

var _ ExtensionFinder = (*DiscoveryFinder)(nil)

func (f *DiscoveryFinder) Find(ctx context.Context, docroot, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return extension.NewDiscovery(docroot, f.Logger).Locate(extension.TypeModule, name)
}
