// Package identity derives the canonical public domain of a duplicated site.
//
// Resolution reads the site name from the copied database, locates the Site
// Factory companion extension in the docroot, and asks the credentials tool
// for the environment's URL suffix. It never writes to the database and runs
// exactly one subprocess.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/sitescrub/internal/site"
)

//go:generate mockgen -destination=mocks/mock_identity.go -package=mocks github.com/mattjoyce/sitescrub/internal/identity InfoLookup,ExtensionFinder,SuffixFetcher

var (
	ErrMissingSiteName   = errors.New("site name missing from " + site.InfoVariable)
	ErrExtensionNotFound = errors.New("companion extension not found")
	ErrSuffixUnavailable = errors.New("url suffix unavailable")
)

// InfoLookup reads a decoded variable. variables.Store satisfies it.
type InfoLookup interface {
	Lookup(ctx context.Context, name string, dst any) (bool, error)
}

// ExtensionFinder locates a module under a docroot and returns its
// absolute directory.
type ExtensionFinder interface {
	Find(ctx context.Context, docroot, name string) (string, bool, error)
}

// SuffixRequest carries what the credentials tool needs.
type SuffixRequest struct {
	Target        site.Target
	Docroot       string
	ExtensionPath string
}

// SuffixFetcher obtains the hosting URL suffix for an environment.
type SuffixFetcher interface {
	FetchSuffix(ctx context.Context, req SuffixRequest) (string, error)
}

// Identity is the resolved naming of one run.
type Identity struct {
	SiteName      string
	Docroot       string
	ExtensionPath string
	Suffix        string
	// Domain is SiteName + "." + Suffix, unnormalized.
	Domain string
}

// Resolver ties the resolution steps together.
type Resolver struct {
	Extension string
	Docroot   func(site.Target) string
	Finder    ExtensionFinder
	Fetcher   SuffixFetcher
	Logger    *slog.Logger
}

// Resolve computes the Identity for target, reading site metadata through
// lookup.
func (r *Resolver) Resolve(ctx context.Context, target site.Target, lookup InfoLookup) (Identity, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var info site.Info
	ok, err := lookup.Lookup(ctx, site.InfoVariable, &info)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMissingSiteName, err)
	}
	name := info.SiteName
	if !ok || name == "" {
		return Identity{}, ErrMissingSiteName
	}
	logger.Info("site name", "site_name", name)

	docroot := r.Docroot(target)
	extPath, found, err := r.Finder.Find(ctx, docroot, r.Extension)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s: %v", ErrExtensionNotFound, r.Extension, err)
	}
	if !found {
		return Identity{}, fmt.Errorf("%w: %s under %s", ErrExtensionNotFound, r.Extension, docroot)
	}
	logger.Info("extension location", "extension", r.Extension, "path", extPath)

	suffix, err := r.Fetcher.FetchSuffix(ctx, SuffixRequest{
		Target:        target,
		Docroot:       docroot,
		ExtensionPath: extPath,
	})
	if err != nil {
		if errors.Is(err, ErrSuffixUnavailable) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrSuffixUnavailable, err)
	}

	return Identity{
		SiteName:      name,
		Docroot:       docroot,
		ExtensionPath: extPath,
		Suffix:        suffix,
		Domain:        name + "." + suffix,
	}, nil
}
