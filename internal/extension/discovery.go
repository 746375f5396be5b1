// Package extension locates installed extensions under a docroot by reading
// their .info.yml files, without bootstrapping the site.
package extension

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const infoSuffix = ".info.yml"

// Extension types declared in info files.
const (
	TypeModule = "module"
	TypeTheme  = "theme"
)

// scanRoots are searched in order; an extension found in a later root
// overrides one with the same machine name from an earlier root.
var scanRoots = []string{
	"core/modules",
	"core/themes",
	"profiles",
	"modules",
	"themes",
	"sites/all/modules",
	"sites/all/themes",
}

// skipDirs are never descended into.
var skipDirs = map[string]struct{}{
	"tests":            {},
	"config":           {},
	"node_modules":     {},
	"bower_components": {},
}

// Extension is one discovered extension.
type Extension struct {
	Name string // machine name, from the file name
	Type string // module, theme, profile, ...
	// Path is the extension directory relative to the docroot.
	Path string
	// Pathname is the .info.yml file relative to the docroot.
	Pathname string
	Label    string
}

type info struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Discovery scans one docroot.
type Discovery struct {
	docroot string
	logger  func(level, msg string, args ...any)
}

// NewDiscovery creates a Discovery rooted at docroot. logger may be nil.
func NewDiscovery(docroot string, logger func(level, msg string, args ...any)) *Discovery {
	if logger == nil {
		logger = func(level, msg string, args ...any) {}
	}
	return &Discovery{docroot: filepath.Clean(docroot), logger: logger}
}

// Scan returns every extension of kind typ keyed by machine name.
func (d *Discovery) Scan(typ string) (map[string]Extension, error) {
	info, err := os.Stat(d.docroot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("docroot does not exist: %s", d.docroot)
		}
		return nil, fmt.Errorf("failed to stat docroot %s: %w", d.docroot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docroot is not a directory: %s", d.docroot)
	}

	roots, err := d.roots()
	if err != nil {
		return nil, err
	}

	found := make(map[string]Extension)
	for _, root := range roots {
		abs := filepath.Join(d.docroot, root)
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		err := filepath.WalkDir(abs, func(path string, e fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if e.IsDir() {
				if _, skip := skipDirs[e.Name()]; skip && path != abs {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(e.Name(), infoSuffix) {
				return nil
			}

			ext, err := d.load(path)
			if err != nil {
				d.logger("warn", "failed to read extension info", "path", path, "error", err.Error())
				return nil
			}
			if ext.Type != typ {
				return nil
			}
			if prev, ok := found[ext.Name]; ok {
				d.logger("debug", "extension overridden", "extension", ext.Name, "kept_path", ext.Path, "ignored_path", prev.Path)
			}
			found[ext.Name] = ext
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", abs, err)
		}
	}
	return found, nil
}

// Locate returns the absolute directory of the extension name of kind typ.
func (d *Discovery) Locate(typ, name string) (string, bool, error) {
	all, err := d.Scan(typ)
	if err != nil {
		return "", false, err
	}
	ext, ok := all[name]
	if !ok {
		return "", false, nil
	}
	return filepath.Join(d.docroot, ext.Path), true, nil
}

// roots lists scan roots including every sites/<dir>/modules and
// sites/<dir>/themes, after the shared ones.
func (d *Discovery) roots() ([]string, error) {
	roots := append([]string(nil), scanRoots...)

	entries, err := os.ReadDir(filepath.Join(d.docroot, "sites"))
	if os.IsNotExist(err) {
		return roots, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sites directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "all" {
			continue
		}
		roots = append(roots,
			filepath.Join("sites", e.Name(), "modules"),
			filepath.Join("sites", e.Name(), "themes"),
		)
	}
	return roots, nil
}

func (d *Discovery) load(path string) (Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Extension{}, fmt.Errorf("read: %w", err)
	}
	var in info
	if err := yaml.Unmarshal(data, &in); err != nil {
		return Extension{}, fmt.Errorf("parse YAML: %w", err)
	}
	if in.Type == "" {
		return Extension{}, fmt.Errorf("type is required")
	}

	rel, err := filepath.Rel(d.docroot, path)
	if err != nil {
		return Extension{}, fmt.Errorf("resolve relative path: %w", err)
	}
	return Extension{
		Name:     strings.TrimSuffix(filepath.Base(path), infoSuffix),
		Type:     in.Type,
		Path:     filepath.Dir(rel),
		Pathname: rel,
		Label:    in.Name,
	}, nil
}
