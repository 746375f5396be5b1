// Package doctor checks that a host is ready to scrub a target: the config
// renders, the docroot and companion extension are in place, the credentials
// file is usable and, optionally, the copied database answers. It never
// writes anything.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/credentials"
	"github.com/mattjoyce/sitescrub/internal/extension"
	"github.com/mattjoyce/sitescrub/internal/orchestrator"
	"github.com/mattjoyce/sitescrub/internal/site"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)

// Result holds the outcome of a check run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor checks one target against a loaded config.
type Doctor struct {
	cfg    *config.Config
	target site.Target
	// connector is optional; nil skips the database check.
	connector orchestrator.Connector
}

// New creates a Doctor. connector may be nil.
func New(cfg *config.Config, target site.Target, connector orchestrator.Connector) *Doctor {
	return &Doctor{cfg: cfg, target: target, connector: connector}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate(ctx context.Context) *Result {
	r := &Result{Valid: true}
	vars := config.VarsFor(d.target)

	d.warnMissingEnvVars(r)
	extPath := d.validateDocroot(r, vars)
	d.validateCredentials(r, vars, extPath)
	d.validateCommands(r)
	d.warnPaths(r, vars)
	d.validateDatabase(ctx, r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// warnMissingEnvVars reports ${VAR} references whose variable is unset. In
// the DSN that is fatal; elsewhere it only yields a literal path.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	fields := []struct{ name, value string }{
		{"database.dsn", d.cfg.Database.DSN},
		{"paths.docroot", d.cfg.Paths.Docroot},
		{"paths.workspace", d.cfg.Paths.Workspace},
		{"credentials.path", d.cfg.Credentials.Path},
		{"metrics.textfile", d.cfg.Metrics.Textfile},
	}
	for _, f := range fields {
		for _, m := range envVarRe.FindAllStringSubmatch(f.value, -1) {
			if _, ok := os.LookupEnv(m[1]); ok {
				continue
			}
			msg := fmt.Sprintf("environment variable ${%s} not set", m[1])
			if f.name == "database.dsn" {
				d.addError(r, "env_vars", f.name, msg)
			} else {
				d.addWarning(r, "env_vars", f.name, msg)
			}
		}
	}
}

// validateDocroot checks the docroot and returns the extension directory, or
// "" when it cannot be found.
func (d *Doctor) validateDocroot(r *Result, vars config.Vars) string {
	docroot := d.cfg.DocrootFor(vars)
	info, err := os.Stat(docroot)
	if err != nil || !info.IsDir() {
		d.addError(r, "docroot", "paths.docroot", fmt.Sprintf("docroot %s is not a directory", docroot))
		return ""
	}

	var warnings []string
	disc := extension.NewDiscovery(docroot, func(level, msg string, args ...any) {
		if level == "warn" {
			warnings = append(warnings, strings.TrimSpace(msg+" "+fmt.Sprintln(args...)))
		}
	})
	path, found, err := disc.Locate(extension.TypeModule, d.cfg.Extension.Name)
	for _, w := range warnings {
		d.addWarning(r, "extension", "", w)
	}
	if err != nil {
		d.addError(r, "extension", "extension.name", err.Error())
		return ""
	}
	if !found {
		d.addError(r, "extension", "extension.name",
			fmt.Sprintf("module %q not found under %s", d.cfg.Extension.Name, docroot))
		return ""
	}
	return path
}

func (d *Doctor) validateCredentials(r *Result, vars config.Vars, extPath string) {
	if d.cfg.Commands.Credentials != "" {
		// An external tool owns the credentials file.
		return
	}
	path := d.cfg.CredentialsPathFor(vars)
	_, err := credentials.Issue(path, credentials.Request{
		SiteGroup:     d.target.Group,
		Environment:   d.target.Env,
		ExtensionPath: extPath,
	})
	if err != nil {
		d.addError(r, "credentials", "credentials.path", err.Error())
	}
}

func (d *Doctor) validateCommands(r *Result) {
	for field, exe := range map[string]string{
		"commands.credentials": d.cfg.Commands.Credentials,
		"commands.scrub":       d.cfg.Commands.Scrub,
	} {
		if exe == "" {
			continue
		}
		info, err := os.Stat(exe)
		if err != nil {
			d.addError(r, "commands", field, fmt.Sprintf("%s: %v", exe, err))
			continue
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			d.addError(r, "commands", field, fmt.Sprintf("%s is not executable", exe))
		}
	}
}

func (d *Doctor) warnPaths(r *Result, vars config.Vars) {
	base := d.cfg.WorkspaceBaseFor(vars)
	if parent := existingParent(base); parent == "" {
		d.addWarning(r, "workspace", "paths.workspace", fmt.Sprintf("no existing parent directory for %s", base))
	}

	docroot := d.cfg.DocrootFor(vars)
	if dir := config.FilesDir(d.cfg.Files.Public, docroot, vars); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			d.addWarning(r, "files", "files.public", fmt.Sprintf("%s does not exist; temporary files there cannot be removed", dir))
		}
	}

	if tf := d.cfg.Metrics.Textfile; tf != "" {
		if _, err := os.Stat(filepath.Dir(tf)); err != nil {
			d.addWarning(r, "metrics", "metrics.textfile", fmt.Sprintf("directory of %s does not exist", tf))
		}
	}
}

func (d *Doctor) validateDatabase(ctx context.Context, r *Result) {
	if d.connector == nil {
		return
	}
	sess, err := d.connector.Connect(ctx, d.target)
	if err != nil {
		d.addError(r, "database", "database.dsn", err.Error())
		return
	}
	defer func() { _ = sess.Close() }()

	var info site.Info
	ok, err := sess.Lookup(ctx, site.InfoVariable, &info)
	switch {
	case err != nil:
		d.addError(r, "database", site.InfoVariable, err.Error())
	case !ok || info.SiteName == "":
		d.addError(r, "database", site.InfoVariable, "site_name is missing")
	}
}

// existingParent returns the closest existing ancestor of path, or "".
func existingParent(path string) string {
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
		if next := filepath.Dir(p); next == p {
			return ""
		}
	}
}

// FormatHuman returns a human-readable report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Ready to scrub.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Ready to scrub")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Not ready (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
