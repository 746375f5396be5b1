package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/site"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no --config
// flag is given.
const EnvConfigPath = "SITESCRUB_CONFIG"

// SystemConfigPath is the last location checked before falling back to defaults.
const SystemConfigPath = "/etc/sitescrub/config.yaml"

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads configuration from path on top of Defaults and validates it.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}
	cfg.SourceFile = absPath

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Resolve loads the config named by flagPath, $SITESCRUB_CONFIG or the system
// location, in that order. With none present the defaults are used.
func Resolve(flagPath string) (*Config, error) {
	if strings.TrimSpace(flagPath) != "" {
		return Load(flagPath)
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return Load(p)
	}
	if _, err := os.Stat(SystemConfigPath); err == nil {
		return Load(SystemConfigPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", SystemConfigPath, err)
	}

	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid default configuration: %w", err)
	}
	return cfg, nil
}

// Vars are the placeholder values substituted into path and DSN templates.
type Vars struct {
	Site   string
	Env    string
	DBRole string
	Domain string
}

// VarsFor returns the template variables for a scrub target.
func VarsFor(t site.Target) Vars {
	return Vars{Site: t.Group, Env: t.Env, DBRole: t.DBRole}
}

// Expand substitutes ${ENV} references and {site}, {env}, {db_role},
// {domain} placeholders in tmpl.
func Expand(tmpl string, v Vars) string {
	out := interpolateEnv(tmpl)
	return strings.NewReplacer(
		"{site}", v.Site,
		"{env}", v.Env,
		"{db_role}", v.DBRole,
		"{domain}", v.Domain,
	).Replace(out)
}

// DocrootFor returns the docroot of the target's hosting environment.
func (c *Config) DocrootFor(v Vars) string {
	return filepath.Clean(Expand(c.Paths.Docroot, v))
}

// WorkspaceBaseFor returns the directory under which scratch workspaces for
// the target are created.
func (c *Config) WorkspaceBaseFor(v Vars) string {
	return filepath.Clean(Expand(c.Paths.Workspace, v))
}

// CredentialsPathFor returns the shared credentials file for the target.
func (c *Config) CredentialsPathFor(v Vars) string {
	return filepath.Clean(Expand(c.Credentials.Path, v))
}

// DSNFor renders the database DSN. Unset environment references are an error
// so a half-rendered DSN never reaches the driver.
func (c *Config) DSNFor(v Vars) (string, error) {
	dsn := Expand(c.Database.DSN, v)
	if m := envVarPattern.FindStringSubmatch(dsn); len(m) > 1 {
		return "", fmt.Errorf("database.dsn: environment variable ${%s} is not set", m[1])
	}
	return dsn, nil
}

// FilesDir resolves a files.* entry: relative paths are taken from docroot,
// empty stays empty.
func FilesDir(entry, docroot string, v Vars) string {
	entry = strings.TrimSpace(Expand(entry, v))
	if entry == "" {
		return ""
	}
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(docroot, entry)
}

func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		// Extract variable name from ${VAR}
		varName := envVarPattern.FindStringSubmatch(match)[1]

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		// If not found, leave the placeholder (DSNFor rejects it)
		return match
	})
}
