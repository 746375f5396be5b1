package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/sitescrub/internal/site"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: /data/{site}.{env}/{db_role}.db
  prefix: dr_
workspace:
  digest: blake3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "dr_", cfg.Database.Prefix)
	assert.Equal(t, "blake3", cfg.Workspace.Digest)
	// Untouched sections keep their defaults.
	assert.Equal(t, "acsf", cfg.Extension.Name)
	assert.Equal(t, "/var/www/html/{site}.{env}/docroot", cfg.Paths.Docroot)
	assert.Equal(t, path, cfg.SourceFile)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "driver", body: "database:\n  driver: oracle\n", want: "database.driver"},
		{name: "digest", body: "workspace:\n  digest: sha1\n", want: "workspace.digest"},
		{name: "prefix", body: "database:\n  prefix: \"bad-prefix\"\n", want: "database.prefix"},
		{name: "log format", body: "log:\n  format: xml\n", want: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestResolvePrefersFlagThenEnv(t *testing.T) {
	flagPath := writeConfig(t, "extension:\n  name: from_flag\n")
	envPath := writeConfig(t, "extension:\n  name: from_env\n")
	t.Setenv(EnvConfigPath, envPath)

	cfg, err := Resolve(flagPath)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.Extension.Name)

	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Extension.Name)
}

func TestExpandPlaceholdersAndEnv(t *testing.T) {
	t.Setenv("SITESCRUB_TEST_HOST", "db.internal:3306")
	v := VarsFor(site.Target{Group: "acme", Env: "prod", DBRole: "replica01"})
	v.Domain = "acmesite.example.com"

	got := Expand("${SITESCRUB_TEST_HOST}/{site}/{env}/{db_role}/{domain}", v)
	assert.Equal(t, "db.internal:3306/acme/prod/replica01/acmesite.example.com", got)
}

func TestTargetPaths(t *testing.T) {
	cfg := Defaults()
	v := VarsFor(site.Target{Group: "acme", Env: "prod", DBRole: "replica01"})

	assert.Equal(t, "/var/www/html/acme.prod/docroot", cfg.DocrootFor(v))
	assert.Equal(t, "/mnt/tmp/acme.prod/drush_tmp_cache", cfg.WorkspaceBaseFor(v))
	assert.Equal(t, "/mnt/files/acme.prod/nobackup/sf_shared_creds.yaml", cfg.CredentialsPathFor(v))
}

func TestDSNForRejectsUnsetEnv(t *testing.T) {
	cfg := Defaults()
	cfg.Database.DSN = "${SITESCRUB_TEST_UNSET_VAR}@tcp(localhost)/{db_role}"
	_, err := cfg.DSNFor(Vars{DBRole: "replica01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SITESCRUB_TEST_UNSET_VAR")

	t.Setenv("SITESCRUB_TEST_UNSET_VAR", "scrub:secret")
	dsn, err := cfg.DSNFor(Vars{DBRole: "replica01"})
	require.NoError(t, err)
	assert.Equal(t, "scrub:secret@tcp(localhost)/replica01", dsn)
}

func TestFilesDir(t *testing.T) {
	v := Vars{Site: "acme", Env: "prod"}
	assert.Equal(t, "/docroot/sites/default/files", FilesDir("sites/default/files", "/docroot", v))
	assert.Equal(t, "/mnt/files/acme.prod/private", FilesDir("/mnt/files/{site}.{env}/private", "/docroot", v))
	assert.Empty(t, FilesDir("  ", "/docroot", v))
}

func TestDefaultsValidate(t *testing.T) {
	assert.NoError(t, Validate(Defaults()))
}
