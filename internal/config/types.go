package config

// Config represents the complete sitescrub configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Paths       PathsConfig       `yaml:"paths"`
	Database    DatabaseConfig    `yaml:"database"`
	Extension   ExtensionConfig   `yaml:"extension"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Workspace   WorkspaceConfig   `yaml:"workspace"`
	Files       FilesConfig       `yaml:"files"`
	Commands    CommandsConfig    `yaml:"commands"`
	Metrics     MetricsConfig     `yaml:"metrics"`

	// SourceFile is the path the config was loaded from; empty for defaults.
	SourceFile string `yaml:"-"`
}

// LogConfig defines diagnostic logging settings.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// PathsConfig holds per-target path templates.
type PathsConfig struct {
	Docroot   string `yaml:"docroot" validate:"required"`
	Workspace string `yaml:"workspace" validate:"required"`
}

// DatabaseConfig describes how to reach the copied database.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=mysql postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
	// Prefix is prepended to every table name.
	Prefix string `yaml:"prefix" validate:"omitempty,sqlident"`
}

// ExtensionConfig names the companion extension the credentials tool needs.
type ExtensionConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// CredentialsConfig locates the Site Factory shared credentials file.
type CredentialsConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// WorkspaceConfig tunes scratch workspace derivation.
type WorkspaceConfig struct {
	Digest string `yaml:"digest" validate:"required,oneof=md5 blake3"`
}

// FilesConfig maps stream-wrapper schemes to directories. Relative paths are
// resolved against the docroot.
type FilesConfig struct {
	Public    string `yaml:"public"`
	Private   string `yaml:"private"`
	Temporary string `yaml:"temporary"`
}

// CommandsConfig overrides the executables spawned by post-db-copy. Empty
// means the running sitescrub binary.
type CommandsConfig struct {
	Credentials string `yaml:"credentials"`
	Scrub       string `yaml:"scrub"`
}

// MetricsConfig enables the node_exporter textfile output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Defaults returns a Config matching the Site Factory hosting layout.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Paths: PathsConfig{
			Docroot:   "/var/www/html/{site}.{env}/docroot",
			Workspace: "/mnt/tmp/{site}.{env}/drush_tmp_cache",
		},
		Database: DatabaseConfig{
			Driver: "mysql",
			DSN:    "${SITESCRUB_DB_USER}:${SITESCRUB_DB_PASS}@tcp(${SITESCRUB_DB_HOST})/{db_role}",
		},
		Extension: ExtensionConfig{
			Name: "acsf",
		},
		Credentials: CredentialsConfig{
			Path: "/mnt/files/{site}.{env}/nobackup/sf_shared_creds.yaml",
		},
		Workspace: WorkspaceConfig{
			Digest: "md5",
		},
		Files: FilesConfig{
			Public:    "sites/default/files",
			Temporary: "/tmp",
		},
	}
}
