// Package credentials reads the Site Factory shared credentials file for an
// environment and turns it into the JSON the identity resolver consumes.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/sitescrub/internal/protocol"
)

var (
	// ErrMissingEnvironment is returned when the site group or environment
	// is not set.
	ErrMissingEnvironment = errors.New("AH_SITE_GROUP and AH_SITE_ENVIRONMENT must be set")
	ErrExtensionMissing   = errors.New("extension path does not exist")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// File is the shared credentials file written by the factory for one
// environment.
type File struct {
	URL       string `yaml:"url" validate:"required,url"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	URLSuffix string `yaml:"url_suffix" validate:"required,hostname_rfc1123"`
}

// Request identifies the environment asking for credentials.
type Request struct {
	SiteGroup     string
	Environment   string
	Docroot       string
	ExtensionPath string
}

// Load reads and validates the credentials file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	f.URLSuffix = strings.TrimSpace(f.URLSuffix)

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	return &f, nil
}

// Issue loads the credentials for req from path.
func Issue(path string, req Request) (*protocol.Credentials, error) {
	if strings.TrimSpace(req.SiteGroup) == "" || strings.TrimSpace(req.Environment) == "" {
		return nil, ErrMissingEnvironment
	}
	if req.ExtensionPath != "" {
		info, err := os.Stat(req.ExtensionPath)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrExtensionMissing, req.ExtensionPath)
		}
	}

	f, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &protocol.Credentials{
		SiteGroup:       req.SiteGroup,
		SiteEnvironment: req.Environment,
		URL:             f.URL,
		Username:        f.Username,
		Password:        f.Password,
		URLSuffix:       f.URLSuffix,
	}, nil
}
