package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCreds(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sf_shared_creds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestIssue(t *testing.T) {
	path := writeCreds(t, `
url: https://www.acme-factory.example.com
username: site_api
password: s3cret
url_suffix: " example.com "
`)
	ext := t.TempDir()

	creds, err := Issue(path, Request{SiteGroup: "acme", Environment: "prod", ExtensionPath: ext})
	require.NoError(t, err)
	assert.Equal(t, "example.com", creds.URLSuffix)
	assert.Equal(t, "acme", creds.SiteGroup)
	assert.Equal(t, "prod", creds.SiteEnvironment)
	assert.Equal(t, "site_api", creds.Username)
}

func TestIssueErrors(t *testing.T) {
	good := writeCreds(t, "url: https://f.example.com\nurl_suffix: example.com\n")

	_, err := Issue(good, Request{SiteGroup: "acme"})
	assert.ErrorIs(t, err, ErrMissingEnvironment)

	_, err = Issue(good, Request{SiteGroup: "acme", Environment: "prod", ExtensionPath: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, ErrExtensionMissing)

	_, err = Issue(filepath.Join(t.TempDir(), "missing.yaml"), Request{SiteGroup: "acme", Environment: "prod"})
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing suffix", body: "url: https://f.example.com\n"},
		{name: "bad suffix", body: "url: https://f.example.com\nurl_suffix: 'not a host'\n"},
		{name: "bad url", body: "url: factory\nurl_suffix: example.com\n"},
		{name: "bad yaml", body: "url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCreds(t, tt.body))
			assert.Error(t, err)
		})
	}
}
