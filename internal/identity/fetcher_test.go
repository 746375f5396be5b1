package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/mattjoyce/sitescrub/internal/dispatch"
	dispatchmocks "github.com/mattjoyce/sitescrub/internal/dispatch/mocks"
	"github.com/mattjoyce/sitescrub/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var req = identity.SuffixRequest{
	Target:        target,
	Docroot:       "/var/www/html/acme.prod/docroot",
	ExtensionPath: "/var/www/html/acme.prod/docroot/modules/contrib/acsf",
}

func TestCommandFetcherBuildsCommand(t *testing.T) {
	f := &identity.CommandFetcher{Executable: "/usr/local/bin/sitescrub", RunID: "run-1"}
	cmd := f.Command(req)

	assert.Equal(t, "/usr/local/bin/sitescrub", cmd.Path)
	assert.Equal(t, []string{"factory-creds", "-r", req.Docroot, "-i", req.ExtensionPath, "--pipe"}, cmd.Args)
	assert.Equal(t, []string{"AH_SITE_GROUP=acme", "AH_SITE_ENVIRONMENT=prod", "SITESCRUB_RUN_ID=run-1"}, cmd.Env)
}

func TestCommandFetcherParsesSuffix(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := dispatchmocks.NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(dispatch.Result{
		Stdout: []string{"", `  {"site_group":"acme","url_suffix":"example.com"}`},
	}, nil)

	suffix, err := (&identity.CommandFetcher{Runner: runner, Executable: "creds"}).FetchSuffix(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "example.com", suffix)
}

func TestCommandFetcherKeepsPaddedSuffix(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := dispatchmocks.NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(dispatch.Result{
		Stdout: []string{`{"url_suffix":" example.com "}`},
	}, nil)

	suffix, err := (&identity.CommandFetcher{Runner: runner, Executable: "creds"}).FetchSuffix(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, " example.com ", suffix)
}

func TestCommandFetcherFailures(t *testing.T) {
	tests := []struct {
		name string
		res  dispatch.Result
		err  error
	}{
		{name: "start error", err: errors.New("exec: not found")},
		{name: "non-zero exit", res: dispatch.Result{Stdout: []string{`{"url_suffix":"example.com"}`}, ExitCode: 2}},
		{name: "not json", res: dispatch.Result{Stdout: []string{"Drush command terminated abnormally."}}},
		{name: "missing field", res: dispatch.Result{Stdout: []string{`{"site_group":"acme"}`}}},
		{name: "empty field", res: dispatch.Result{Stdout: []string{`{"url_suffix":""}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runner := dispatchmocks.NewMockRunner(ctrl)
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(tt.res, tt.err)

			_, err := (&identity.CommandFetcher{Runner: runner, Executable: "creds"}).FetchSuffix(context.Background(), req)
			assert.ErrorIs(t, err, identity.ErrSuffixUnavailable)
		})
	}
}
