package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/config"
	"github.com/mattjoyce/sitescrub/internal/identity"
)

// baseEnv is the environment spawned tools inherit. The run id is set per
// command, and a --config path is passed on so children read the same file.
func baseEnv(configPath string) []string {
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, identity.RunIDEnv+"=") {
			continue
		}
		if configPath != "" && strings.HasPrefix(kv, config.EnvConfigPath+"=") {
			continue
		}
		out = append(out, kv)
	}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			configPath = abs
		}
		out = append(out, config.EnvConfigPath+"="+configPath)
	}
	return out
}
