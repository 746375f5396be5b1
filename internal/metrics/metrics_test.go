package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWriteTextfile(t *testing.T) {
	r := NewRecorder("acme", "prod")
	r.ObserveState("RunningPipeline", 1500*time.Millisecond)
	r.ObserveState("RunningPipeline", 500*time.Millisecond)
	r.ObserveHandler("ConfigurationScrub", "ok", 0.25)
	r.Finish(3, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "sitescrub.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `sitescrub_run_exit_code{env="prod",site="acme"} 3`)
	assert.Contains(t, out, `sitescrub_state_duration_seconds{env="prod",site="acme",state="RunningPipeline"} 2`)
	assert.Contains(t, out, `sitescrub_handler_duration_seconds{env="prod",handler="ConfigurationScrub",site="acme",status="ok"} 0.25`)
	assert.Contains(t, out, `sitescrub_last_run_timestamp_seconds{env="prod",site="acme"} 1.7e+09`)
}

func TestRecorderWriteTextfileBadPath(t *testing.T) {
	r := NewRecorder("acme", "prod")
	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
