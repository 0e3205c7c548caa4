package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")
	t.Setenv("REDDIT_USER_AGENT", "ddscanner-test/1.0")
}

func TestLoadDefaultsWithCredentials(t *testing.T) {
	setCredentials(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Sweep.ScoreThreshold)
	assert.Equal(t, 1000, cfg.Sweep.PostLimit)
	assert.Equal(t, []string{"new", "hot", "top"}, cfg.Sweep.Orderings)
	assert.Contains(t, cfg.Sweep.Subreddits, "wallstreetbets")
	assert.Contains(t, cfg.Sweep.FlairsToIgnore, "broad market news")
	assert.Equal(t, "dd_log.jsonl", cfg.Store.Path)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Endpoint)
	assert.Equal(t, 4096, cfg.Ollama.Options.NumCtx)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}

func TestLoadFailsWithoutCredentials(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")
	t.Setenv("REDDIT_USER_AGENT", "")

	_, err := Load("")
	require.Error(t, err, "missing feed credentials must be fatal at startup")
}

func TestLoadRejectsUnknownOrdering(t *testing.T) {
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweep:\n  orderings: [new, controversial]\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err, "an unrecognized ordering is a configuration error")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  cronExpression: \"0 6 * * *\"\n  timezone: Mars/Olympus\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	setCredentials(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
sweep:
  subreddits: [pennystocks]
  orderings: [rising]
  postLimit: 50
  scoreThreshold: 35
ollama:
  model: mistral
store:
  path: /tmp/signals.jsonl
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"pennystocks"}, cfg.Sweep.Subreddits)
	assert.Equal(t, []string{"rising"}, cfg.Sweep.Orderings)
	assert.Equal(t, 50, cfg.Sweep.PostLimit)
	assert.Equal(t, 35, cfg.Sweep.ScoreThreshold)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, "/tmp/signals.jsonl", cfg.Store.Path)
	// Untouched sections keep defaults.
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestEnvOverridesApplied(t *testing.T) {
	setCredentials(t)
	t.Setenv("OLLAMA_MODEL", "llama3:70b")
	t.Setenv("OLLAMA_ENDPOINT", "http://gpu-box:11434")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "llama3:70b", cfg.Ollama.Model)
	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.Endpoint)
	assert.Equal(t, "id", cfg.Reddit.ClientID)
}
