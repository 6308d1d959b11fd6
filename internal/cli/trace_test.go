package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithDB executes the pass scenario with persistence and returns the
// database path.
func runWithDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "traces.db")
	_, err := execute(t, "run", filepath.Join("testdata", "scenarios"), "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestTrace_ListChannels(t *testing.T) {
	dbPath := runWithDB(t)

	out, err := execute(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "chan-1")
}

func TestTrace_ByChannel(t *testing.T) {
	dbPath := runWithDB(t)

	out, err := execute(t, "trace", "--db", dbPath, "--channel", "chan-1")
	require.NoError(t, err)

	assert.Contains(t, out, "post")
	assert.Contains(t, out, "deliver")
	assert.Contains(t, out, "ack")
	assert.Contains(t, out, "Events: 3, Posts: 1, Delivered: 1, Dropped: 0, Latched: false")
}

func TestTrace_ByScenarioJSON(t *testing.T) {
	dbPath := runWithDB(t)

	out, err := execute(t, "trace", "--db", dbPath, "--scenario", "cli-pass", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result TraceResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Len(t, result.Events, 3)
	assert.Equal(t, 1, result.Stats.Posts)
	assert.False(t, result.Stats.Latched)
}

func TestTrace_ChannelAndScenarioExclusive(t *testing.T) {
	dbPath := runWithDB(t)

	_, err := execute(t, "trace", "--db", dbPath, "--channel", "chan-1", "--scenario", "cli-pass")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestTrace_NoEventsFound(t *testing.T) {
	dbPath := runWithDB(t)

	_, err := execute(t, "trace", "--db", dbPath, "--channel", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
