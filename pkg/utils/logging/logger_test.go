package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger_WritesJSONFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	logger, path, err := InitLogger(Options{Env: "test", Dir: dir})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_"))
	assert.Equal(t, dir, filepath.Dir(path))

	logger.Debug("crew generated", zap.String("duty_id", "duty-1"))
	_ = logger.Sync() // stderr cannot be synced when it is a pipe

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &entry))
	assert.Equal(t, "crew generated", entry["msg"])
	assert.Equal(t, "duty-1", entry["duty_id"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}
