package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)
	ctxLog := FromContext(ctx)
	ctxLog.Info().Str("stage", "load").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["message"])
	require.Equal(t, "load", entry["stage"])
}

func TestFromContextWithoutLogger(t *testing.T) {
	log := FromContext(context.Background())
	require.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := WithFields(NewWithWriter(&buf), map[string]interface{}{"run_id": "abc", "rows": 3})
	log.Info().Msg("done")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "abc", entry["run_id"])
	require.Equal(t, float64(3), entry["rows"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, lvl)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestOpenWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	log, closer, err := Open("debug", path)
	require.NoError(t, err)
	log.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"to file"`)
}
