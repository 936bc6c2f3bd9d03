package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/alphabill-fees/types"
)

func TestLoadConfiguration(t *testing.T) {
	cfg, err := LoadConfiguration(strings.NewReader(`
defaultLevel: DEBUG
format: console
outputPath: stdout
timeFormat: none
showSource: true
`))
	require.NoError(t, err)
	require.Equal(t, &LogConfiguration{Level: "DEBUG", Format: "console", OutputPath: "stdout", TimeFormat: "none", ShowSource: true}, cfg)

	cfg, err = LoadConfiguration(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, &LogConfiguration{}, cfg)

	_, err = LoadConfiguration(strings.NewReader("defaultLevel: [1, 2"))
	require.ErrorContains(t, err, "decoding logger configuration")
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		require.True(t, l.Enabled(context.Background(), slog.LevelInfo))
		require.False(t, l.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("invalid level", func(t *testing.T) {
		l, err := New(&LogConfiguration{Level: "LOUD", OutputPath: "discard"})
		require.ErrorContains(t, err, `invalid log level "LOUD"`)
		require.Nil(t, l)
	})

	t.Run("invalid format", func(t *testing.T) {
		l, err := New(&LogConfiguration{Format: "xml", OutputPath: "discard"})
		require.ErrorContains(t, err, `unknown log format "xml"`)
		require.Nil(t, l)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&LogConfiguration{Level: "debug", Writer: buf, TimeFormat: "none"})
		require.NoError(t, err)
		l.Debug("charged", Account(types.AccountID{1}), Data(map[string]int{"fee": 2}))
		require.Equal(t, `level=DEBUG msg=charged account=01 data="{\"fee\":2}"`+"\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&LogConfiguration{Format: "json", Writer: buf, TimeFormat: "none"})
		require.NoError(t, err)
		l.Warn("rejected", Error(errors.New("insufficient balance")), Round(7))
		var m map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
		require.Equal(t, map[string]any{"level": "WARN", "msg": "rejected", "err": "insufficient balance", "round": float64(7)}, m)
	})

	t.Run("ecs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&LogConfiguration{Format: "ecs", Writer: buf})
		require.NoError(t, err)
		l.Info("hello", Error(errors.New("oops")))
		var m map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
		require.Equal(t, "hello", m["message"])
		require.Equal(t, map[string]any{"message": "oops"}, m["error"])
	})

	t.Run("console", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l, err := New(&LogConfiguration{Format: "console", Writer: buf, TimeFormat: "none"})
		require.NoError(t, err)
		l.With(Module("fees")).WithGroup("fee").Info("charged", slog.Uint64("amount", 2), slog.Group("call", slog.String("method", "transfer")))
		out := buf.String()
		require.Contains(t, out, "INF")
		require.Contains(t, out, "charged")
		require.Contains(t, out, "module=fees")
		require.Contains(t, out, "fee.amount=2")
		require.Contains(t, out, "fee.call.method=transfer")

		buf.Reset()
		l.Debug("not logged")
		require.Empty(t, buf.String())
	})

	t.Run("log file", func(t *testing.T) {
		fn := filepath.Join(t.TempDir(), "logs", "fees.log")
		l, err := New(&LogConfiguration{OutputPath: fn})
		require.NoError(t, err)
		l.Info("to file")
		require.FileExists(t, fn)
	})
}
