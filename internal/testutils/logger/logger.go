/*
Package logger contains loggers for tests.
*/
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/alphabill-org/alphabill-fees/logger"
)

/*
New returns logger for test t on debug level. The output is written to the
test log, so it is shown only when the test fails or -v flag is used.
*/
func New(t testing.TB) *slog.Logger {
	return NewLvl(t, slog.LevelDebug)
}

// NewLvl returns logger for test t on given level.
func NewLvl(t testing.TB, level slog.Level) *slog.Logger {
	l, err := logger.New(&logger.LogConfiguration{
		Level:      level.String(),
		Format:     env("AB_TEST_LOG_FORMAT", "console"),
		TimeFormat: "15:04:05.0000",
		Writer:     testLogWriter{t},
	})
	if err != nil {
		t.Fatalf("creating test logger: %v", err)
	}
	return l
}

/*
LoggerBuilder returns logger factory for test t.
*/
func LoggerBuilder(t testing.TB) func(*logger.LogConfiguration) (*slog.Logger, error) {
	return func(*logger.LogConfiguration) (*slog.Logger, error) {
		return New(t), nil
	}
}

// NOP returns logger which discards everything.
func NOP() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type testLogWriter struct {
	t testing.TB
}

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func env(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}
