package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

/*
LogConfiguration is the logger configuration, usually loaded from YAML file:

	defaultLevel: DEBUG
	format: console
	outputPath: stderr
	timeFormat: "15:04:05.0000"
*/
type LogConfiguration struct {
	// one of DEBUG, INFO, WARN, ERROR (case insensitive), INFO when empty
	Level string `yaml:"defaultLevel"`
	// one of text, json, console, ecs. text when empty
	Format string `yaml:"format"`
	// file name or one of the special values stdout, stderr, discard. stderr when empty
	OutputPath string `yaml:"outputPath"`
	// Go time format layout, "none" to not log time at all. Handler default when empty
	TimeFormat string `yaml:"timeFormat"`
	// add source code location of the logging call
	ShowSource bool `yaml:"showSource"`

	// when set overrides OutputPath
	Writer io.Writer `yaml:"-"`
}

// LoadConfiguration decodes YAML logger configuration.
func LoadConfiguration(r io.Reader) (*LogConfiguration, error) {
	cfg := &LogConfiguration{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding logger configuration: %w", err)
	}
	return cfg, nil
}

/*
New creates logger based on the configuration. Nil configuration is treated
as empty configuration, ie INFO level text logger writing to stderr.
*/
func New(cfg *LogConfiguration) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &LogConfiguration{}
	}
	h, err := cfg.Handler()
	if err != nil {
		return nil, fmt.Errorf("creating handler: %w", err)
	}
	return slog.New(h), nil
}

// Handler returns log handler of the configured format.
func (cfg *LogConfiguration) Handler() (slog.Handler, error) {
	out, err := cfg.writer()
	if err != nil {
		return nil, fmt.Errorf("creating writer for log output: %w", err)
	}
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.ShowSource,
		Level:     level,
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatDataAttrAsJSON)
		return slog.NewTextHandler(out, opts), nil
	case "json":
		opts.ReplaceAttr = formatTimeAttr(cfg.TimeFormat)
		return slog.NewJSONHandler(out, opts), nil
	case "ecs":
		opts.ReplaceAttr = formatAttrECS
		return slog.NewJSONHandler(out, opts), nil
	case "console":
		return newConsoleHandler(out, level, cfg.TimeFormat), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func (cfg *LogConfiguration) level() (slog.Level, error) {
	var level slog.Level
	if cfg.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return level, nil
}

func (cfg *LogConfiguration) writer() (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}

	switch strings.ToLower(cfg.OutputPath) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0700); err != nil {
			return nil, fmt.Errorf("creating directory for log file: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, nil
	}
}
