package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/rs/zerolog"
)

type (
	/*
		consoleHandler is slog handler which renders records in human friendly
		format using zerolog console writer.
	*/
	consoleHandler struct {
		log    zerolog.Logger
		level  slog.Leveler
		fields []field
		group  string
	}

	field struct {
		prefix string
		attr   slog.Attr
	}
)

func newConsoleHandler(out io.Writer, level slog.Leveler, timeFormat string) *consoleHandler {
	cw := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		// colors only when writing to the console
		NoColor: out != os.Stdout && out != os.Stderr,
	}
	switch timeFormat {
	case "":
		cw.TimeFormat = "15:04:05.0000"
	case "none":
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return &consoleHandler{
		log:   zerolog.New(cw),
		level: level,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.log.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}
	if !r.Time.IsZero() {
		ev = ev.Time(zerolog.TimestampFieldName, r.Time)
	}
	for _, f := range h.fields {
		addField(ev, f.prefix, f.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		addField(ev, h.group, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.fields = slices.Clip(h.fields)
	for _, a := range attrs {
		c.fields = append(c.fields, field{prefix: h.group, attr: a})
	}
	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.group = h.group + name + "."
	return &c
}

func addField(ev *zerolog.Event, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := prefix + a.Key
	v := a.Value
	switch v.Kind() {
	case slog.KindGroup:
		if a.Key != "" {
			prefix = key + "."
		}
		for _, ga := range v.Group() {
			addField(ev, prefix, ga)
		}
	case slog.KindString:
		ev.Str(key, v.String())
	case slog.KindInt64:
		ev.Int64(key, v.Int64())
	case slog.KindUint64:
		ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		ev.Float64(key, v.Float64())
	case slog.KindBool:
		ev.Bool(key, v.Bool())
	case slog.KindDuration:
		ev.Dur(key, v.Duration())
	case slog.KindTime:
		ev.Time(key, v.Time())
	default:
		if err, ok := v.Any().(error); ok {
			ev.AnErr(key, err)
		} else {
			ev.Interface(key, v.Any())
		}
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l >= slog.LevelError:
		return zerolog.ErrorLevel
	case l >= slog.LevelWarn:
		return zerolog.WarnLevel
	case l >= slog.LevelInfo:
		return zerolog.InfoLevel
	case l >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

var _ slog.Handler = (*consoleHandler)(nil)
