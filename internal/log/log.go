package log

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
)

var enabledSections = []string{
	"bindings",
	"resolver",
	"scenario",
	"symbols",
}

var level = new(slog.LevelVar)

var LoggerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(&filteringHandler{underlying: slog.NewTextHandler(os.Stderr, LoggerOpts)})

// SetLevel changes the level of DefaultLogger and every logger derived from it
func SetLevel(l slog.Level) {
	level.Set(l)
}

func init() {
	level.Set(slog.LevelError)
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
	sections   []string
}

func isEnabledSection(name string) bool {
	return slices.ContainsFunc(enabledSections, func(section string) bool {
		return strings.HasPrefix(name, section)
	})
}

func (f filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	// sections attached through With are kept on the handler
	wantSection := len(f.sections) > 0
	record.Attrs(func(attr slog.Attr) bool {
		wantSection = wantSection || attr.Key == "section" && isEnabledSection(attr.Value.String())
		// iterate as long as we have not found our section
		return !wantSection
	})
	if !wantSection {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(attrs))
	sections := slices.Clone(f.sections)

	for _, attr := range attrs {
		if attr.Key == "section" && isEnabledSection(attr.Value.String()) {
			sections = append(sections, attr.Value.String())
		}
		newAttrs = append(newAttrs, attr)
	}
	return &filteringHandler{
		underlying: f.underlying.WithAttrs(newAttrs),
		sections:   sections,
	}
}

func (f filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{
		underlying: f.underlying.WithGroup(name),
		sections:   f.sections,
	}
}
