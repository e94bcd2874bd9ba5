package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/incr/internal/ui/output"
	"go.trai.ch/incr/internal/ui/style"
)

// levelFormat is the icon and color of the records of one level.
type levelFormat struct {
	icon  string
	color lipgloss.Color
}

func formatFor(level slog.Level) levelFormat {
	switch {
	case level >= slog.LevelError:
		return levelFormat{icon: style.Cross, color: style.Red}
	case level >= slog.LevelWarn:
		return levelFormat{icon: style.Warning, color: style.Yellow}
	default:
		return levelFormat{color: style.Slate}
	}
}

// consoleHandler writes each record as a single colored block:
// the level icon, the message and then the attributes as key=value.
// Clones created by WithAttrs and WithGroup share the output.
type consoleHandler struct {
	mu    *sync.Mutex
	out   *termenv.Output
	level slog.Leveler

	group string
	attrs string
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: output.New(w), level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic // slog.Handler requires slog.Record by value
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	format := formatFor(r.Level)

	var b strings.Builder
	if format.icon != "" {
		b.WriteString(format.icon + " ")
	}
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.group, attr)
		return true
	})

	line := h.out.String(b.String()).Foreground(h.out.Color(string(format.color))).String() + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, attr := range attrs {
		writeAttr(&b, h.group, attr)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = qualify(h.group, name)
	return &clone
}

func writeAttr(b *strings.Builder, group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, nested := range attr.Value.Group() {
			writeAttr(b, qualify(group, attr.Key), nested)
		}
		return
	}
	b.WriteString(" " + qualify(group, attr.Key) + "=" + attr.Value.String())
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
