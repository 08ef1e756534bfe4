// Package logx configures the process-wide slog logger.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity selected by the user. Messages at or above it
// are shown.
var UserLevel = new(slog.LevelVar)

func init() {
	UserLevel.Set(slog.LevelWarn)
}

// LevelFromFlags maps command line verbosity flags to a level. The flags are
// evaluated in order, so vv wins over q.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ParseLevel accepts debug, info, warn and error. Unknown names yield warn.
func ParseLevel(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// SetDefaultLogger installs a colored text handler writing to stderr as the
// default slog logger at the given level.
func SetDefaultLogger(level slog.Level) {
	UserLevel.Set(level)
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// Handler prefixes each record with a colored level tag and delegates the
// attribute formatting to slog.TextHandler.
type Handler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	inner slog.Handler
}

// NewHandler returns a Handler writing to w. Colors are dropped when w is
// not a terminal.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	out := termenv.NewOutput(w)
	return &Handler{
		out: out,
		mu:  &sync.Mutex{},
		inner: slog.NewTextHandler(out, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 && a.Key == slog.LevelKey {
					return slog.Attr{}
				}
				return a
			},
		}),
	}
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.inner.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.out, h.tag(r.Level)+" "); err != nil {
		return err
	}
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, mu: h.mu, inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, mu: h.mu, inner: h.inner.WithGroup(name)}
}

func (h *Handler) tag(l slog.Level) string {
	s := h.out.String(l.String())
	switch {
	case l >= slog.LevelError:
		s = s.Foreground(termenv.ANSIBrightRed).Bold()
	case l >= slog.LevelWarn:
		s = s.Foreground(termenv.ANSIYellow)
	case l >= slog.LevelInfo:
		s = s.Foreground(termenv.ANSICyan)
	default:
		s = s.Faint()
	}
	return s.String()
}
