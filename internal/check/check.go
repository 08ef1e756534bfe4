// Package check reports broken programming contracts.
//
// A contract violation is logged at error level and then raised as a panic
// carrying a *Violation, so tests can assert on it and the application loop
// can turn it into a diagnostic exit.
package check

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
)

// Violation is the panic value raised by Fatalf and the failing checks.
type Violation struct {
	Msg    string
	Caller string
}

func (v *Violation) Error() string {
	if v.Caller == "" {
		return v.Msg
	}
	return v.Msg + " (" + v.Caller + ")"
}

// Fatalf logs the formatted message and panics with a *Violation.
func Fatalf(format string, args ...any) {
	fatal(3, fmt.Sprintf(format, args...))
}

// Check panics through Fatalf when cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		fatal(3, fmt.Sprintf(format, args...))
	}
}

// DCheck is Check in debug builds and a no-op in release builds.
func DCheck(cond bool, format string, args ...any) {
	if Debug && !cond {
		fatal(3, fmt.Sprintf(format, args...))
	}
}

// Unimplemented is fatal for capabilities a backend does not provide.
func Unimplemented(what string) {
	fatal(3, "Unimplemented: "+what)
}

// Warnf logs a recoverable problem and returns.
func Warnf(format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...), "caller", caller(2))
}

// Warn logs through Warnf when cond is false. It reports whether cond held.
func Warn(cond bool, format string, args ...any) bool {
	if !cond {
		slog.Warn(fmt.Sprintf(format, args...), "caller", caller(2))
	}
	return cond
}

func fatal(skip int, msg string) {
	at := caller(skip)
	slog.Error(msg, "caller", at)
	panic(&Violation{Msg: msg, Caller: at})
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
