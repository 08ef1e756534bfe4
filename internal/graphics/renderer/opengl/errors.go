package opengl

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// debugChecks turns on glCheckError. It follows the manifest's debug flag.
var debugChecks atomic.Bool

// glCheckError logs every pending GL error under label and reports whether
// there was any.
func glCheckError(label string) bool {
	if !debugChecks.Load() {
		return false
	}
	failed := false
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		slog.Error("GL error", "op", label, "code", errorName(code))
		failed = true
	}
	return failed
}
