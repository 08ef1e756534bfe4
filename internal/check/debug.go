//go:build !release

package check

// Debug enables DCheck and thread affinity assertions.
const Debug = true
