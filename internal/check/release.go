//go:build release

package check

const Debug = false
