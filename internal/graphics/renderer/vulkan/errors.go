package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// newError wraps a failed result with the calling function.
func newError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("vulkan error: %w (%d)", vk.Error(ret), ret)
	}
	return fmt.Errorf("vulkan error: %w (%d) in %s", vk.Error(ret), ret, runtime.FuncForPC(pc).Name())
}

// orFatal runs finalizers and raises a contract violation when ret failed.
func orFatal(ret vk.Result, what string, finalizers ...func()) {
	if ret == vk.Success {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	check.Fatalf("%s: %v", what, newError(ret))
}
