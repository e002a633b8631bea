package bootstrap

import "github.com/cockroachdb/errors"

// Failure kinds reported by Context.Init. Test for them with errors.Is from
// github.com/cockroachdb/errors, which also matches marked errors; the
// runtime's own error, when there is one, stays in the chain.
var (
	ErrUnsupportedExtensions       = errors.New("instance does not support required extensions")
	ErrInstanceCreationFailed      = errors.New("failed to create a vulkan instance")
	ErrNoGPUFound                  = errors.New("can't find GPUs that support vulkan")
	ErrNoSuitableDevice            = errors.New("can't find suitable graphics queue families")
	ErrLogicalDeviceCreationFailed = errors.New("failed to create a logical device")

	ErrInvalidState = errors.New("context is not in the expected state")
)

// markf wraps a runtime error with a message and marks it with a failure kind.
func markf(err error, kind error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}
