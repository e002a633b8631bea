// Package bootstrap performs the one-time setup of a Vulkan execution context:
// it validates the instance extensions the windowing layer needs, creates the
// instance, picks the first physical device with a graphics queue family and
// creates a logical device with one graphics queue.
//
// The package talks to the graphics runtime only through the Runtime
// interface. The vkng and vulkango subpackages provide real runtimes and
// bootstraptest provides a scriptable one for tests.
package bootstrap
