// Package window provides the windowing layer the renderer starts from: a
// Vulkan-capable window, the instance extensions it needs and the loader entry
// point for the graphics runtime.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Host is a window created for Vulkan rendering.
type Host interface {
	// RequiredInstanceExtensions lists the instance extensions the window
	// system needs to present to this window.
	RequiredInstanceExtensions() []string

	// InstanceProcAddr returns the vkGetInstanceProcAddr entry point.
	InstanceProcAddr() unsafe.Pointer

	// PollEvents drains pending events. It returns false once the window has
	// been asked to close.
	PollEvents() bool

	// Destroy closes the window and shuts the window system down.
	Destroy()
}

type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

func DefaultOptions() Options {
	return Options{
		Title:  "Test Window",
		Width:  800,
		Height: 600,
	}
}

const (
	SDL2 = "sdl2"
	GLFW = "glfw"
)

// New opens a window with the named window system.
func New(system string, options Options) (Host, error) {
	var host Host
	var err error

	switch system {
	case SDL2:
		host, err = NewSDL2(options)
	case GLFW:
		host, err = NewGLFW(options)
	default:
		return nil, errors.Newf("unknown window system %q", system)
	}

	if err != nil {
		return nil, err
	}
	return host, nil
}
