package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type GLFWWindow struct {
	window *glfw.Window
}

// NewGLFW opens a window with no client API attached, leaving the surface to
// Vulkan.
func NewGLFW(options Options) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if options.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	window, err := glfw.CreateWindow(options.Width, options.Height, options.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw create window")
	}

	return &GLFWWindow{window: window}, nil
}

func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *GLFWWindow) InstanceProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *GLFWWindow) PollEvents() bool {
	glfw.PollEvents()
	return !w.window.ShouldClose()
}

func (w *GLFWWindow) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
}
