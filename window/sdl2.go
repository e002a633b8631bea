package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
)

type SDL2Window struct {
	window *sdl.Window
}

func NewSDL2(options Options) (*SDL2Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "sdl init")
	}

	var flags uint32 = sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN
	if options.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}

	window, err := sdl.CreateWindow(options.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(options.Width), int32(options.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl create window")
	}

	return &SDL2Window{window: window}, nil
}

func (w *SDL2Window) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *SDL2Window) InstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *SDL2Window) PollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			return false
		}
	}
	return true
}

func (w *SDL2Window) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
