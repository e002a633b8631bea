package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/devinit/bootstrap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.Equal(t, "Vulkan Application", cfg.ApplicationName)
	require.Equal(t, "No Engine", cfg.EngineName)
	require.Equal(t, bootstrap.Vulkan1_0, cfg.APIVersion)
	require.Equal(t, "Test Window", cfg.Window.Title)
	require.Equal(t, 800, cfg.Window.Width)
	require.Equal(t, 600, cfg.Window.Height)
	require.False(t, cfg.Window.Resizable)
	require.Equal(t, WindowingGLFW, cfg.Windowing)
	require.Equal(t, BackendVkng, cfg.Backend)
	require.Empty(t, cfg.Extensions)
	require.False(t, cfg.Portability)
	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEVINIT_APP_NAME", "Sample")
	t.Setenv("DEVINIT_APP_VERSION", "2.1.3")
	t.Setenv("DEVINIT_ENGINE_NAME", "Engine")
	t.Setenv("DEVINIT_ENGINE_VERSION", "0.4")
	t.Setenv("DEVINIT_API_VERSION", "1.2.0")
	t.Setenv("DEVINIT_WINDOW_TITLE", "Sample Window")
	t.Setenv("DEVINIT_WINDOW_WIDTH", "1280")
	t.Setenv("DEVINIT_WINDOW_HEIGHT", "720")
	t.Setenv("DEVINIT_WINDOW_RESIZABLE", "true")
	t.Setenv("DEVINIT_WINDOWING", "sdl2")
	t.Setenv("DEVINIT_BACKEND", "vulkan-go")
	t.Setenv("DEVINIT_PORTABILITY", "1")
	t.Setenv("DEVINIT_EXTENSIONS", " VK_EXT_debug_utils, ,VK_KHR_get_physical_device_properties2 ")
	t.Setenv("DEVINIT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Sample", cfg.ApplicationName)
	require.Equal(t, bootstrap.Version{Major: 2, Minor: 1, Patch: 3}, cfg.ApplicationVersion)
	require.Equal(t, "Engine", cfg.EngineName)
	require.Equal(t, bootstrap.Version{Minor: 4}, cfg.EngineVersion)
	require.Equal(t, bootstrap.Vulkan1_2, cfg.APIVersion)
	require.Equal(t, WindowConfig{Title: "Sample Window", Width: 1280, Height: 720, Resizable: true}, cfg.Window)
	require.Equal(t, WindowingSDL2, cfg.Windowing)
	require.Equal(t, BackendVulkanGo, cfg.Backend)
	require.True(t, cfg.Portability)
	require.Equal(t, []string{"VK_EXT_debug_utils", "VK_KHR_get_physical_device_properties2"}, cfg.Extensions)
	require.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"DEVINIT_APP_VERSION":      "one",
		"DEVINIT_API_VERSION":      "1.x.0",
		"DEVINIT_WINDOW_WIDTH":     "wide",
		"DEVINIT_WINDOW_HEIGHT":    "0",
		"DEVINIT_WINDOW_RESIZABLE": "maybe",
		"DEVINIT_PORTABILITY":      "sometimes",
		"DEVINIT_WINDOWING":        "x11",
		"DEVINIT_BACKEND":          "moltenvk",
		"DEVINIT_LOG_LEVEL":        "loud",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devinit.env")
	require.NoError(t, os.WriteFile(path, []byte("DEVINIT_APP_NAME=From File\nDEVINIT_WINDOW_WIDTH=1024\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DEVINIT_APP_NAME")
		os.Unsetenv("DEVINIT_WINDOW_WIDTH")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From File", cfg.ApplicationName)
	require.Equal(t, 1024, cfg.Window.Width)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestContextOptions(t *testing.T) {
	cfg := Default()
	cfg.ApplicationName = "Sample"
	cfg.Extensions = []string{"VK_EXT_debug_utils"}
	cfg.Portability = true

	logger, _ := test.NewNullLogger()
	windowExtensions := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
	options := cfg.ContextOptions(windowExtensions, logger)

	require.Equal(t, "Sample", options.ApplicationName)
	require.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_utils"}, options.Extensions)
	require.True(t, options.EnumeratePortability)
	require.Equal(t, logger, options.Logger)
	require.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, windowExtensions)
}
