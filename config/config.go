// Package config reads the program configuration from the environment and
// optional .env files.
package config

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/devinit/bootstrap"
)

const prefix = "DEVINIT_"

const (
	BackendVkng     = "vkng"
	BackendVulkanGo = "vulkan-go"

	WindowingSDL2 = "sdl2"
	WindowingGLFW = "glfw"
)

type WindowConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

type Config struct {
	ApplicationName    string
	ApplicationVersion bootstrap.Version
	EngineName         string
	EngineVersion      bootstrap.Version
	APIVersion         bootstrap.Version

	Window    WindowConfig
	Windowing string
	Backend   string

	// Extensions are enabled in addition to the ones the window system needs.
	Extensions  []string
	Portability bool

	LogLevel logrus.Level
}

// Default returns the configuration used when no keys are set.
func Default() Config {
	options := bootstrap.DefaultOptions()
	return Config{
		ApplicationName:    options.ApplicationName,
		ApplicationVersion: options.ApplicationVersion,
		EngineName:         options.EngineName,
		EngineVersion:      options.EngineVersion,
		APIVersion:         options.APIVersion,
		Window: WindowConfig{
			Title:  "Test Window",
			Width:  800,
			Height: 600,
		},
		Windowing: WindowingGLFW,
		Backend:   BackendVkng,
		LogLevel:  logrus.InfoLevel,
	}
}

// ContextOptions converts the configuration into bootstrap options. The
// window system's extensions come first.
func (c Config) ContextOptions(windowExtensions []string, logger logrus.FieldLogger) bootstrap.Options {
	extensions := append([]string(nil), windowExtensions...)
	extensions = append(extensions, c.Extensions...)

	return bootstrap.Options{
		ApplicationName:      c.ApplicationName,
		ApplicationVersion:   c.ApplicationVersion,
		EngineName:           c.EngineName,
		EngineVersion:        c.EngineVersion,
		APIVersion:           c.APIVersion,
		Extensions:           extensions,
		EnumeratePortability: c.Portability,
		Logger:               logger,
	}
}

// Load reads the given .env files, if any, into the environment and builds a
// Config from the DEVINIT_* keys. Keys already set in the environment win over
// the files.
func Load(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, errors.Wrap(err, "load env files")
		}
	}
	envy.Reload()

	cfg := Default()
	var err error

	cfg.ApplicationName = get("APP_NAME", cfg.ApplicationName)
	cfg.EngineName = get("ENGINE_NAME", cfg.EngineName)
	cfg.Window.Title = get("WINDOW_TITLE", cfg.Window.Title)

	if cfg.ApplicationVersion, err = getVersion("APP_VERSION", cfg.ApplicationVersion); err != nil {
		return Config{}, err
	}
	if cfg.EngineVersion, err = getVersion("ENGINE_VERSION", cfg.EngineVersion); err != nil {
		return Config{}, err
	}
	if cfg.APIVersion, err = getVersion("API_VERSION", cfg.APIVersion); err != nil {
		return Config{}, err
	}

	if cfg.Window.Width, err = getSize("WINDOW_WIDTH", cfg.Window.Width); err != nil {
		return Config{}, err
	}
	if cfg.Window.Height, err = getSize("WINDOW_HEIGHT", cfg.Window.Height); err != nil {
		return Config{}, err
	}
	if cfg.Window.Resizable, err = getBool("WINDOW_RESIZABLE", cfg.Window.Resizable); err != nil {
		return Config{}, err
	}
	if cfg.Portability, err = getBool("PORTABILITY", cfg.Portability); err != nil {
		return Config{}, err
	}

	cfg.Windowing = get("WINDOWING", cfg.Windowing)
	if cfg.Windowing != WindowingSDL2 && cfg.Windowing != WindowingGLFW {
		return Config{}, errors.Newf("%sWINDOWING: unknown window system %q", prefix, cfg.Windowing)
	}

	cfg.Backend = get("BACKEND", cfg.Backend)
	if cfg.Backend != BackendVkng && cfg.Backend != BackendVulkanGo {
		return Config{}, errors.Newf("%sBACKEND: unknown backend %q", prefix, cfg.Backend)
	}

	for _, ext := range strings.Split(get("EXTENSIONS", ""), ",") {
		ext = strings.TrimSpace(ext)
		if ext != "" {
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}

	if level := get("LOG_LEVEL", ""); level != "" {
		if cfg.LogLevel, err = logrus.ParseLevel(level); err != nil {
			return Config{}, errors.Wrapf(err, "%sLOG_LEVEL", prefix)
		}
	}

	return cfg, nil
}

func get(key, fallback string) string {
	return envy.Get(prefix+key, fallback)
}

func getVersion(key string, fallback bootstrap.Version) (bootstrap.Version, error) {
	value := get(key, "")
	if value == "" {
		return fallback, nil
	}

	version, err := semver.NewVersion(value)
	if err != nil {
		return bootstrap.Version{}, errors.Wrapf(err, "%s%s", prefix, key)
	}

	return bootstrap.Version{
		Major: int(version.Major()),
		Minor: int(version.Minor()),
		Patch: int(version.Patch()),
	}, nil
}

func getSize(key string, fallback int) (int, error) {
	value := get(key, "")
	if value == "" {
		return fallback, nil
	}

	size, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s%s", prefix, key)
	}
	if size <= 0 {
		return 0, errors.Newf("%s%s: size must be positive, got %d", prefix, key, size)
	}
	return size, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := get(key, "")
	if value == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "%s%s", prefix, key)
	}
	return b, nil
}
