package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/devinit/bootstrap"
	"github.com/vkngwrapper/devinit/bootstrap/vkng"
	"github.com/vkngwrapper/devinit/bootstrap/vulkango"
	"github.com/vkngwrapper/devinit/config"
	"github.com/vkngwrapper/devinit/window"
)

type DeviceInitApplication struct {
	config config.Config
	logger *logrus.Logger

	window  window.Host
	context *bootstrap.Context
}

func (app *DeviceInitApplication) Run() error {
	err := app.initWindow()
	if err != nil {
		return err
	}
	defer app.window.Destroy()

	err = app.initVulkan()
	if err != nil {
		if app.context != nil {
			app.context.Cleanup()
		}
		return err
	}
	defer app.cleanup()

	app.mainLoop()
	return nil
}

func (app *DeviceInitApplication) initWindow() error {
	var err error
	app.window, err = window.New(app.config.Windowing, window.Options{
		Title:     app.config.Window.Title,
		Width:     app.config.Window.Width,
		Height:    app.config.Window.Height,
		Resizable: app.config.Window.Resizable,
	})
	return err
}

func (app *DeviceInitApplication) createRuntime() (bootstrap.Runtime, error) {
	switch app.config.Backend {
	case config.BackendVulkanGo:
		return vulkango.New(app.window.InstanceProcAddr(), app.logger)
	case config.BackendVkng:
		return vkng.New(app.window.InstanceProcAddr(), app.logger)
	default:
		return nil, errors.Newf("unknown backend %q", app.config.Backend)
	}
}

func (app *DeviceInitApplication) initVulkan() error {
	rt, err := app.createRuntime()
	if err != nil {
		return err
	}

	options := app.config.ContextOptions(app.window.RequiredInstanceExtensions(), app.logger)
	app.context = bootstrap.NewContext(rt, options)
	return app.context.Init()
}

func (app *DeviceInitApplication) mainLoop() {
	for app.window.PollEvents() {
	}
}

func (app *DeviceInitApplication) cleanup() {
	app.context.Cleanup()
}

func parseArgs(args []string) (envFiles []string) {
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--env":
			if i+1 >= len(args) {
				fmt.Println("\n--env needs a file name")
				os.Exit(1)
			}
			i++
			envFiles = append(envFiles, args[i])
		case "--help", "-h":
			fmt.Println("\nOptions")
			fmt.Println("\t--env <file>")
			fmt.Println("\t\tLoad DEVINIT_* settings from a .env file")
			os.Exit(0)
		default:
			fmt.Printf("\nUnrecognized option: %s\n", arg)
			fmt.Println("\nUse --help or -h for option list.")
			os.Exit(1)
		}
	}
	return envFiles
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	os.Exit(1)
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.Load(parseArgs(os.Args[1:])...)
	if err != nil {
		fail(err)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	app := &DeviceInitApplication{
		config: cfg,
		logger: logger,
	}

	err = app.Run()
	if err != nil {
		logger.Debugf("%+v", err)
		fail(err)
	}
}
