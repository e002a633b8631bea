package bootstrap

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
)

// PortabilityEnumerationExtensionName is the instance extension that lets the
// runtime list portability implementations.
const PortabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"

// GraphicsQueuePriority is the priority of the single graphics queue.
const GraphicsQueuePriority float32 = 1.0

// State is a step of the forward-only initialization sequence.
type State int

const (
	Uninitialized State = iota
	InstanceCreated
	DeviceSelected
	LogicalDeviceReady
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case InstanceCreated:
		return "InstanceCreated"
	case DeviceSelected:
		return "DeviceSelected"
	case LogicalDeviceReady:
		return "LogicalDeviceReady"
	case TornDown:
		return "TornDown"
	default:
		return "Unknown"
	}
}

type Options struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version

	// Extensions are the instance extensions to enable: the names the
	// windowing layer requires followed by any the caller adds.
	Extensions []string

	EnumeratePortability bool

	Logger logrus.FieldLogger
}

// DefaultOptions returns the application descriptor used when the caller does
// not name one.
func DefaultOptions() Options {
	return Options{
		ApplicationName:    "Vulkan Application",
		ApplicationVersion: Version{Major: 1},
		EngineName:         "No Engine",
		EngineVersion:      Version{Major: 1},
		APIVersion:         Vulkan1_0,
	}
}

// Context owns one instance, the physical device selected from it and the
// logical device with its graphics queue. It is not safe for concurrent use.
type Context struct {
	ID uuid.UUID

	runtime Runtime
	options Options
	logger  logrus.FieldLogger

	state          State
	instance       Instance
	physicalDevice PhysicalDevice
	graphicsFamily int
	device         Device
	graphicsQueue  Queue
}

func NewContext(rt Runtime, options Options) *Context {
	id := uuid.New()

	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Context{
		ID:             id,
		runtime:        rt,
		options:        options,
		logger:         logger.WithField("context", id.String()),
		graphicsFamily: -1,
	}
}

func (c *Context) State() State                   { return c.state }
func (c *Context) Instance() Instance             { return c.instance }
func (c *Context) PhysicalDevice() PhysicalDevice { return c.physicalDevice }
func (c *Context) Device() Device                 { return c.device }
func (c *Context) GraphicsQueue() Queue           { return c.graphicsQueue }

// GraphicsFamily returns the queue family the graphics queue was taken from,
// or -1 before the logical device exists.
func (c *Context) GraphicsFamily() int { return c.graphicsFamily }

// Init creates the instance, selects a physical device and creates the logical
// device and its graphics queue, in that order. The first failure stops the
// sequence; resources already created are kept until Cleanup.
func (c *Context) Init() error {
	if c.state != Uninitialized {
		return errors.Wrapf(ErrInvalidState, "init called in state %s", c.state)
	}

	steps := []struct {
		name string
		run  func() error
		next State
	}{
		{"createInstance", c.createInstance, InstanceCreated},
		{"pickPhysicalDevice", c.pickPhysicalDevice, DeviceSelected},
		{"createLogicalDevice", c.createLogicalDevice, LogicalDeviceReady},
	}

	for _, step := range steps {
		start := hrtime.Now()
		err := step.run()
		elapsed := hrtime.Since(start)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"step":    step.name,
				"state":   c.state,
				"elapsed": elapsed,
			}).WithError(err).Error("initialization aborted")
			return err
		}

		c.state = step.next
		c.logger.WithFields(logrus.Fields{
			"step":    step.name,
			"state":   c.state,
			"elapsed": elapsed,
		}).Debug("initialization step complete")
	}

	return nil
}

func (c *Context) requestedExtensions() []string {
	extensions := append([]string(nil), c.options.Extensions...)
	if !c.options.EnumeratePortability {
		return extensions
	}

	for _, ext := range extensions {
		if ext == PortabilityEnumerationExtensionName {
			return extensions
		}
	}
	return append(extensions, PortabilityEnumerationExtensionName)
}

func (c *Context) createInstance() error {
	extensions := c.requestedExtensions()

	missing, err := missingInstanceExtensions(c.runtime, extensions)
	if err != nil {
		return markf(err, ErrUnsupportedExtensions, "enumerate instance extensions")
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrUnsupportedExtensions, "missing %s", strings.Join(missing, ", "))
	}

	instance, err := c.runtime.CreateInstance(InstanceCreateInfo{
		ApplicationName:       c.options.ApplicationName,
		ApplicationVersion:    c.options.ApplicationVersion,
		EngineName:            c.options.EngineName,
		EngineVersion:         c.options.EngineVersion,
		APIVersion:            c.options.APIVersion,
		EnabledExtensionNames: extensions,
		EnumeratePortability:  c.options.EnumeratePortability,
	})
	if err != nil {
		return markf(err, ErrInstanceCreationFailed, "create instance")
	}
	if instance == 0 {
		return errors.Wrap(ErrInstanceCreationFailed, "runtime returned a null instance")
	}

	c.instance = instance
	c.logger.WithField("extensions", extensions).Info("instance created")
	return nil
}

func (c *Context) pickPhysicalDevice() error {
	device, err := SelectDevice(c.runtime, c.instance, c.logger)
	if err != nil {
		return err
	}

	c.physicalDevice = device

	fields := logrus.Fields{"device": device}
	if reporter, ok := c.runtime.(PropertiesReporter); ok {
		properties := reporter.PhysicalDeviceProperties(device)
		fields["name"] = properties.Name
		fields["type"] = properties.Type
		fields["apiVersion"] = properties.APIVersion
	}
	c.logger.WithFields(fields).Info("physical device selected")
	return nil
}

func (c *Context) createLogicalDevice() error {
	indices, err := FindQueueFamilies(c.runtime, c.physicalDevice)
	if err != nil {
		return markf(err, ErrLogicalDeviceCreationFailed, "find queue families")
	}
	if !indices.IsComplete() {
		return errors.Wrapf(ErrLogicalDeviceCreationFailed, "device %d lost its graphics queue family", c.physicalDevice)
	}
	graphicsFamily := *indices.GraphicsFamily

	device, err := c.runtime.CreateDevice(c.physicalDevice, DeviceCreateInfo{
		QueueCreateInfos: []DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: graphicsFamily,
				QueuePriorities:  []float32{GraphicsQueuePriority},
			},
		},
	})
	if err != nil {
		return markf(err, ErrLogicalDeviceCreationFailed, "create device")
	}
	if device == 0 {
		return errors.Wrap(ErrLogicalDeviceCreationFailed, "runtime returned a null device")
	}

	c.device = device
	c.graphicsFamily = graphicsFamily
	c.graphicsQueue = c.runtime.GetDeviceQueue(device, graphicsFamily, 0)
	c.logger.WithField("graphicsFamily", graphicsFamily).Info("logical device created")
	return nil
}

// Cleanup destroys the logical device and then the instance. It may be called
// after a failed Init; only what was created is destroyed. Calls after the
// first do nothing.
func (c *Context) Cleanup() {
	if c.state == TornDown {
		return
	}

	if c.device != 0 {
		c.runtime.DestroyDevice(c.device)
		c.device = 0
		c.graphicsQueue = 0
	}

	if c.instance != 0 {
		c.runtime.DestroyInstance(c.instance)
		c.instance = 0
	}

	c.physicalDevice = 0
	c.graphicsFamily = -1
	c.state = TornDown
	c.logger.Debug("context torn down")
}
