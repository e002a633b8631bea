// Package vkng implements bootstrap.Runtime on top of vkngwrapper's core 1.0
// drivers.
package vkng

import (
	"sort"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/devinit/bootstrap"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

type instanceEntry struct {
	driver          core1_0.CoreInstanceDriver
	physicalDevices []core1_0.PhysicalDevice
}

type deviceEntry struct {
	driver core1_0.CoreDeviceDriver
	queues []core1_0.Queue
}

// Runtime keeps the vkngwrapper drivers behind the opaque bootstrap handles.
// A physical device handle encodes its instance in the upper 32 bits and its
// enumeration slot, plus one, in the lower 32 bits.
type Runtime struct {
	globalDriver core1_0.GlobalDriver
	logger       logrus.FieldLogger

	nextHandle uint64
	instances  map[bootstrap.Instance]*instanceEntry
	devices    map[bootstrap.Device]*deviceEntry
}

var _ bootstrap.Runtime = (*Runtime)(nil)

// New loads the global driver through the vkGetInstanceProcAddr entry point
// supplied by the windowing layer.
func New(procAddr unsafe.Pointer, logger logrus.FieldLogger) (*Runtime, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	globalDriver, err := core.CreateDriverFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan driver")
	}

	return &Runtime{
		globalDriver: globalDriver,
		logger:       logger.WithField("runtime", "vkng"),
		instances:    make(map[bootstrap.Instance]*instanceEntry),
		devices:      make(map[bootstrap.Device]*deviceEntry),
	}, nil
}

func (r *Runtime) handle() uint64 {
	r.nextHandle++
	return r.nextHandle
}

func createVersion(version bootstrap.Version) common.APIVersion {
	return common.CreateVersion(uint32(version.Major), uint32(version.Minor), uint32(version.Patch))
}

func (r *Runtime) EnumerateInstanceExtensions(out []string) (int, error) {
	extensions, result, err := r.globalDriver.AvailableExtensions()
	if err != nil {
		return 0, errors.Wrapf(err, "available extensions (%s)", result)
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)

	if out == nil {
		return len(names), nil
	}
	return copy(out, names), nil
}

func (r *Runtime) CreateInstance(info bootstrap.InstanceCreateInfo) (bootstrap.Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    createVersion(info.ApplicationVersion),
		EngineName:            info.EngineName,
		EngineVersion:         createVersion(info.EngineVersion),
		APIVersion:            createVersion(info.APIVersion),
		EnabledExtensionNames: info.EnabledExtensionNames,
	}

	if info.EnumeratePortability {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	instanceDriver, result, err := r.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return 0, errors.Wrapf(err, "vkCreateInstance (%s)", result)
	}
	r.logger.WithField("result", result).Debug("vkCreateInstance")

	instance := bootstrap.Instance(r.handle())
	r.instances[instance] = &instanceEntry{driver: instanceDriver}
	return instance, nil
}

func (r *Runtime) EnumeratePhysicalDevices(instance bootstrap.Instance, out []bootstrap.PhysicalDevice) (int, error) {
	entry, ok := r.instances[instance]
	if !ok {
		return 0, errors.Newf("unknown instance %d", instance)
	}

	physicalDevices, result, err := entry.driver.EnumeratePhysicalDevices()
	if err != nil {
		return 0, errors.Wrapf(err, "vkEnumeratePhysicalDevices (%s)", result)
	}

	if out == nil {
		return len(physicalDevices), nil
	}

	entry.physicalDevices = physicalDevices
	written := 0
	for slot := range physicalDevices {
		if written == len(out) {
			break
		}
		out[written] = bootstrap.PhysicalDevice(uint64(instance)<<32 | uint64(slot+1))
		written++
	}
	return written, nil
}

func (r *Runtime) physicalDevice(handle bootstrap.PhysicalDevice) (*instanceEntry, core1_0.PhysicalDevice, error) {
	instance := bootstrap.Instance(uint64(handle) >> 32)
	slot := int(uint64(handle)&0xffffffff) - 1

	entry, ok := r.instances[instance]
	if !ok || slot < 0 || slot >= len(entry.physicalDevices) {
		return nil, core1_0.PhysicalDevice{}, errors.Newf("unknown physical device %d", handle)
	}
	return entry, entry.physicalDevices[slot], nil
}

func (r *Runtime) EnumerateQueueFamilies(handle bootstrap.PhysicalDevice, out []bootstrap.QueueFamilyProperties) (int, error) {
	entry, device, err := r.physicalDevice(handle)
	if err != nil {
		return 0, err
	}

	queueFamilies := entry.driver.GetPhysicalDeviceQueueFamilyProperties(device)
	if out == nil {
		return len(queueFamilies), nil
	}

	written := 0
	for _, queueFamily := range queueFamilies {
		if written == len(out) {
			break
		}
		out[written] = bootstrap.QueueFamilyProperties{
			QueueFlags: bootstrap.QueueFlags(queueFamily.QueueFlags),
			QueueCount: int(queueFamily.QueueCount),
		}
		written++
	}
	return written, nil
}

func (r *Runtime) CreateDevice(handle bootstrap.PhysicalDevice, info bootstrap.DeviceCreateInfo) (bootstrap.Device, error) {
	entry, physicalDevice, err := r.physicalDevice(handle)
	if err != nil {
		return 0, err
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueInfo := range info.QueueCreateInfos {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueInfo.QueueFamilyIndex,
			QueuePriorities:  queueInfo.QueuePriorities,
		})
	}

	deviceDriver, result, err := entry.driver.CreateDevice(physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: info.EnabledExtensionNames,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "vkCreateDevice (%s)", result)
	}
	r.logger.WithField("result", result).Debug("vkCreateDevice")

	device := bootstrap.Device(r.handle())
	r.devices[device] = &deviceEntry{driver: deviceDriver}
	return device, nil
}

// GetDeviceQueue returns the zero handle for an unknown device.
func (r *Runtime) GetDeviceQueue(device bootstrap.Device, familyIndex, queueIndex int) bootstrap.Queue {
	entry, ok := r.devices[device]
	if !ok {
		return 0
	}

	entry.queues = append(entry.queues, entry.driver.GetQueue(familyIndex, queueIndex))
	return bootstrap.Queue(uint64(device)<<32 | uint64(len(entry.queues)))
}

func (r *Runtime) DestroyDevice(device bootstrap.Device) {
	entry, ok := r.devices[device]
	if !ok {
		return
	}

	entry.driver.DestroyDevice(nil)
	delete(r.devices, device)
}

func (r *Runtime) DestroyInstance(instance bootstrap.Instance) {
	entry, ok := r.instances[instance]
	if !ok {
		return
	}

	entry.driver.DestroyInstance(nil)
	delete(r.instances, instance)
}
