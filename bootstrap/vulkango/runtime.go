// Package vulkango implements bootstrap.Runtime directly on the vulkan-go
// binding. Its enumeration calls map one to one onto the native
// count-then-fill entry points.
package vulkango

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/devinit/bootstrap"
	vk "github.com/vulkan-go/vulkan"
)

// instanceCreateEnumeratePortability is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
const instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x00000001

type deviceEntry struct {
	device vk.Device
	queues []vk.Queue
}

type Runtime struct {
	logger logrus.FieldLogger

	instances       []vk.Instance
	physicalDevices []vk.PhysicalDevice
	devices         []*deviceEntry
}

var _ bootstrap.Runtime = (*Runtime)(nil)
var _ bootstrap.PropertiesReporter = (*Runtime)(nil)

// New points vulkan-go at the vkGetInstanceProcAddr entry supplied by the
// windowing layer. A nil procAddr loads the system Vulkan library instead.
func New(procAddr unsafe.Pointer, logger logrus.FieldLogger) (*Runtime, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init")
	}

	return &Runtime{logger: logger.WithField("runtime", "vulkan-go")}, nil
}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, safeString(s))
	}
	return out
}

func makeVersion(version bootstrap.Version) uint32 {
	return vk.MakeVersion(version.Major, version.Minor, version.Patch)
}

func (r *Runtime) EnumerateInstanceExtensions(out []string) (int, error) {
	var count uint32
	if out == nil {
		if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
			return 0, errors.Wrap(err, "vkEnumerateInstanceExtensionProperties")
		}
		return int(count), nil
	}

	count = uint32(len(out))
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return 0, errors.Wrap(err, "vkEnumerateInstanceExtensionProperties")
	}

	for i := 0; i < int(count); i++ {
		properties[i].Deref()
		out[i] = vk.ToString(properties[i].ExtensionName[:])
	}
	return int(count), nil
}

func (r *Runtime) CreateInstance(info bootstrap.InstanceCreateInfo) (bootstrap.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(info.ApplicationName),
		ApplicationVersion: makeVersion(info.ApplicationVersion),
		PEngineName:        safeString(info.EngineName),
		EngineVersion:      makeVersion(info.EngineVersion),
		ApiVersion:         makeVersion(info.APIVersion),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.EnabledExtensionNames)),
		PpEnabledExtensionNames: safeStrings(info.EnabledExtensionNames),
	}
	if info.EnumeratePortability {
		instanceInfo.Flags |= instanceCreateEnumeratePortability
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return 0, errors.Wrap(err, "vkCreateInstance")
	}
	vk.InitInstance(instance)
	r.logger.WithField("extensions", len(info.EnabledExtensionNames)).Debug("vkCreateInstance")

	r.instances = append(r.instances, instance)
	return bootstrap.Instance(len(r.instances)), nil
}

func (r *Runtime) instance(handle bootstrap.Instance) (vk.Instance, bool) {
	idx := int(handle) - 1
	if idx < 0 || idx >= len(r.instances) || r.instances[idx] == nil {
		return nil, false
	}
	return r.instances[idx], true
}

func (r *Runtime) EnumeratePhysicalDevices(handle bootstrap.Instance, out []bootstrap.PhysicalDevice) (int, error) {
	instance, ok := r.instance(handle)
	if !ok {
		return 0, errors.Newf("unknown instance %d", handle)
	}

	var count uint32
	if out == nil {
		if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
			return 0, errors.Wrap(err, "vkEnumeratePhysicalDevices")
		}
		return int(count), nil
	}

	count = uint32(len(out))
	physicalDevices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, physicalDevices)); err != nil {
		return 0, errors.Wrap(err, "vkEnumeratePhysicalDevices")
	}

	for i := 0; i < int(count); i++ {
		r.physicalDevices = append(r.physicalDevices, physicalDevices[i])
		out[i] = bootstrap.PhysicalDevice(len(r.physicalDevices))
	}
	return int(count), nil
}

func (r *Runtime) physicalDevice(handle bootstrap.PhysicalDevice) (vk.PhysicalDevice, bool) {
	idx := int(handle) - 1
	if idx < 0 || idx >= len(r.physicalDevices) {
		return nil, false
	}
	return r.physicalDevices[idx], true
}

func (r *Runtime) EnumerateQueueFamilies(handle bootstrap.PhysicalDevice, out []bootstrap.QueueFamilyProperties) (int, error) {
	physicalDevice, ok := r.physicalDevice(handle)
	if !ok {
		return 0, errors.Newf("unknown physical device %d", handle)
	}

	var count uint32
	if out == nil {
		vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, nil)
		return int(count), nil
	}

	count = uint32(len(out))
	queueFamilies := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &count, queueFamilies)

	for i := 0; i < int(count); i++ {
		queueFamilies[i].Deref()
		out[i] = bootstrap.QueueFamilyProperties{
			QueueFlags: bootstrap.QueueFlags(queueFamilies[i].QueueFlags),
			QueueCount: int(queueFamilies[i].QueueCount),
		}
	}
	return int(count), nil
}

func (r *Runtime) PhysicalDeviceProperties(handle bootstrap.PhysicalDevice) bootstrap.DeviceProperties {
	physicalDevice, ok := r.physicalDevice(handle)
	if !ok {
		return bootstrap.DeviceProperties{}
	}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physicalDevice, &properties)
	properties.Deref()

	deviceType := bootstrap.DeviceTypeOther
	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		deviceType = bootstrap.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		deviceType = bootstrap.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		deviceType = bootstrap.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		deviceType = bootstrap.DeviceTypeCPU
	}

	return bootstrap.DeviceProperties{
		Name:     vk.ToString(properties.DeviceName[:]),
		Type:     deviceType,
		VendorID: properties.VendorID,
		DeviceID: properties.DeviceID,
		APIVersion: bootstrap.Version{
			Major: int(properties.ApiVersion >> 22),
			Minor: int((properties.ApiVersion >> 12) & 0x3ff),
			Patch: int(properties.ApiVersion & 0xfff),
		},
	}
}

func (r *Runtime) CreateDevice(handle bootstrap.PhysicalDevice, info bootstrap.DeviceCreateInfo) (bootstrap.Device, error) {
	physicalDevice, ok := r.physicalDevice(handle)
	if !ok {
		return 0, errors.Newf("unknown physical device %d", handle)
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(info.QueueCreateInfos))
	for i, queueInfo := range info.QueueCreateInfos {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(queueInfo.QueueFamilyIndex),
			QueueCount:       uint32(len(queueInfo.QueuePriorities)),
			PQueuePriorities: queueInfo.QueuePriorities,
		}
	}

	deviceInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(info.EnabledExtensionNames)),
		PpEnabledExtensionNames: safeStrings(info.EnabledExtensionNames),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(physicalDevice, &deviceInfo, nil, &device)); err != nil {
		return 0, errors.Wrap(err, "vkCreateDevice")
	}
	r.logger.WithField("queueCreateInfos", len(queueCreateInfos)).Debug("vkCreateDevice")

	r.devices = append(r.devices, &deviceEntry{device: device})
	return bootstrap.Device(len(r.devices)), nil
}

func (r *Runtime) deviceEntry(handle bootstrap.Device) (*deviceEntry, bool) {
	idx := int(handle) - 1
	if idx < 0 || idx >= len(r.devices) || r.devices[idx] == nil {
		return nil, false
	}
	return r.devices[idx], true
}

// GetDeviceQueue returns the zero handle for an unknown device.
func (r *Runtime) GetDeviceQueue(handle bootstrap.Device, familyIndex, queueIndex int) bootstrap.Queue {
	entry, ok := r.deviceEntry(handle)
	if !ok {
		return 0
	}

	var queue vk.Queue
	vk.GetDeviceQueue(entry.device, uint32(familyIndex), uint32(queueIndex), &queue)
	entry.queues = append(entry.queues, queue)
	return bootstrap.Queue(uint64(handle)<<32 | uint64(len(entry.queues)))
}

func (r *Runtime) DestroyDevice(handle bootstrap.Device) {
	entry, ok := r.deviceEntry(handle)
	if !ok {
		return
	}

	vk.DestroyDevice(entry.device, nil)
	r.devices[int(handle)-1] = nil
}

func (r *Runtime) DestroyInstance(handle bootstrap.Instance) {
	instance, ok := r.instance(handle)
	if !ok {
		return
	}

	vk.DestroyInstance(instance, nil)
	r.instances[int(handle)-1] = nil
	r.physicalDevices = nil
}
