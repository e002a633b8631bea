package bootstrap

import "fmt"

// Instance identifies one live connection to the graphics runtime. The zero
// value is the null handle.
type Instance uint64

// PhysicalDevice identifies an accelerator enumerated from an Instance. It is
// owned by the runtime and is never destroyed by callers.
type PhysicalDevice uint64

// Device identifies a logical device created from a PhysicalDevice.
type Device uint64

// Queue identifies a queue retrieved from a Device. It is valid only while the
// owning Device is alive.
type Queue uint64

// QueueFlags is the capability bit-set reported for a queue family.
type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x00000001
	QueueCompute       QueueFlags = 0x00000002
	QueueTransfer      QueueFlags = 0x00000004
	QueueSparseBinding QueueFlags = 0x00000008
)

var queueFlagNames = []struct {
	flag QueueFlags
	name string
}{
	{QueueGraphics, "Graphics"},
	{QueueCompute, "Compute"},
	{QueueTransfer, "Transfer"},
	{QueueSparseBinding, "SparseBinding"},
}

func (f QueueFlags) String() string {
	if f == 0 {
		return "None"
	}

	var str string
	remaining := f
	for _, entry := range queueFlagNames {
		if f&entry.flag == 0 {
			continue
		}
		if str != "" {
			str += "|"
		}
		str += entry.name
		remaining &^= entry.flag
	}

	if remaining != 0 {
		if str != "" {
			str += "|"
		}
		str += fmt.Sprintf("0x%x", uint32(remaining))
	}
	return str
}

// QueueFamilyProperties describes one queue family exposed by a physical device.
type QueueFamilyProperties struct {
	QueueFlags QueueFlags
	QueueCount int
}

// DeviceType classifies a physical device. It is reported for logging only.
type DeviceType int

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated GPU"
	case DeviceTypeDiscreteGPU:
		return "Discrete GPU"
	case DeviceTypeVirtualGPU:
		return "Virtual GPU"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "Other"
	}
}

// DeviceProperties are descriptive properties of a physical device.
type DeviceProperties struct {
	Name       string
	Type       DeviceType
	VendorID   uint32
	DeviceID   uint32
	APIVersion Version
}

type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion Version
	EngineName         string
	EngineVersion      Version
	APIVersion         Version

	EnabledExtensionNames []string

	// EnumeratePortability asks the runtime to also list portability
	// (non-conformant) implementations.
	EnumeratePortability bool
}

type DeviceQueueCreateInfo struct {
	QueueFamilyIndex int
	QueuePriorities  []float32
}

// DeviceCreateInfo requests a logical device. Runtimes enable an empty
// feature set.
type DeviceCreateInfo struct {
	QueueCreateInfos      []DeviceQueueCreateInfo
	EnabledExtensionNames []string
}

// Runtime is the graphics runtime surface used during initialization. Every
// call is synchronous.
//
// The Enumerate* calls follow the count-then-fill protocol: a nil out slice
// returns the number of available entries, a sized out slice is filled and the
// number of entries written is returned. Use Enumerate to drive them.
type Runtime interface {
	EnumerateInstanceExtensions(out []string) (int, error)
	CreateInstance(info InstanceCreateInfo) (Instance, error)
	EnumeratePhysicalDevices(instance Instance, out []PhysicalDevice) (int, error)
	EnumerateQueueFamilies(device PhysicalDevice, out []QueueFamilyProperties) (int, error)
	CreateDevice(device PhysicalDevice, info DeviceCreateInfo) (Device, error)
	GetDeviceQueue(device Device, familyIndex, queueIndex int) Queue
	DestroyDevice(device Device)
	DestroyInstance(instance Instance)
}

// PropertiesReporter is implemented by runtimes that can describe a physical
// device.
type PropertiesReporter interface {
	PhysicalDeviceProperties(device PhysicalDevice) DeviceProperties
}
