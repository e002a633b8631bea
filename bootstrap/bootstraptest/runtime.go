// Package bootstraptest provides an in-memory bootstrap.Runtime that records
// every call it receives.
package bootstraptest

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/devinit/bootstrap"
)

// ErrRejected is a generic runtime failure for scripting error paths.
var ErrRejected = errors.New("runtime rejected the request")

// PhysicalDevice scripts one enumerated device.
type PhysicalDevice struct {
	Properties    bootstrap.DeviceProperties
	QueueFamilies []bootstrap.QueueFamilyProperties

	// QueueFamiliesErr is returned when the device's families are enumerated.
	QueueFamiliesErr error
}

// GraphicsDevice returns a device named name whose queue families carry the
// given flags, each with one queue.
func GraphicsDevice(name string, flags ...bootstrap.QueueFlags) PhysicalDevice {
	device := PhysicalDevice{
		Properties: bootstrap.DeviceProperties{Name: name, Type: bootstrap.DeviceTypeDiscreteGPU},
	}
	for _, flag := range flags {
		device.QueueFamilies = append(device.QueueFamilies, bootstrap.QueueFamilyProperties{
			QueueFlags: flag,
			QueueCount: 1,
		})
	}
	return device
}

// Runtime is a scripted bootstrap.Runtime. Fill in the exported fields before
// use; Calls and Violations are written by the runtime.
type Runtime struct {
	Extensions []string
	Devices    []PhysicalDevice

	ExtensionsErr       error
	CreateInstanceErr   error
	EnumerateDevicesErr error
	CreateDeviceErr     error

	// Calls lists every runtime call in order, e.g. "CreateDevice(2)".
	Calls []string
	// Violations lists lifetime rule breaks, such as destroying an instance
	// while a device created from it is alive.
	Violations []string

	InstanceInfos []bootstrap.InstanceCreateInfo
	DeviceInfos   []bootstrap.DeviceCreateInfo

	nextHandle     uint64
	liveInstances  map[bootstrap.Instance]struct{}
	liveDevices    map[bootstrap.Device]bootstrap.PhysicalDevice
	enumeratedPhys map[bootstrap.PhysicalDevice]int
}

var _ bootstrap.Runtime = (*Runtime)(nil)
var _ bootstrap.PropertiesReporter = (*Runtime)(nil)

func (r *Runtime) record(format string, args ...interface{}) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Runtime) violation(format string, args ...interface{}) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

func (r *Runtime) handle() uint64 {
	if r.liveInstances == nil {
		r.liveInstances = make(map[bootstrap.Instance]struct{})
		r.liveDevices = make(map[bootstrap.Device]bootstrap.PhysicalDevice)
		r.enumeratedPhys = make(map[bootstrap.PhysicalDevice]int)
	}
	r.nextHandle++
	return r.nextHandle
}

// CallNames returns Calls with their arguments stripped.
func (r *Runtime) CallNames() []string {
	names := make([]string, 0, len(r.Calls))
	for _, call := range r.Calls {
		if idx := strings.IndexByte(call, '('); idx >= 0 {
			call = call[:idx]
		}
		names = append(names, call)
	}
	return names
}

// Called reports whether a call with the given name was made.
func (r *Runtime) Called(name string) bool {
	for _, call := range r.CallNames() {
		if call == name {
			return true
		}
	}
	return false
}

// DeviceIndex returns the position in Devices of an enumerated handle, or -1.
func (r *Runtime) DeviceIndex(device bootstrap.PhysicalDevice) int {
	idx, ok := r.enumeratedPhys[device]
	if !ok {
		return -1
	}
	return idx
}

func (r *Runtime) EnumerateInstanceExtensions(out []string) (int, error) {
	r.record("EnumerateInstanceExtensions")
	if r.ExtensionsErr != nil {
		return 0, r.ExtensionsErr
	}
	if out == nil {
		return len(r.Extensions), nil
	}
	return copy(out, r.Extensions), nil
}

func (r *Runtime) CreateInstance(info bootstrap.InstanceCreateInfo) (bootstrap.Instance, error) {
	r.record("CreateInstance")
	r.InstanceInfos = append(r.InstanceInfos, info)
	if r.CreateInstanceErr != nil {
		return 0, r.CreateInstanceErr
	}

	instance := bootstrap.Instance(r.handle())
	r.liveInstances[instance] = struct{}{}
	return instance, nil
}

func (r *Runtime) EnumeratePhysicalDevices(instance bootstrap.Instance, out []bootstrap.PhysicalDevice) (int, error) {
	r.record("EnumeratePhysicalDevices")
	if _, live := r.liveInstances[instance]; !live {
		r.violation("EnumeratePhysicalDevices on dead instance %d", instance)
	}
	if r.EnumerateDevicesErr != nil {
		return 0, r.EnumerateDevicesErr
	}
	if out == nil {
		return len(r.Devices), nil
	}

	written := 0
	for idx := range r.Devices {
		if written == len(out) {
			break
		}
		handle := bootstrap.PhysicalDevice(r.handle())
		r.enumeratedPhys[handle] = idx
		out[written] = handle
		written++
	}
	return written, nil
}

func (r *Runtime) device(handle bootstrap.PhysicalDevice) (PhysicalDevice, int, bool) {
	idx, ok := r.enumeratedPhys[handle]
	if !ok {
		return PhysicalDevice{}, -1, false
	}
	return r.Devices[idx], idx, true
}

func (r *Runtime) EnumerateQueueFamilies(handle bootstrap.PhysicalDevice, out []bootstrap.QueueFamilyProperties) (int, error) {
	device, idx, ok := r.device(handle)
	r.record("EnumerateQueueFamilies(%d)", idx)
	if !ok {
		return 0, errors.Newf("unknown physical device %d", handle)
	}
	if device.QueueFamiliesErr != nil {
		return 0, device.QueueFamiliesErr
	}
	if out == nil {
		return len(device.QueueFamilies), nil
	}
	return copy(out, device.QueueFamilies), nil
}

func (r *Runtime) PhysicalDeviceProperties(handle bootstrap.PhysicalDevice) bootstrap.DeviceProperties {
	device, _, _ := r.device(handle)
	return device.Properties
}

func (r *Runtime) CreateDevice(handle bootstrap.PhysicalDevice, info bootstrap.DeviceCreateInfo) (bootstrap.Device, error) {
	_, idx, ok := r.device(handle)
	r.record("CreateDevice(%d)", idx)
	r.DeviceInfos = append(r.DeviceInfos, info)
	if !ok {
		return 0, errors.Newf("unknown physical device %d", handle)
	}
	if r.CreateDeviceErr != nil {
		return 0, r.CreateDeviceErr
	}

	device := bootstrap.Device(r.handle())
	r.liveDevices[device] = handle
	return device, nil
}

func (r *Runtime) GetDeviceQueue(device bootstrap.Device, familyIndex, queueIndex int) bootstrap.Queue {
	r.record("GetDeviceQueue(%d,%d)", familyIndex, queueIndex)
	if _, live := r.liveDevices[device]; !live {
		r.violation("GetDeviceQueue on dead device %d", device)
		return 0
	}
	return bootstrap.Queue(r.handle())
}

func (r *Runtime) DestroyDevice(device bootstrap.Device) {
	r.record("DestroyDevice")
	if _, live := r.liveDevices[device]; !live {
		r.violation("DestroyDevice on dead device %d", device)
		return
	}
	delete(r.liveDevices, device)
}

func (r *Runtime) DestroyInstance(instance bootstrap.Instance) {
	r.record("DestroyInstance")
	if _, live := r.liveInstances[instance]; !live {
		r.violation("DestroyInstance on dead instance %d", instance)
		return
	}
	if len(r.liveDevices) > 0 {
		r.violation("DestroyInstance with %d live devices", len(r.liveDevices))
	}
	delete(r.liveInstances, instance)
}

// Live reports how many instances and devices have not been destroyed.
func (r *Runtime) Live() (instances, devices int) {
	return len(r.liveInstances), len(r.liveDevices)
}
