package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// SelectDevice returns the first physical device, in enumeration order, that
// has a graphics-capable queue family. Devices are not scored against each
// other.
//
// It fails with ErrNoGPUFound when the instance reports no devices and with
// ErrNoSuitableDevice when none of them qualifies. A device whose queue
// families cannot be read is logged and skipped.
func SelectDevice(rt Runtime, instance Instance, logger logrus.FieldLogger) (PhysicalDevice, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	physicalDevices, err := Enumerate(func(out []PhysicalDevice) (int, error) {
		return rt.EnumeratePhysicalDevices(instance, out)
	})
	if err != nil {
		return 0, markf(err, ErrNoGPUFound, "enumerate physical devices")
	}

	if len(physicalDevices) == 0 {
		return 0, errors.WithStack(ErrNoGPUFound)
	}

	for _, device := range physicalDevices {
		if isDeviceSuitable(rt, device, logger) {
			return device, nil
		}
	}

	return 0, errors.Wrapf(ErrNoSuitableDevice, "%d devices checked", len(physicalDevices))
}

func isDeviceSuitable(rt Runtime, device PhysicalDevice, logger logrus.FieldLogger) bool {
	indices, err := FindQueueFamilies(rt, device)
	if err != nil {
		logger.WithError(err).WithField("device", device).Warn("could not read queue families")
		return false
	}

	return indices.IsComplete()
}
