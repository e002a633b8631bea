package bootstrap

import "github.com/cockroachdb/errors"

// QueueFamilyIndices holds the queue families chosen on a physical device. A
// nil field means no qualifying family was found.
type QueueFamilyIndices struct {
	GraphicsFamily *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil
}

// FirstGraphicsFamily returns the index of the first family with at least one
// queue and the graphics bit set. Later families are never considered once a
// match is found.
func FirstGraphicsFamily(families []QueueFamilyProperties) QueueFamilyIndices {
	indices := QueueFamilyIndices{}

	for queueFamilyIdx, queueFamily := range families {
		if queueFamily.QueueCount > 0 && (queueFamily.QueueFlags&QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}

// FindQueueFamilies enumerates the queue families of device and picks the
// graphics family. An incomplete result is not an error.
func FindQueueFamilies(rt Runtime, device PhysicalDevice) (QueueFamilyIndices, error) {
	families, err := Enumerate(func(out []QueueFamilyProperties) (int, error) {
		return rt.EnumerateQueueFamilies(device, out)
	})
	if err != nil {
		return QueueFamilyIndices{}, errors.Wrapf(err, "enumerate queue families of device %d", device)
	}

	return FirstGraphicsFamily(families), nil
}
