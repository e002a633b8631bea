package bootstrap_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/devinit/bootstrap"
	"github.com/vkngwrapper/devinit/bootstrap/bootstraptest"
)

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got %+v", kind, err)
}

func createInstance(t *testing.T, rt *bootstraptest.Runtime) bootstrap.Instance {
	instance, err := rt.CreateInstance(bootstrap.InstanceCreateInfo{})
	require.NoError(t, err)
	return instance
}

func TestSelectDevice_NoDevices(t *testing.T) {
	rt := &bootstraptest.Runtime{}
	logger, _ := test.NewNullLogger()

	_, err := bootstrap.SelectDevice(rt, createInstance(t, rt), logger)
	requireKind(t, err, bootstrap.ErrNoGPUFound)
	require.False(t, errors.Is(err, bootstrap.ErrNoSuitableDevice))
}

func TestSelectDevice_NoneSuitable(t *testing.T) {
	rt := &bootstraptest.Runtime{
		Devices: []bootstraptest.PhysicalDevice{
			bootstraptest.GraphicsDevice("compute", bootstrap.QueueCompute),
			bootstraptest.GraphicsDevice("transfer", bootstrap.QueueTransfer),
			{QueueFamilies: []bootstrap.QueueFamilyProperties{{QueueFlags: bootstrap.QueueGraphics}}},
		},
	}
	logger, _ := test.NewNullLogger()

	_, err := bootstrap.SelectDevice(rt, createInstance(t, rt), logger)
	requireKind(t, err, bootstrap.ErrNoSuitableDevice)
	require.False(t, errors.Is(err, bootstrap.ErrNoGPUFound))
}

func TestSelectDevice_FirstQualifying(t *testing.T) {
	rt := &bootstraptest.Runtime{
		Devices: []bootstraptest.PhysicalDevice{
			bootstraptest.GraphicsDevice("compute only", bootstrap.QueueCompute),
			bootstraptest.GraphicsDevice("integrated", bootstrap.QueueGraphics),
			bootstraptest.GraphicsDevice("discrete", bootstrap.QueueGraphics, bootstrap.QueueCompute),
		},
	}
	logger, _ := test.NewNullLogger()

	device, err := bootstrap.SelectDevice(rt, createInstance(t, rt), logger)
	require.NoError(t, err)
	require.Equal(t, 1, rt.DeviceIndex(device))

	require.Equal(t, []string{
		"CreateInstance",
		"EnumeratePhysicalDevices",
		"EnumeratePhysicalDevices",
		"EnumerateQueueFamilies(0)",
		"EnumerateQueueFamilies(0)",
		"EnumerateQueueFamilies(1)",
		"EnumerateQueueFamilies(1)",
	}, rt.Calls)
}

func TestSelectDevice_SkipsUnreadableDevice(t *testing.T) {
	rt := &bootstraptest.Runtime{
		Devices: []bootstraptest.PhysicalDevice{
			{QueueFamiliesErr: bootstraptest.ErrRejected},
			bootstraptest.GraphicsDevice("gpu", bootstrap.QueueGraphics),
		},
	}
	logger, hook := test.NewNullLogger()

	device, err := bootstrap.SelectDevice(rt, createInstance(t, rt), logger)
	require.NoError(t, err)
	require.Equal(t, 1, rt.DeviceIndex(device))

	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSelectDevice_EnumerationFailure(t *testing.T) {
	rt := &bootstraptest.Runtime{EnumerateDevicesErr: bootstraptest.ErrRejected}
	logger, _ := test.NewNullLogger()

	_, err := bootstrap.SelectDevice(rt, createInstance(t, rt), logger)
	requireKind(t, err, bootstrap.ErrNoGPUFound)
	require.ErrorIs(t, err, bootstraptest.ErrRejected)
}
