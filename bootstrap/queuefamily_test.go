package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/devinit/bootstrap"
	"github.com/vkngwrapper/devinit/bootstrap/bootstraptest"
)

func TestFirstGraphicsFamily_Position(t *testing.T) {
	other := bootstrap.QueueFamilyProperties{QueueFlags: bootstrap.QueueTransfer, QueueCount: 2}
	graphics := bootstrap.QueueFamilyProperties{QueueFlags: bootstrap.QueueGraphics | bootstrap.QueueCompute, QueueCount: 1}

	for k := 0; k < 4; k++ {
		families := make([]bootstrap.QueueFamilyProperties, 0, k+2)
		for i := 0; i < k; i++ {
			families = append(families, other)
		}
		families = append(families, graphics, graphics)

		indices := bootstrap.FirstGraphicsFamily(families)
		require.True(t, indices.IsComplete())
		require.Equal(t, k, *indices.GraphicsFamily)
	}
}

func TestFirstGraphicsFamily_FirstMatchNotBest(t *testing.T) {
	families := []bootstrap.QueueFamilyProperties{
		{QueueFlags: bootstrap.QueueGraphics | bootstrap.QueueCompute | bootstrap.QueueTransfer, QueueCount: 1},
		{QueueFlags: bootstrap.QueueGraphics, QueueCount: 16},
	}

	indices := bootstrap.FirstGraphicsFamily(families)
	require.Equal(t, 0, *indices.GraphicsFamily)
}

func TestFirstGraphicsFamily_SkipsEmptyFamilies(t *testing.T) {
	families := []bootstrap.QueueFamilyProperties{
		{QueueFlags: bootstrap.QueueGraphics, QueueCount: 0},
		{QueueFlags: bootstrap.QueueGraphics, QueueCount: 1},
	}

	indices := bootstrap.FirstGraphicsFamily(families)
	require.Equal(t, 1, *indices.GraphicsFamily)
}

func TestFirstGraphicsFamily_Unset(t *testing.T) {
	indices := bootstrap.FirstGraphicsFamily([]bootstrap.QueueFamilyProperties{
		{QueueFlags: bootstrap.QueueCompute, QueueCount: 4},
		{QueueFlags: bootstrap.QueueTransfer | bootstrap.QueueSparseBinding, QueueCount: 1},
	})
	require.False(t, indices.IsComplete())
	require.Nil(t, indices.GraphicsFamily)

	indices = bootstrap.FirstGraphicsFamily(nil)
	require.False(t, indices.IsComplete())
}

func TestFindQueueFamilies(t *testing.T) {
	rt := &bootstraptest.Runtime{
		Devices: []bootstraptest.PhysicalDevice{
			bootstraptest.GraphicsDevice("gpu", bootstrap.QueueCompute, bootstrap.QueueTransfer, bootstrap.QueueGraphics),
		},
	}
	devices, err := bootstrap.Enumerate(func(out []bootstrap.PhysicalDevice) (int, error) {
		return rt.EnumeratePhysicalDevices(0, out)
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)

	indices, err := bootstrap.FindQueueFamilies(rt, devices[0])
	require.NoError(t, err)
	require.Equal(t, 2, *indices.GraphicsFamily)
}

func TestFindQueueFamilies_Error(t *testing.T) {
	rt := &bootstraptest.Runtime{
		Devices: []bootstraptest.PhysicalDevice{
			{QueueFamiliesErr: bootstraptest.ErrRejected},
		},
	}
	devices, err := bootstrap.Enumerate(func(out []bootstrap.PhysicalDevice) (int, error) {
		return rt.EnumeratePhysicalDevices(0, out)
	})
	require.NoError(t, err)

	_, err = bootstrap.FindQueueFamilies(rt, devices[0])
	require.ErrorIs(t, err, bootstraptest.ErrRejected)
}

func TestQueueFlagsString(t *testing.T) {
	require.Equal(t, "None", bootstrap.QueueFlags(0).String())
	require.Equal(t, "Graphics|Transfer", (bootstrap.QueueGraphics | bootstrap.QueueTransfer).String())
	require.Equal(t, "Compute|0x100", (bootstrap.QueueCompute | 0x100).String())
}
