package bootstrap_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/devinit/bootstrap"
)

func TestEnumerate_CountThenFill(t *testing.T) {
	var sizes []int
	values, err := bootstrap.Enumerate(func(out []int) (int, error) {
		sizes = append(sizes, len(out))
		if out == nil {
			return 3, nil
		}
		for i := range out {
			out[i] = i * 10
		}
		return len(out), nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{0, 10, 20}, values)
	require.Equal(t, []int{0, 3}, sizes)
}

func TestEnumerate_TruncatesToWritten(t *testing.T) {
	values, err := bootstrap.Enumerate(func(out []string) (int, error) {
		if out == nil {
			return 4, nil
		}
		out[0] = "a"
		out[1] = "b"
		return 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, values)
}

func TestEnumerate_EmptySkipsFill(t *testing.T) {
	calls := 0
	values, err := bootstrap.Enumerate(func(out []string) (int, error) {
		calls++
		return 0, nil
	})
	require.NoError(t, err)
	require.Empty(t, values)
	require.Equal(t, 1, calls)
}

func TestEnumerate_Errors(t *testing.T) {
	countErr := errors.New("count failed")
	_, err := bootstrap.Enumerate(func(out []string) (int, error) {
		return 0, countErr
	})
	require.ErrorIs(t, err, countErr)

	fillErr := errors.New("fill failed")
	_, err = bootstrap.Enumerate(func(out []string) (int, error) {
		if out == nil {
			return 1, nil
		}
		return 0, fillErr
	})
	require.ErrorIs(t, err, fillErr)
}
