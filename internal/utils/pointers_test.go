package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/internal/utils"
)

func TestValue(t *testing.T) {
	require.Equal(t, 0, utils.Value[int](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestOptionalBool(t *testing.T) {
	require.Nil(t, utils.OptionalBool(""))
	require.Nil(t, utils.OptionalBool("maybe"))
	require.True(t, *utils.OptionalBool("true"))
	require.False(t, *utils.OptionalBool("0"))
}
