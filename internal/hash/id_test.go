package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	require.Equal(t, ID("schema"), ID("schema"))
	require.NotEqual(t, ID("schema"), ID("schemas"))
	require.NotZero(t, ID(""))
}

func TestSum(t *testing.T) {
	require.Equal(t, ID("abc"), Sum([]byte("abc")))
}
