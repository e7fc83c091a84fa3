package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type target struct {
	a int
	b string
}

func TestApply(t *testing.T) {
	tgt := &target{}

	err := Apply(tgt,
		NoError(func(x *target) { x.a = 1 }),
		New(func(x *target) error {
			x.b = "set"
			return nil
		}),
	)
	require.NoError(t, err)
	require.Equal(t, 1, tgt.a)
	require.Equal(t, "set", tgt.b)
}

func TestApply_StopsOnError(t *testing.T) {
	tgt := &target{}
	boom := errors.New("boom")

	err := Apply(tgt,
		New(func(*target) error { return boom }),
		NoError(func(x *target) { x.a = 1 }),
	)
	require.ErrorIs(t, err, boom)
	require.Zero(t, tgt.a)
}
