package compval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCodec_BoolRoundTrip(t *testing.T) {
	c := DefaultCodec{}

	v, err := c.ParseBool("true")
	require.NoError(t, err)
	require.True(t, v)
	require.Equal(t, "true", c.FormatBool(v))

	v, err = c.ParseBool("false")
	require.NoError(t, err)
	require.False(t, v)
	require.Equal(t, "false", c.FormatBool(v))

	_, err = c.ParseBool("yes")
	require.ErrorIs(t, err, ErrAtomicParseFailure)
}

func TestDefaultCodec_IntRoundTrip(t *testing.T) {
	c := DefaultCodec{}

	v, err := c.ParseInt("-42")
	require.NoError(t, err)
	require.EqualValues(t, -42, v)
	require.Equal(t, "-42", c.FormatInt(v))

	_, err = c.ParseInt("4.5")
	require.ErrorIs(t, err, ErrAtomicParseFailure)
}

func TestDefaultCodec_RealRoundTrip(t *testing.T) {
	c := DefaultCodec{}

	v, err := c.ParseReal("3.5")
	require.NoError(t, err)
	require.InDelta(t, 3.5, v, 0.0000001)
	require.Equal(t, "3.5", c.FormatReal(v))

	_, err = c.ParseReal("not-a-number")
	require.ErrorIs(t, err, ErrAtomicParseFailure)
}
