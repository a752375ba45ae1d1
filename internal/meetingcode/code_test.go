package meetingcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	for _, id := range []int64{1, 42, 999999} {
		code := g.Encode(id)
		require.NotEmpty(t, code)
		require.GreaterOrEqual(t, len(code), 8)

		got, err := g.Decode(code)
		require.NoError(t, err)
		require.Equal(t, id, got)
	}
}

func TestCodesDifferPerID(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	require.NotEqual(t, g.Encode(1), g.Encode(2))
}

func TestSaltChangesCodes(t *testing.T) {
	a, err := NewGenerator("salt-a")
	require.NoError(t, err)
	b, err := NewGenerator("salt-b")
	require.NoError(t, err)

	require.NotEqual(t, a.Encode(7), b.Encode(7))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	g, err := NewGenerator("test-salt")
	require.NoError(t, err)

	_, err = g.Decode("not a code!")
	require.Error(t, err)
}
