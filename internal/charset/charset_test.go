package charset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexOfRoundTrip(t *testing.T) {
	for i := 0; i < Size; i++ {
		ch := CharAt(i)
		idx, err := IndexOf(ch)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
}

func TestIndexOfRejectsExcludedChars(t *testing.T) {
	for _, ch := range []byte{'O', '0', 'I', '1', 'L'} {
		_, err := IndexOf(ch)
		require.ErrorIs(t, err, ErrInvalidChar)
	}
}

func TestValid(t *testing.T) {
	require.True(t, Valid("SAKUZY_"))
	require.False(t, Valid("SAKUZ0_"))
}

func TestChecksumDeterministic(t *testing.T) {
	content := [7]byte{'S', 'A', 'K', 'U', 'Z', 'Y', '_'}
	c1, err := Checksum(content)
	require.NoError(t, err)
	c2, err := Checksum(content)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
}

func TestChecksumRejectsInvalidChar(t *testing.T) {
	content := [7]byte{'S', 'A', 'K', 'U', 'Z', 'Y', '0'}
	_, err := Checksum(content)
	require.ErrorIs(t, err, ErrInvalidChar)
}
