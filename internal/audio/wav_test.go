package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWAVRoundTrip(t *testing.T) {
	pcm := PCM{
		SampleRate:    44100,
		Channels:      2,
		BitsPerSample: 16,
		Data:          []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	}

	encoded := EncodeWAV(pcm)
	decoded, err := DecodeWAV(encoded)
	require.NoError(t, err)
	require.Equal(t, pcm.SampleRate, decoded.SampleRate)
	require.Equal(t, pcm.Channels, decoded.Channels)
	require.Equal(t, pcm.BitsPerSample, decoded.BitsPerSample)
	require.Equal(t, pcm.Data, decoded.Data)
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	_, err := DecodeWAV([]byte("not a wav file at all"))
	require.ErrorIs(t, err, ErrNotWAV)
}

func TestSampleCountAndHash(t *testing.T) {
	pcm := PCM{SampleRate: 8000, Channels: 1, BitsPerSample: 16, Data: make([]byte, 2000)}
	require.EqualValues(t, 1000, pcm.SampleCount())

	sum1 := pcm.SHA256()
	sum2 := pcm.SHA256()
	require.Equal(t, sum1, sum2)
}

func TestIsWAVPath(t *testing.T) {
	require.True(t, IsWAVPath("output.wav"))
	require.True(t, IsWAVPath("OUTPUT.WAV"))
	require.False(t, IsWAVPath("output.mp3"))
	require.False(t, IsWAVPath("output"))
}
