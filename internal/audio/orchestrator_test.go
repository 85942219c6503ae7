package audio

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDetectOutputSingleLine(t *testing.T) {
	msg := make([]byte, 16)
	for i := range msg {
		msg[i] = byte(i)
	}
	line := "single " + hex.EncodeToString(msg) + " errors=2 score=0.97\n"

	result, err := parseDetectOutput([]byte(line))
	require.NoError(t, err)
	require.Equal(t, "single", result.Pattern)
	require.EqualValues(t, msg, result.Message[:])
	require.Equal(t, 2, result.BitErrors)
	require.NotNil(t, result.DetectScore)
	require.InDelta(t, 0.97, *result.DetectScore, 0.0001)
}

func TestParseDetectOutputNoWatermark(t *testing.T) {
	_, err := parseDetectOutput([]byte("no pattern detected\n"))
	require.ErrorIs(t, err, ErrNoWatermarkFound)
}

func TestParseDetectOutputIgnoresMalformedHex(t *testing.T) {
	_, err := parseDetectOutput([]byte("single not-hex errors=0\n"))
	require.ErrorIs(t, err, ErrNoWatermarkFound)
}

func TestIsPipeFailureDetectsBrokenPipeText(t *testing.T) {
	require.True(t, isPipeFailure(errBrokenPipeLike{}))
	require.False(t, isPipeFailure(nil))
}

type errBrokenPipeLike struct{}

func (errBrokenPipeLike) Error() string { return "write |1: broken pipe" }

func TestEmbedRejectsOutOfRangeStrength(t *testing.T) {
	o := NewOrchestrator("", "", true, nil)
	err := o.Embed(nil, "in.wav", "out.wav", [16]byte{}, 99, "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEmbedRejectsNonWAVOutput(t *testing.T) {
	o := NewOrchestrator("", "", true, nil)
	err := o.Embed(nil, "in.wav", "out.mp3", [16]byte{}, 12, "")
	require.ErrorIs(t, err, ErrUnsupportedOutput)
}
