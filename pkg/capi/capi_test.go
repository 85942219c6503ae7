package capi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagFromIdentityRoundTrip(t *testing.T) {
	dst := make([]byte, 8)
	code, n := TagFromIdentity("SAKUZY", dst)
	require.Equal(t, Ok, code)
	require.Equal(t, 8, n)
	require.Equal(t, Ok, TagParse(string(dst[:n])))
}

func TestTagFromIdentityBufferTooSmall(t *testing.T) {
	dst := make([]byte, 2)
	code, n := TagFromIdentity("SAKUZY", dst)
	require.Equal(t, ErrInvalidArgument, code)
	require.Equal(t, -8, n)
}

func TestTagFromIdentityRejectsInvalidUTF8(t *testing.T) {
	dst := make([]byte, 8)
	code, _ := TagFromIdentity("\xff\xfe", dst)
	require.Equal(t, ErrInvalidUtf8, code)
}

func TestTagParseRejectsChecksumMismatch(t *testing.T) {
	dst := make([]byte, 8)
	_, n := TagFromIdentity("SAKUZY", dst)
	mutated := string(dst[:n-1]) + "A"
	require.Equal(t, ErrChecksumMismatch, TagParse(mutated))
}

func TestSuggestTagIsDeterministic(t *testing.T) {
	dst1 := make([]byte, 8)
	dst2 := make([]byte, 8)
	code1, n1 := SuggestTag("alice", dst1)
	code2, n2 := SuggestTag("alice", dst2)
	require.Equal(t, Ok, code1)
	require.Equal(t, Ok, code2)
	require.Equal(t, string(dst1[:n1]), string(dst2[:n2]))
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	tagDst := make([]byte, 8)
	_, n := TagFromIdentity("SAKUZY", tagDst)
	tagStr := string(tagDst[:n])

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	out := make([]byte, 16)
	minutes := uint32(29_049_600)
	slot := 0
	code := MessageEncode(2, tagStr, key, minutes, true, slot, true, out)
	require.Equal(t, Ok, code)

	decodedTagDst := make([]byte, 8)
	code, decoded, dn := MessageDecode(out, [][]byte{key}, decodedTagDst)
	require.Equal(t, Ok, code)
	require.Equal(t, tagStr, string(decodedTagDst[:dn]))
	require.Equal(t, uint32(29_049_600), decoded.TimestampMinutes)
	require.Equal(t, 0, decoded.KeySlotHint)
}

func TestMessageDecodeRejectsWrongLength(t *testing.T) {
	code, _, _ := MessageDecode([]byte{1, 2, 3}, nil, make([]byte, 8))
	require.Equal(t, ErrInvalidMessageLen, code)
}

func TestMessageDecodeRejectsNoMatchingKey(t *testing.T) {
	tagDst := make([]byte, 8)
	_, n := TagFromIdentity("SAKUZY", tagDst)
	out := make([]byte, 16)
	require.Equal(t, Ok, MessageEncode(2, string(tagDst[:n]), make([]byte, 32), 0, true, 0, true, out))

	wrongKey := make([]byte, 32)
	wrongKey[0] = 1
	code, _, _ := MessageDecode(out, [][]byte{wrongKey}, make([]byte, 8))
	require.Equal(t, ErrHmacMismatch, code)
}

func TestOrchestratorHandleLifecycleIsIdempotentOnDestroy(t *testing.T) {
	h := NewOrchestratorHandle("", "ffmpeg", false)
	require.NotZero(t, h)
	require.NotNil(t, Orchestrator(h))

	DestroyOrchestratorHandle(h)
	require.Nil(t, Orchestrator(h))

	// Double-free must not panic.
	DestroyOrchestratorHandle(h)
	DestroyOrchestratorHandle(0)
}

func TestEmbedWithUnknownHandleReturnsInvalidArgument(t *testing.T) {
	code := EmbedWithHandle(999999, "in.wav", "out.wav", make([]byte, 16), 10, "")
	require.Equal(t, ErrInvalidArgument, code)
}

func TestDetectWithUnknownHandleReturnsInvalidArgument(t *testing.T) {
	code, _ := DetectWithHandle(999999, "in.wav", make([]byte, 16))
	require.Equal(t, ErrInvalidArgument, code)
}

func TestFromErrorMapsNilToOk(t *testing.T) {
	require.Equal(t, Ok, FromError(nil))
}
