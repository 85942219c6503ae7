package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"awmkit/internal/message"
	"awmkit/internal/tag"
)

func mustTag(t *testing.T, identity string) tag.Tag {
	t.Helper()
	tg, err := tag.FromIdentity(identity)
	require.NoError(t, err)
	return tg
}

func encodeFor(t *testing.T, slot int, key []byte, identity string) [message.Size]byte {
	t.Helper()
	s := slot
	msg, err := message.Encode(message.EncodeOptions{
		Version: 2,
		Tag:     mustTag(t, identity),
		Key:     key,
		KeySlot: &s,
	})
	require.NoError(t, err)
	return msg
}

func TestRouteMatchedWhenHintResolves(t *testing.T) {
	keyA := []byte("key-a-2222222222222222222222222")
	keyB := []byte("key-b-2222222222222222222222222")
	keys := map[int][]byte{3: keyA, 7: keyB}

	candidate := encodeFor(t, 3, keyA, "ANNA")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, StatusMatched, result.Status)
	require.Equal(t, 3, result.SlotUsed)
	require.Equal(t, 3, result.SlotHint)
	require.NotNil(t, result.Decoded)
}

func TestRouteRecoveredWhenHintStale(t *testing.T) {
	keyA := []byte("key-a-2222222222222222222222222")
	keys := map[int][]byte{9: keyA}

	// Encoded with hint 3 (unconfigured), but key only lives in slot 9.
	candidate := encodeFor(t, 3, keyA, "BEN")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, StatusRecovered, result.Status)
	require.Equal(t, 9, result.SlotUsed)
}

func TestRouteMissingKeyWhenHintUnconfigured(t *testing.T) {
	keyA := []byte("key-a-2222222222222222222222222")
	keys := map[int][]byte{9: keyA}

	candidate := encodeFor(t, 3, []byte("some-other-unrelated-32-byte-key"), "CARA")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, StatusMissingKey, result.Status)
	require.Equal(t, 3, result.SlotHint)
}

func TestRouteMismatchWhenHintKeyWrong(t *testing.T) {
	keyA := []byte("key-a-2222222222222222222222222")
	keys := map[int][]byte{3: keyA}

	candidate := encodeFor(t, 3, []byte("some-other-unrelated-32-byte-key"), "DAVE")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, StatusMismatch, result.Status)
}

func TestRouteAmbiguousWhenMultipleSlotsMatch(t *testing.T) {
	sharedKey := []byte("shared-key-22222222222222222222")
	keys := map[int][]byte{1: sharedKey, 2: sharedKey, 5: sharedKey}

	candidate := encodeFor(t, 5, sharedKey, "ERMA")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, StatusAmbiguous, result.Status)
	require.Equal(t, 1, result.SlotUsed)
}

func TestRouteScansFullListEvenAfterHintMatch(t *testing.T) {
	sharedKey := []byte("shared-key-22222222222222222222")
	keys := map[int][]byte{0: sharedKey, 4: sharedKey}

	candidate := encodeFor(t, 0, sharedKey, "FAY")
	result, err := Route(candidate, keys)
	require.NoError(t, err)
	require.Equal(t, 2, result.ScanCount)
	require.Equal(t, StatusAmbiguous, result.Status)
}
