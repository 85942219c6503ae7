package clonecheck

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"awmkit/internal/audio"
	"awmkit/internal/evidence"
	"awmkit/internal/fingerprint"
	"awmkit/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "awmkit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCheckUnavailableWithoutStore(t *testing.T) {
	c := NewChecker(nil, nil)
	result, err := c.Check(context.Background(), "SAKUZY", 0, audio.PCM{})
	require.NoError(t, err)
	require.Equal(t, KindUnavailable, result.Kind)
}

func TestCheckExactMatch(t *testing.T) {
	s := newTestStore(t)
	r := evidence.NewRecorder(s, fingerprint.NewGenerator(""))
	pcm := audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{9, 9, 9, 9}}

	e, _, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 1, "00", "abcd1234", pcm)
	require.NoError(t, err)

	c := NewChecker(s, fingerprint.NewGenerator(""))
	result, err := c.Check(context.Background(), "SAKUZY", 0, pcm)
	require.NoError(t, err)
	require.Equal(t, KindExact, result.Kind)
	require.NotNil(t, result.EvidenceID)
	require.Equal(t, e.ID, *result.EvidenceID)
}

func TestCheckExactMatchBeyondCandidateRowCap(t *testing.T) {
	s := newTestStore(t)
	r := evidence.NewRecorder(s, fingerprint.NewGenerator(""))

	oldest := audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{0, 0, 0, 0}}
	e, _, err := r.Record(context.Background(), "/tmp/oldest.wav", "SAKUZY_X", "SAKUZY", 2, 0, 1, "00", "abcd1234", oldest)
	require.NoError(t, err)

	for i := 1; i <= maxCandidateRows+5; i++ {
		pcm := audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{byte(i), byte(i >> 8), 0, 0}}
		_, _, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 1, "00", "abcd1234", pcm)
		require.NoError(t, err)
	}

	c := NewChecker(s, fingerprint.NewGenerator(""))
	result, err := c.Check(context.Background(), "SAKUZY", 0, oldest)
	require.NoError(t, err)
	require.Equal(t, KindExact, result.Kind)
	require.NotNil(t, result.EvidenceID)
	require.Equal(t, e.ID, *result.EvidenceID)
}

func TestCheckUnavailableWithoutFingerprintGeneratorOnNearMiss(t *testing.T) {
	s := newTestStore(t)
	r := evidence.NewRecorder(s, fingerprint.NewGenerator(""))
	pcm := audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{1, 2, 3, 4}}
	_, _, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 1, "00", "abcd1234", pcm)
	require.NoError(t, err)

	c := NewChecker(s, fingerprint.NewGenerator(""))
	candidate := audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{5, 6, 7, 8}}
	result, err := c.Check(context.Background(), "SAKUZY", 0, candidate)
	require.NoError(t, err)
	require.Equal(t, KindUnavailable, result.Kind)
	require.NotEmpty(t, result.Reason)
}
