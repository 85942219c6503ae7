package evidence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"awmkit/internal/audio"
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

func testPCM() audio.PCM {
	return audio.PCM{SampleRate: 44100, Channels: 2, BitsPerSample: 16, Data: []byte{1, 2, 3, 4}}
}

func TestRecordInsertsEvidenceRow(t *testing.T) {
	s := newTestStore(t)
	r := NewRecorder(s, fingerprint.NewGenerator(""))

	e, inserted, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 29049600, "00", "abcd1234", testPCM())
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotZero(t, e.ID)
	require.Equal(t, PCMSHA256Hex(testPCM().Data), e.PCMSHA256)
}

func TestRecordIsIdempotentOnDuplicateEmbed(t *testing.T) {
	s := newTestStore(t)
	r := NewRecorder(s, fingerprint.NewGenerator(""))

	e1, inserted1, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 29049600, "00", "abcd1234", testPCM())
	require.NoError(t, err)
	require.True(t, inserted1)

	e2, inserted2, err := r.Record(context.Background(), "/tmp/out2.wav", "SAKUZY_X", "SAKUZY", 2, 0, 29049601, "00", "abcd1234", testPCM())
	require.NoError(t, err)
	require.False(t, inserted2)
	require.Equal(t, e1.ID, e2.ID)
}

func TestRecordDegradesWithoutFingerprintGenerator(t *testing.T) {
	s := newTestStore(t)
	r := NewRecorder(s, fingerprint.NewGenerator(""))

	e, _, err := r.Record(context.Background(), "/tmp/out.wav", "SAKUZY_X", "SAKUZY", 2, 0, 29049600, "00", "abcd1234", testPCM())
	require.NoError(t, err)
	require.Empty(t, e.Fingerprint)
	require.Equal(t, FingerprintConfigID, e.FingerprintConfigID)
}
