// Package evidence implements the Evidence Store (C7): after a
// successful embed, it hashes the decoded PCM, runs the acoustic
// fingerprint generator, and persists one row to internal/store.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"awmkit/internal/audio"
	"awmkit/internal/fingerprint"
	"awmkit/internal/store"
)

// FingerprintConfigID is the generator configuration this build targets
// (spec §9: clone-check thresholds are tuned against one fixed config,
// so this value must not change across a deployed version).
const FingerprintConfigID = 1

// Recorder records embed outcomes as evidence rows.
type Recorder struct {
	Store       *store.Store
	Fingerprint *fingerprint.Generator
}

// NewRecorder builds a Recorder. fp may be a Generator with an empty
// binary path; fingerprinting then degrades silently and the row is
// stored with an empty fingerprint blob.
func NewRecorder(s *store.Store, fp *fingerprint.Generator) *Recorder {
	return &Recorder{Store: s, Fingerprint: fp}
}

// Record hashes pcm, fingerprints it if a generator is configured, and
// inserts an evidence row for a successful embed. filePath is the
// output path written by the audio orchestrator.
func (r *Recorder) Record(ctx context.Context, filePath, tag, identity string, version uint8, keySlot int, timestampMinutes uint32, messageHex, keyID string, pcm audio.PCM) (*store.Evidence, bool, error) {
	sum := pcm.SHA256()

	e := &store.Evidence{
		FilePath:            filePath,
		Tag:                 tag,
		Identity:            identity,
		Version:             version,
		KeySlot:             keySlot,
		TimestampMinutes:    timestampMinutes,
		MessageHex:          messageHex,
		SampleRate:          pcm.SampleRate,
		Channels:            pcm.Channels,
		SampleCount:         pcm.SampleCount(),
		PCMSHA256:           hex.EncodeToString(sum[:]),
		KeyID:               keyID,
		FingerprintConfigID: FingerprintConfigID,
	}

	if r.Fingerprint != nil {
		fp, err := r.Fingerprint.Generate(ctx, audio.EncodeWAV(pcm), FingerprintConfigID)
		if err == nil {
			e.Fingerprint = fp.Blob
			e.FingerprintLen = len(fp.Blob)
			e.FingerprintConfigID = fp.ConfigID
		}
	}

	id, inserted, err := r.Store.InsertEvidence(e)
	if err != nil {
		return nil, false, fmt.Errorf("evidence: record: %w", err)
	}
	e.ID = id
	return e, inserted, nil
}

// PCMSHA256Hex hashes raw PCM sample bytes, exported so clone-check can
// hash a candidate file the same way evidence rows were hashed.
func PCMSHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
