// Package clonecheck implements the Clone-Check (C8): given a detected
// watermark's identity and key slot, it tells a caller whether the
// candidate file is an exact, likely, or merely suspect match against
// previously recorded evidence.
package clonecheck

import (
	"context"
	"fmt"

	"awmkit/internal/audio"
	"awmkit/internal/evidence"
	"awmkit/internal/fingerprint"
	"awmkit/internal/store"
)

// Kind is the clone-check verdict tier (spec §4.8).
type Kind string

const (
	KindExact       Kind = "exact"
	KindLikely      Kind = "likely"
	KindSuspect     Kind = "suspect"
	KindUnavailable Kind = "unavailable"
)

// Thresholds for the fingerprint distance score (lower is better).
// These are fixed constants, not runtime-configurable, per spec §9's
// resolution of the "fingerprint thresholds" open question: letting
// them vary would make clone-check results unstable across versions.
const (
	likelyScoreThreshold = 0.15
	maxCandidateRows     = 50
)

// Result is the outcome of a clone-check (spec §4.8).
type Result struct {
	Kind         Kind
	Score        *float64
	MatchSeconds *float64
	EvidenceID   *int64
	Reason       string
}

// Checker runs clone-check against the evidence store.
type Checker struct {
	Store       *store.Store
	Fingerprint *fingerprint.Generator
}

// NewChecker builds a Checker.
func NewChecker(s *store.Store, fp *fingerprint.Generator) *Checker {
	return &Checker{Store: s, Fingerprint: fp}
}

// Check runs the three-tier clone-check algorithm against pcm, a
// candidate's decoded audio, for the given identity and key slot.
func (c *Checker) Check(ctx context.Context, identity string, keySlot int, pcm audio.PCM) (Result, error) {
	if c.Store == nil {
		return Result{Kind: KindUnavailable, Reason: "evidence store not configured"}, nil
	}

	candidateHash := evidence.PCMSHA256Hex(pcm.Data)

	exactRow, err := c.exactMatch(identity, keySlot, candidateHash)
	if err != nil {
		return Result{}, fmt.Errorf("clonecheck: exact match query: %w", err)
	}
	if exactRow != nil {
		id := exactRow.ID
		return Result{Kind: KindExact, EvidenceID: &id}, nil
	}

	if c.Fingerprint == nil || c.Fingerprint.BinaryPath == "" {
		return Result{Kind: KindUnavailable, Reason: "fingerprint generator not configured"}, nil
	}

	candidateBlob, err := c.Fingerprint.Generate(ctx, audio.EncodeWAV(pcm), evidence.FingerprintConfigID)
	if err != nil {
		return Result{Kind: KindUnavailable, Reason: err.Error()}, nil
	}

	rows, err := c.Store.ListEvidenceByIdentitySlot(identity, keySlot, maxCandidateRows)
	if err != nil {
		return Result{}, fmt.Errorf("clonecheck: list evidence: %w", err)
	}

	var best *store.Evidence
	var bestComparison fingerprint.Comparison
	found := false

	for i := range rows {
		row := rows[i]
		if len(row.Fingerprint) == 0 {
			continue
		}
		stored := fingerprint.Fingerprint{Blob: row.Fingerprint, ConfigID: row.FingerprintConfigID}
		comparison, err := c.Fingerprint.Compare(ctx, candidateBlob, stored)
		if err != nil {
			continue
		}
		if !found || comparison.Score < bestComparison.Score {
			found = true
			bestComparison = comparison
			best = &rows[i]
		}
	}

	if !found {
		return Result{Kind: KindUnavailable, Reason: "no comparable fingerprints on record"}, nil
	}

	kind := KindSuspect
	if bestComparison.Score <= likelyScoreThreshold {
		kind = KindLikely
	}
	score := bestComparison.Score
	seconds := bestComparison.MatchedDuration
	id := best.ID
	return Result{Kind: kind, Score: &score, MatchSeconds: &seconds, EvidenceID: &id}, nil
}

// exactMatch looks up candidateHash directly by its indexed column, so an
// exact PCM match is found regardless of how many rows have accumulated
// for this identity/slot (unlike the fingerprint-distance scan below,
// which only considers the newest maxCandidateRows).
func (c *Checker) exactMatch(identity string, keySlot int, candidateHash string) (*store.Evidence, error) {
	row, err := c.Store.GetEvidenceByPCMHash(candidateHash)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Identity != identity || row.KeySlot != keySlot {
		return nil, nil
	}
	return row, nil
}
