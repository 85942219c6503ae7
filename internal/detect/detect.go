// Package detect implements the Detect Router (C5): given a 16-byte
// candidate message and the configured key slots, it determines which
// slot (if any) the message decodes under and reports a diagnostic
// status distinguishing a clean match from a recovered, ambiguous, or
// missing-key condition.
package detect

import (
	"sort"

	"awmkit/internal/message"
)

// Status is the diagnostic outcome of a detect scan.
type Status string

const (
	StatusMatched    Status = "matched"
	StatusRecovered  Status = "recovered"
	StatusMissingKey Status = "missing_key"
	StatusMismatch   Status = "mismatch"
	StatusAmbiguous  Status = "ambiguous"
)

// Result is the outcome of routing one candidate message against the
// configured key slots.
type Result struct {
	Status    Status
	SlotHint  int
	SlotUsed  int
	ScanCount int
	Decoded   *message.Decoded
}

// Route decodes candidate against the supplied key slots (slot index ->
// 32-byte key), scanning the hinted slot first and then every other
// configured slot in ascending index order. It never shortcuts on the
// first match: the full scan list is walked so that a second match can
// still be detected and reported as ambiguous.
func Route(candidate [message.Size]byte, keys map[int][]byte) (Result, error) {
	hint, err := message.PeekKeySlotHint(candidate)
	if err != nil {
		return Result{}, err
	}

	scanOrder := buildScanOrder(hint, keys)

	type match struct {
		slot    int
		decoded message.Decoded
	}
	var matches []match
	for _, slot := range scanOrder {
		key, configured := keys[slot]
		if !configured {
			continue
		}
		decoded, err := message.Decode(candidate, [][]byte{key})
		if err != nil {
			continue
		}
		matches = append(matches, match{slot: slot, decoded: decoded})
	}

	result := Result{SlotHint: hint, ScanCount: len(scanOrder)}

	switch len(matches) {
	case 0:
		if _, hintConfigured := keys[hint]; !hintConfigured {
			result.Status = StatusMissingKey
		} else {
			result.Status = StatusMismatch
		}
		result.SlotUsed = hint
		return result, nil
	case 1:
		result.SlotUsed = matches[0].slot
		decoded := matches[0].decoded
		result.Decoded = &decoded
		if matches[0].slot == hint {
			result.Status = StatusMatched
		} else {
			result.Status = StatusRecovered
		}
		return result, nil
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].slot < matches[j].slot })
		result.Status = StatusAmbiguous
		result.SlotUsed = matches[0].slot
		decoded := matches[0].decoded
		result.Decoded = &decoded
		return result, nil
	}
}

// buildScanOrder returns [hint] followed by every other configured slot
// in ascending index order, with duplicates dropped.
func buildScanOrder(hint int, keys map[int][]byte) []int {
	seen := map[int]bool{hint: true}
	order := []int{hint}

	others := make([]int, 0, len(keys))
	for slot := range keys {
		if !seen[slot] {
			others = append(others, slot)
		}
	}
	sort.Ints(others)
	order = append(order, others...)
	return order
}
