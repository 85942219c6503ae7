package schemaval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDetectResultAcceptsMatched(t *testing.T) {
	payload, err := json.Marshal(map[string]any{
		"status":             "matched",
		"tag":                "SAKUZY_3",
		"identity":           "SAKUZY",
		"version":            2,
		"key_slot":           0,
		"decode_slot_hint":   0,
		"decode_slot_used":   0,
		"slot_status":        "matched",
		"slot_scan_count":    3,
		"clone_check":        "exact",
		"clone_score":        0.0,
		"clone_match_seconds": 12.5,
		"clone_matched_evidence_id": 7,
	})
	require.NoError(t, err)
	require.NoError(t, ValidateDetectResult(payload))
}

func TestValidateDetectResultAcceptsNotFound(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"status": "not_found"})
	require.NoError(t, err)
	require.NoError(t, ValidateDetectResult(payload))
}

func TestValidateDetectResultRejectsUnknownStatus(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"status": "bogus"})
	require.NoError(t, err)
	require.Error(t, ValidateDetectResult(payload))
}

func TestValidateDetectResultRejectsUnknownField(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"status": "matched", "extra": "nope"})
	require.NoError(t, err)
	require.Error(t, ValidateDetectResult(payload))
}

func TestValidateDetectResultRequiresStatus(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"tag": "SAKUZY_3"})
	require.NoError(t, err)
	require.Error(t, ValidateDetectResult(payload))
}
