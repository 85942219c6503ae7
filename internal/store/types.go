// Package store provides the shared sqlite persistence layer for
// awmkit: tag mappings, audio evidence, and app settings, all living in
// a single per-user database file (spec §6's "Persistence layout").
package store

import "time"

// Evidence is a row recorded after a successful embed (spec §3, §4.7).
// Rows are never mutated after insert; removal is the only later
// operation a caller may perform on one.
type Evidence struct {
	ID                  int64     `json:"id" yaml:"id"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	FilePath            string    `json:"file_path" yaml:"file_path"`
	Tag                 string    `json:"tag" yaml:"tag"`
	Identity            string    `json:"identity" yaml:"identity"`
	Version             uint8     `json:"version" yaml:"version"`
	KeySlot             int       `json:"key_slot" yaml:"key_slot"`
	TimestampMinutes    uint32    `json:"timestamp_minutes" yaml:"timestamp_minutes"`
	MessageHex          string    `json:"message_hex" yaml:"message_hex"`
	SampleRate          uint32    `json:"sample_rate" yaml:"sample_rate"`
	Channels            uint16    `json:"channels" yaml:"channels"`
	SampleCount         uint64    `json:"sample_count" yaml:"sample_count"`
	PCMSHA256           string    `json:"pcm_sha256" yaml:"pcm_sha256"` // hex
	KeyID               string    `json:"key_id" yaml:"key_id"`
	Fingerprint         []byte    `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	FingerprintLen      int       `json:"fingerprint_len" yaml:"fingerprint_len"`
	FingerprintConfigID int       `json:"fingerprint_config_id" yaml:"fingerprint_config_id"`
	SNRDb               *float64  `json:"snr_db,omitempty" yaml:"snr_db,omitempty"`
}

// TagMapping binds a username to a previously suggested or saved tag.
type TagMapping struct {
	Username  string    `json:"username" yaml:"username"`
	Tag       string    `json:"tag" yaml:"tag"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
