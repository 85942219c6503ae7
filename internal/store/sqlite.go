package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"awmkit/internal/keyslot"
)

// schema is the DDL for the tables this package owns. key_slots_meta and
// app_settings are owned by internal/keyslot (keyslot.Schema) but applied
// here too, since all four required tables (spec §6) live in one file.
const schema = `
CREATE TABLE IF NOT EXISTS tag_mappings (
	username   TEXT PRIMARY KEY COLLATE NOCASE,
	tag        TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audio_evidence (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at            INTEGER NOT NULL,
	file_path             TEXT NOT NULL,
	tag                   TEXT NOT NULL,
	identity              TEXT NOT NULL,
	version               INTEGER NOT NULL,
	key_slot              INTEGER NOT NULL,
	timestamp_minutes     INTEGER NOT NULL,
	message_hex           TEXT NOT NULL,
	sample_rate           INTEGER NOT NULL,
	channels              INTEGER NOT NULL,
	sample_count          INTEGER NOT NULL,
	pcm_sha256            TEXT NOT NULL,
	key_id                TEXT NOT NULL,
	fingerprint           BLOB,
	fingerprint_len       INTEGER NOT NULL DEFAULT 0,
	fingerprint_config_id INTEGER NOT NULL DEFAULT 0,
	snr_db                REAL,
	UNIQUE (identity, key_slot, key_id, pcm_sha256)
);

CREATE INDEX IF NOT EXISTS idx_evidence_identity_slot ON audio_evidence(identity, key_slot);
CREATE INDEX IF NOT EXISTS idx_evidence_pcm ON audio_evidence(pcm_sha256);
`

// Store wraps the single sqlite database file holding tag mappings,
// audio evidence, and app/key-slot settings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, applying schema for every
// table the core owns.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(keyslot.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply key slot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying connection, for packages (keyslot) that own
// their own tables against the same file.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertEvidence inserts e, returning its row ID. If a row already
// exists for e's (identity, key_slot, key_id, pcm_sha256), the insert is
// a no-op and the existing row's ID is returned with inserted=false
// (spec §4.7's idempotent-emit contract).
func (s *Store) InsertEvidence(e *Evidence) (id int64, inserted bool, err error) {
	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := s.db.Exec(`
		INSERT INTO audio_evidence (
			created_at, file_path, tag, identity, version, key_slot, timestamp_minutes,
			message_hex, sample_rate, channels, sample_count, pcm_sha256, key_id,
			fingerprint, fingerprint_len, fingerprint_config_id, snr_db
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity, key_slot, key_id, pcm_sha256) DO NOTHING`,
		now.Unix(), e.FilePath, e.Tag, e.Identity, e.Version, e.KeySlot, e.TimestampMinutes,
		e.MessageHex, e.SampleRate, e.Channels, e.SampleCount, e.PCMSHA256, e.KeyID,
		e.Fingerprint, e.FingerprintLen, e.FingerprintConfigID, e.SNRDb,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert evidence: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("insert evidence: rows affected: %w", err)
	}
	if rows > 0 {
		lastID, err := result.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("insert evidence: last insert id: %w", err)
		}
		return lastID, true, nil
	}

	existing, err := s.GetEvidenceByUniqueKey(e.Identity, e.KeySlot, e.KeyID, e.PCMSHA256)
	if err != nil {
		return 0, false, err
	}
	if existing == nil {
		return 0, false, fmt.Errorf("insert evidence: conflict row not found after DO NOTHING")
	}
	return existing.ID, false, nil
}

const evidenceColumns = `id, created_at, file_path, tag, identity, version, key_slot, timestamp_minutes,
	message_hex, sample_rate, channels, sample_count, pcm_sha256, key_id,
	fingerprint, fingerprint_len, fingerprint_config_id, snr_db`

func scanEvidence(row interface {
	Scan(dest ...any) error
}) (*Evidence, error) {
	var e Evidence
	var createdAt int64
	err := row.Scan(
		&e.ID, &createdAt, &e.FilePath, &e.Tag, &e.Identity, &e.Version, &e.KeySlot, &e.TimestampMinutes,
		&e.MessageHex, &e.SampleRate, &e.Channels, &e.SampleCount, &e.PCMSHA256, &e.KeyID,
		&e.Fingerprint, &e.FingerprintLen, &e.FingerprintConfigID, &e.SNRDb,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan evidence: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &e, nil
}

// GetEvidenceByUniqueKey looks up a row by the full uniqueness constraint.
func (s *Store) GetEvidenceByUniqueKey(identity string, keySlot int, keyID, pcmSHA256 string) (*Evidence, error) {
	row := s.db.QueryRow(`SELECT `+evidenceColumns+` FROM audio_evidence
		WHERE identity = ? AND key_slot = ? AND key_id = ? AND pcm_sha256 = ?`,
		identity, keySlot, keyID, pcmSHA256)
	return scanEvidence(row)
}

// GetEvidenceByID looks up a row by its primary key.
func (s *Store) GetEvidenceByID(id int64) (*Evidence, error) {
	row := s.db.QueryRow(`SELECT `+evidenceColumns+` FROM audio_evidence WHERE id = ?`, id)
	return scanEvidence(row)
}

// GetEvidenceByPCMHash returns the first row whose PCM hash matches
// exactly, used by clone-check's exact tier.
func (s *Store) GetEvidenceByPCMHash(pcmSHA256 string) (*Evidence, error) {
	row := s.db.QueryRow(`SELECT `+evidenceColumns+` FROM audio_evidence WHERE pcm_sha256 = ? LIMIT 1`, pcmSHA256)
	return scanEvidence(row)
}

// ListEvidenceByIdentitySlot lists rows for (identity, key_slot),
// newest first, bounded by limit.
func (s *Store) ListEvidenceByIdentitySlot(identity string, keySlot, limit int) ([]Evidence, error) {
	rows, err := s.db.Query(`SELECT `+evidenceColumns+` FROM audio_evidence
		WHERE identity = ? AND key_slot = ? ORDER BY created_at DESC LIMIT ?`,
		identity, keySlot, limit)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()
	return collectEvidence(rows)
}

// ListEvidence lists every evidence row, newest first.
func (s *Store) ListEvidence(limit int) ([]Evidence, error) {
	rows, err := s.db.Query(`SELECT `+evidenceColumns+` FROM audio_evidence ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()
	return collectEvidence(rows)
}

func collectEvidence(rows *sql.Rows) ([]Evidence, error) {
	var out []Evidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteEvidence removes one row by ID.
func (s *Store) DeleteEvidence(id int64) error {
	_, err := s.db.Exec(`DELETE FROM audio_evidence WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}
	return nil
}

// ClearEvidence removes every evidence row.
func (s *Store) ClearEvidence() error {
	_, err := s.db.Exec(`DELETE FROM audio_evidence`)
	if err != nil {
		return fmt.Errorf("clear evidence: %w", err)
	}
	return nil
}

// SaveTagMapping upserts username's tag (username compared case-insensitively).
func (s *Store) SaveTagMapping(username, tag string) error {
	_, err := s.db.Exec(`INSERT INTO tag_mappings (username, tag, created_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET tag = excluded.tag`,
		username, tag, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("save tag mapping: %w", err)
	}
	return nil
}

// GetTagMapping returns the tag saved for username, or nil if none.
func (s *Store) GetTagMapping(username string) (*TagMapping, error) {
	var m TagMapping
	var createdAt int64
	err := s.db.QueryRow(`SELECT username, tag, created_at FROM tag_mappings WHERE username = ?`, username).
		Scan(&m.Username, &m.Tag, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag mapping: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &m, nil
}

// ListTagMappings lists every saved mapping, ordered by username.
func (s *Store) ListTagMappings() ([]TagMapping, error) {
	rows, err := s.db.Query(`SELECT username, tag, created_at FROM tag_mappings ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list tag mappings: %w", err)
	}
	defer rows.Close()

	var out []TagMapping
	for rows.Next() {
		var m TagMapping
		var createdAt int64
		if err := rows.Scan(&m.Username, &m.Tag, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tag mapping: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// RemoveTagMapping deletes username's mapping, if any.
func (s *Store) RemoveTagMapping(username string) error {
	_, err := s.db.Exec(`DELETE FROM tag_mappings WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("remove tag mapping: %w", err)
	}
	return nil
}

// ClearTagMappings deletes every saved mapping.
func (s *Store) ClearTagMappings() error {
	_, err := s.db.Exec(`DELETE FROM tag_mappings`)
	if err != nil {
		return fmt.Errorf("clear tag mappings: %w", err)
	}
	return nil
}

// GetSetting reads a value from app_settings (shared with keyslot's
// active_key_slot entry). ok is false when the key has never been set.
func (s *Store) GetSetting(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts a value in app_settings.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
