// Package keyslot implements the 32-slot key registry (C4): each slot
// holds a 32-byte secret, an optional label, and a Key ID fingerprint.
// Slot metadata (label, fingerprint, timestamps) lives in the evidence
// database; the secret material itself is written through
// internal/secretstore (optionally sealed by internal/tpmseal when a TPM
// is present), never stored in the sqlite file.
package keyslot

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"awmkit/internal/secretstore"
	"awmkit/internal/security"
	"awmkit/internal/tpmseal"
)

const (
	// SlotCount is the number of independent key positions.
	SlotCount = 32
	service   = "awmkit-keyslot"
)

var (
	ErrInvalidSlot        = errors.New("keyslot: slot index out of range 0..31")
	ErrSlotEmpty          = errors.New("keyslot: slot is not configured")
	ErrSlotOccupied       = errors.New("keyslot: slot already configured")
	ErrInvalidKeyMaterial = errors.New("keyslot: key material must be 32 raw bytes or 64 hex characters")
)

// Schema is the DDL for the two tables this package owns within the
// shared awmkit database (see internal/store, which applies this
// alongside the evidence and tag-mapping schema against the same file).
const Schema = `
CREATE TABLE IF NOT EXISTS key_slots_meta (
	slot        INTEGER PRIMARY KEY,
	label       TEXT NOT NULL DEFAULT '',
	key_id      TEXT NOT NULL,
	sealed      INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS app_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

const activeSlotSetting = "active_key_slot"

// Slot is a snapshot of one configured key slot's metadata. The secret
// key itself is never included; callers that need it call Registry.Key.
type Slot struct {
	Index     int
	Label     string
	KeyID     string
	Sealed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registry is the C4 Key Slot Registry. All mutations serialize through
// mu; reads take a snapshot under the same lock to avoid torn reads of
// the active slot alongside slot metadata.
type Registry struct {
	mu     sync.Mutex
	db     *sql.DB
	store  secretstore.Store
	sealer tpmseal.Sealer
}

// Open wraps an already-schema'd *sql.DB (see internal/store.Open) with
// the key slot registry, the platform secret store, and the optional
// TPM sealer returned by tpmseal.Open.
func Open(db *sql.DB, store secretstore.Store, sealer tpmseal.Sealer) (*Registry, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("keyslot: apply schema: %w", err)
	}
	return &Registry{db: db, store: store, sealer: sealer}, nil
}

func account(slot int) string {
	return fmt.Sprintf("slot-%02d", slot)
}

func validateSlot(i int) error {
	if i < 0 || i >= SlotCount {
		return ErrInvalidSlot
	}
	return nil
}

// List returns a snapshot of configured slots, ordered by index.
func (r *Registry) List() ([]Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list()
}

func (r *Registry) list() ([]Slot, error) {
	rows, err := r.db.Query(`SELECT slot, label, key_id, sealed, created_at, updated_at FROM key_slots_meta ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("keyslot: list: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var s Slot
		var sealed int
		var createdAt, updatedAt int64
		if err := rows.Scan(&s.Index, &s.Label, &s.KeyID, &sealed, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("keyslot: scan: %w", err)
		}
		s.Sealed = sealed != 0
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *Registry) slotRow(i int) (*Slot, error) {
	row := r.db.QueryRow(`SELECT slot, label, key_id, sealed, created_at, updated_at FROM key_slots_meta WHERE slot = ?`, i)
	var s Slot
	var sealed int
	var createdAt, updatedAt int64
	err := row.Scan(&s.Index, &s.Label, &s.KeyID, &sealed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyslot: query slot: %w", err)
	}
	s.Sealed = sealed != 0
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}

// Current returns the active slot index.
func (r *Registry) Current() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current()
}

func (r *Registry) current() (int, error) {
	row := r.db.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, activeSlotSetting)
	var value string
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("keyslot: read active slot: %w", err)
	}
	var idx int
	if _, err := fmt.Sscanf(value, "%d", &idx); err != nil {
		return 0, fmt.Errorf("keyslot: parse active slot: %w", err)
	}
	return idx, nil
}

// Use sets the active slot. Fails ErrInvalidSlot outside 0..31 or
// ErrSlotEmpty if i is not configured.
func (r *Registry) Use(i int) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrSlotEmpty
	}
	_, err = r.db.Exec(`INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		activeSlotSetting, fmt.Sprintf("%d", i), time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("keyslot: set active slot: %w", err)
	}
	return nil
}

func (r *Registry) insertSlot(i int, label, keyID string, sealed bool) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.Exec(`INSERT INTO key_slots_meta (slot, label, key_id, sealed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, i, label, keyID, boolToInt(sealed), now, now)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// writeSecret persists the key under the platform secret store, sealing
// it with the TPM when available.
func (r *Registry) writeSecret(i int, key []byte) (sealed bool, err error) {
	secret := key
	if r.sealer != nil && r.sealer.Available() {
		blob, sealErr := r.sealer.Seal(key)
		if sealErr == nil {
			secret = blob
			sealed = true
		}
	}
	if err := r.store.Set(service, account(i), secret); err != nil {
		return false, fmt.Errorf("keyslot: write secret: %w", err)
	}
	return sealed, nil
}

// Generate creates a new 32-byte random key in slot i. Fails
// ErrSlotOccupied if already set.
func (r *Registry) Generate(i int) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrSlotOccupied
	}

	key, err := security.GenerateKey(security.SlotKeySize)
	if err != nil {
		return fmt.Errorf("keyslot: generate key: %w", err)
	}
	return r.createSlot(i, "", key)
}

// Import normalizes key_bytes (32-byte binary or 64-char hex, optional
// 0x prefix) and stores it in slot i. Fails ErrInvalidKeyMaterial or
// ErrSlotOccupied.
func (r *Registry) Import(i int, keyBytes []byte) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	key, err := normalizeKeyMaterial(keyBytes)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrSlotOccupied
	}
	return r.createSlot(i, "", key)
}

// Rotate overwrites slot i's key with a freshly generated one. Callers
// are responsible for obtaining explicit confirmation before calling
// this; the registry itself performs no confirmation prompt.
func (r *Registry) Rotate(i int) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSlotEmpty
	}
	key, err := security.GenerateKey(security.SlotKeySize)
	if err != nil {
		return fmt.Errorf("keyslot: generate key: %w", err)
	}

	sealed, err := r.writeSecret(i, key)
	if err != nil {
		return err
	}
	keyID := security.Fingerprint(key)
	now := time.Now().UTC().Unix()
	_, err = r.db.Exec(`UPDATE key_slots_meta SET key_id = ?, sealed = ?, updated_at = ? WHERE slot = ?`,
		keyID, boolToInt(sealed), now, i)
	if err != nil {
		return fmt.Errorf("keyslot: update slot: %w", err)
	}
	return nil
}

// createSlot writes a brand-new slot's secret and metadata row together.
func (r *Registry) createSlot(i int, label string, key []byte) error {
	sealed, err := r.writeSecret(i, key)
	if err != nil {
		return err
	}
	keyID := security.Fingerprint(key)
	return r.insertSlot(i, label, keyID, sealed)
}

// Delete removes slot i. Fails ErrSlotEmpty. Deleting the active slot
// leaves the active_slot setting pointing at the now-empty index;
// callers must Use a configured slot before the next encode.
func (r *Registry) Delete(i int) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSlotEmpty
	}
	if err := r.store.Delete(service, account(i)); err != nil {
		return fmt.Errorf("keyslot: delete secret: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM key_slots_meta WHERE slot = ?`, i); err != nil {
		return fmt.Errorf("keyslot: delete slot: %w", err)
	}
	return nil
}

// LabelSet sets slot i's non-semantic label annotation.
func (r *Registry) LabelSet(i int, label string) error {
	return r.setLabel(i, label)
}

// LabelClear clears slot i's label.
func (r *Registry) LabelClear(i int) error {
	return r.setLabel(i, "")
}

func (r *Registry) setLabel(i int, label string) error {
	if err := validateSlot(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.slotRow(i)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSlotEmpty
	}
	_, err = r.db.Exec(`UPDATE key_slots_meta SET label = ?, updated_at = ? WHERE slot = ?`, label, time.Now().UTC().Unix(), i)
	if err != nil {
		return fmt.Errorf("keyslot: set label: %w", err)
	}
	return nil
}

// Fingerprint returns the Key ID (8-hex-char SHA-256 prefix) for slot i.
func (r *Registry) Fingerprint(i int) (string, error) {
	if err := validateSlot(i); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.slotRow(i)
	if err != nil {
		return "", err
	}
	if slot == nil {
		return "", ErrSlotEmpty
	}
	return slot.KeyID, nil
}

// Key returns the raw 32-byte secret for slot i, unsealing it if
// necessary. Used by C3/C5 to encode or attempt decode.
func (r *Registry) Key(i int) ([]byte, error) {
	if err := validateSlot(i); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.slotRow(i)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotEmpty
	}

	raw, err := r.store.Get(service, account(i))
	if err != nil {
		return nil, fmt.Errorf("keyslot: read secret: %w", err)
	}
	if slot.Sealed {
		if r.sealer == nil || !r.sealer.Available() {
			return nil, fmt.Errorf("keyslot: slot %d is TPM-sealed but no TPM is available", i)
		}
		return r.sealer.Unseal(raw)
	}
	return raw, nil
}

// Keys returns every configured slot's secret keyed by slot index, for
// use by the detect router. The map carries no order; the router builds
// its own scan order from it.
func (r *Registry) Keys() (map[int][]byte, error) {
	r.mu.Lock()
	slots, err := r.list()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	keys := make(map[int][]byte, len(slots))
	for _, s := range slots {
		k, err := r.Key(s.Index)
		if err != nil {
			return nil, err
		}
		keys[s.Index] = k
	}
	return keys, nil
}

func normalizeKeyMaterial(raw []byte) ([]byte, error) {
	if len(raw) == security.SlotKeySize {
		return raw, nil
	}

	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s) == security.SlotKeySize*2 {
		decoded, err := hex.DecodeString(s)
		if err == nil && len(decoded) == security.SlotKeySize {
			return decoded, nil
		}
	}
	return nil, ErrInvalidKeyMaterial
}
