package secretstore

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"awmkit/internal/security"
)

// FileStore is a file-backed Store, selected by Default only when
// AWMKIT_TEST_KEYSTORE_FILE=1 is set (tests, CI); Default does not fall
// back to it when the platform secret store is unavailable. Secrets are
// wrapped with a key derived via HKDF (internal/security.DeriveKey) from a
// per-directory master secret generated on first use and stored alongside
// the entries file with 0600 permissions; this never touches key-slot
// cross-derivation, it only protects the keystore file at rest.
type FileStore struct {
	mu            sync.Mutex
	path          string
	masterKeyPath string
}

type fileStoreEntry struct {
	Nonce      string `json:"nonce"`
	WrappedHex string `json:"wrapped"`
}

// NewFileStore opens (or creates) a file-backed keystore rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("secretstore: create dir: %w", err)
	}
	fs := &FileStore{
		path:          filepath.Join(dir, "awmkit-keystore.json"),
		masterKeyPath: filepath.Join(dir, "awmkit-keystore.master"),
	}
	if err := fs.ensureMasterKey(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) ensureMasterKey() error {
	if _, err := os.Stat(fs.masterKeyPath); err == nil {
		return nil
	}
	key, err := security.GenerateKey(32)
	if err != nil {
		return fmt.Errorf("secretstore: generate master key: %w", err)
	}
	return os.WriteFile(fs.masterKeyPath, []byte(hex.EncodeToString(key)), 0600)
}

func (fs *FileStore) masterKey() ([]byte, error) {
	data, err := os.ReadFile(fs.masterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("secretstore: read master key: %w", err)
	}
	return hex.DecodeString(string(data))
}

func entryKey(service, account string) string {
	return service + "\x00" + account
}

func (fs *FileStore) load() (map[string]fileStoreEntry, error) {
	entries := map[string]fileStoreEntry{}
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("secretstore: decode keystore: %w", err)
	}
	return entries, nil
}

func (fs *FileStore) save(entries map[string]fileStoreEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0600)
}

func (fs *FileStore) Set(service, account string, secret []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	master, err := fs.masterKey()
	if err != nil {
		return err
	}

	nonce, err := security.GenerateKey(16)
	if err != nil {
		return err
	}
	wrapKey, err := security.DeriveKey(master, nonce, []byte("secretstore:"+entryKey(service, account)), 32)
	if err != nil {
		return err
	}

	wrapped := xorStream(wrapKey, secret)

	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[entryKey(service, account)] = fileStoreEntry{
		Nonce:      hex.EncodeToString(nonce),
		WrappedHex: hex.EncodeToString(wrapped),
	}
	return fs.save(entries)
}

func (fs *FileStore) Get(service, account string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return nil, err
	}
	entry, ok := entries[entryKey(service, account)]
	if !ok {
		return nil, ErrNotFound
	}

	master, err := fs.masterKey()
	if err != nil {
		return nil, err
	}
	nonce, err := hex.DecodeString(entry.Nonce)
	if err != nil {
		return nil, fmt.Errorf("secretstore: decode nonce: %w", err)
	}
	wrapped, err := hex.DecodeString(entry.WrappedHex)
	if err != nil {
		return nil, fmt.Errorf("secretstore: decode secret: %w", err)
	}

	wrapKey, err := security.DeriveKey(master, nonce, []byte("secretstore:"+entryKey(service, account)), 32)
	if err != nil {
		return nil, err
	}
	return xorStream(wrapKey, wrapped), nil
}

func (fs *FileStore) Delete(service, account string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	delete(entries, entryKey(service, account))
	return fs.save(entries)
}

// xorStream wraps/unwraps data with a repeating-key stream derived from
// key; used symmetrically for Set and Get. It is a local at-rest obscurer
// for the test keystore, not a substitute for platform secret storage.
func xorStream(key, data []byte) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
