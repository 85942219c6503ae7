package main

import (
	"fmt"
	"os"

	"awmkit/internal/config"
	"awmkit/internal/fingerprint"
	"awmkit/internal/keyslot"
	"awmkit/internal/secretstore"
	"awmkit/internal/store"
	"awmkit/internal/tpmseal"
)

// app bundles the opened dependencies a command needs. Not every command
// needs every field; openApp always opens the database and key registry
// since almost every command but "tag suggest" touches one of them.
type app struct {
	cfg    *config.Config
	store  *store.Store
	keys   *keyslot.Registry
	sealer tpmseal.Sealer
	fp     *fingerprint.Generator
}

func openApp() *app {
	cfg := loadConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		printError(fmt.Sprintf("preparing directories: %v", err))
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		printError(fmt.Sprintf("opening database: %v", err))
		os.Exit(1)
	}

	secrets, err := secretstore.Default()
	if err != nil {
		printError(fmt.Sprintf("opening secret store: %v", err))
		os.Exit(1)
	}

	sealer := tpmseal.Open()

	registry, err := keyslot.Open(st.DB(), secrets, sealer)
	if err != nil {
		printError(fmt.Sprintf("opening key registry: %v", err))
		os.Exit(1)
	}

	return &app{
		cfg:    cfg,
		store:  st,
		keys:   registry,
		sealer: sealer,
		fp:     fingerprint.NewGenerator(cfg.FingerprintBinaryPath),
	}
}

func (a *app) close() {
	if a.sealer != nil {
		a.sealer.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// activeSlotKey resolves the key for the registry's current active slot,
// returning the slot index and key together.
func (a *app) activeSlotKey() (int, []byte, error) {
	slot, err := a.keys.Current()
	if err != nil {
		return 0, nil, err
	}
	key, err := a.keys.Key(slot)
	if err != nil {
		return 0, nil, err
	}
	return slot, key, nil
}
