//go:build darwin

package secretstore

import (
	"bytes"
	"fmt"
	"os/exec"
)

// keychainStore shells out to the `security` CLI against the user's
// login keychain, mirroring how the corpus drives external, per-platform
// tools (e.g. ffmpeg, TPM tools) via os/exec rather than cgo bindings.
type keychainStore struct{}

func newPlatformStore() (Store, error) {
	return keychainStore{}, nil
}

func account(service, account string) string {
	return fmt.Sprintf("awmkit-%s-%s", service, account)
}

func (keychainStore) Set(service, acct string, secret []byte) error {
	label := account(service, acct)
	// Delete any existing entry first; add-generic-password has no
	// "upsert" flag.
	_ = exec.Command("security", "delete-generic-password", "-a", label, "-s", "awmkit").Run()

	cmd := exec.Command("security", "add-generic-password",
		"-a", label, "-s", "awmkit", "-w", string(secret), "-U")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("secretstore: security add-generic-password: %w: %s", err, stderr.String())
	}
	return nil
}

func (keychainStore) Get(service, acct string) ([]byte, error) {
	label := account(service, acct)
	cmd := exec.Command("security", "find-generic-password", "-a", label, "-s", "awmkit", "-w")
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 44 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("secretstore: security find-generic-password: %w", err)
	}
	return bytes.TrimRight(out, "\n"), nil
}

func (keychainStore) Delete(service, acct string) error {
	label := account(service, acct)
	cmd := exec.Command("security", "delete-generic-password", "-a", label, "-s", "awmkit")
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 44 {
			return nil
		}
		return fmt.Errorf("secretstore: security delete-generic-password: %w", err)
	}
	return nil
}
